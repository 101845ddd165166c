package tts

import (
	"fmt"
	"io"
	"strings"
)

// Console prints replies instead of speaking them. Used with --mute.
type Console struct {
	W io.Writer
}

func (c Console) Speak(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	_, err := fmt.Fprintf(c.W, "JARVIS: %s\n", text)
	return err
}
