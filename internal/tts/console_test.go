package tts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleSpeak(t *testing.T) {
	var buf bytes.Buffer
	c := Console{W: &buf}

	assert.NoError(t, c.Speak("  Hello, I am JARVIS A.I. "))
	assert.NoError(t, c.Speak("   "))
	assert.Equal(t, "JARVIS: Hello, I am JARVIS A.I.\n", buf.String())
}
