package notify

import (
	"context"
	"os/exec"
	"time"
)

// Desktop shows a transient desktop notification through notify-send.
// It is a no-op when notify-send is not installed.
func Desktop(ctx context.Context, summary string) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return exec.CommandContext(ctx, "notify-send", "-a", "jarvis", "-t", "2000", summary).Run()
}
