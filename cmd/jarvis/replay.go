package main

import (
	"context"
	log "log/slog"

	"jarvis/internal/assistant"
	"jarvis/internal/command"
	"jarvis/internal/config"
	"jarvis/pkg/stt"
)

// runReplay feeds one recorded file through the dispatcher, as if it had
// been spoken, and returns the process exit code.
func runReplay(ctx context.Context, cfg *config.Config, d *command.Dispatcher, speaker command.Speaker, files command.FileScanner, tr *stt.Transcriber, path string) int {
	text, err := tr.TranscribeFile(ctx, path)
	if err != nil {
		log.Error("Failed to transcribe replay file", "path", path, "err", err)
		return 1
	}

	log.Info("Replaying", "path", path, "text", text)

	jarvis := assistant.New(cfg, d, speaker, nil, files)
	jarvis.Handle(ctx, text)
	return 0
}
