package main

import (
	"fmt"
	"net/http"

	"jarvis/internal/ai"
	"jarvis/internal/command"
	"jarvis/internal/config"
)

func newBackend(cfg *config.Config, client *http.Client, transcribe ai.TranscribeFunc) (command.AI, error) {
	switch cfg.AI.Backend {
	case "n8n":
		return ai.NewWebhooks(client, ai.Endpoints{
			Text:      cfg.AI.TextURL,
			Voice:     cfg.AI.VoiceURL,
			ImageText: cfg.AI.ImageTextURL,
			Caption:   cfg.AI.CaptionURL,
			Code:      cfg.AI.CodeURL,
		}, cfg.AI.Timeout), nil
	case "openai":
		return ai.NewOpenAI(cfg.AI.APIKey, client, cfg.AI.Model, cfg.AI.Timeout, transcribe), nil
	}
	return nil, fmt.Errorf("unknown ai backend %q", cfg.AI.Backend)
}
