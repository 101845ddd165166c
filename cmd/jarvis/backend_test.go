package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/ai"
	"jarvis/internal/config"
)

func TestNewBackend(t *testing.T) {
	cfg := config.Default(t.TempDir())

	b, err := newBackend(cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &ai.Webhooks{}, b)

	cfg.AI.Backend = "openai"
	cfg.AI.APIKey = "sk-test"
	b, err = newBackend(cfg, nil, func(context.Context, string) (string, error) { return "", nil })
	require.NoError(t, err)
	assert.IsType(t, &ai.OpenAI{}, b)

	cfg.AI.Backend = "llama"
	_, err = newBackend(cfg, nil, nil)
	assert.Error(t, err)
}
