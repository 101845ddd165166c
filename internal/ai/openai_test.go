package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func cannedClient(body string) *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    r,
		}, nil
	})}
}

func TestOpenAITextQuery(t *testing.T) {
	client := cannedClient(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-5-nano",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" It is sunny. "}}]}`)

	o := NewOpenAI("sk-test", client, "gpt-5-nano", time.Second, nil)
	got, err := o.TextQuery(context.Background(), "weather using artificial intelligence")
	require.NoError(t, err)
	assert.Equal(t, "It is sunny.", got)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	client := cannedClient(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-5-nano","choices":[]}`)

	o := NewOpenAI("sk-test", client, "gpt-5-nano", time.Second, nil)
	_, err := o.CodeQuery(context.Background(), "write code")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestOpenAITranscribeDelegates(t *testing.T) {
	o := NewOpenAI("sk-test", nil, "gpt-5-nano", time.Second, func(_ context.Context, path string) (string, error) {
		assert.Equal(t, "/tmp/clip.wav", path)
		return "  hello  ", nil
	})
	got, err := o.Transcribe(context.Background(), "/tmp/clip.wav")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	o = NewOpenAI("sk-test", nil, "gpt-5-nano", time.Second, func(context.Context, string) (string, error) {
		return " ", nil
	})
	_, err = o.Transcribe(context.Background(), "x.wav")
	assert.ErrorIs(t, err, ErrNoResult)

	o = NewOpenAI("sk-test", nil, "gpt-5-nano", time.Second, nil)
	_, err = o.Transcribe(context.Background(), "x.wav")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoResult))
}

func TestDataURL(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(png, []byte("abc"), 0o644))

	url, err := dataURL(png)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,YWJj", url)

	_, err = dataURL(filepath.Join(dir, "none.jpg"))
	assert.Error(t, err)
}
