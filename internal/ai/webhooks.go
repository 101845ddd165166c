package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker"
)

// ErrNoResult means the backend answered without a usable result.
var ErrNoResult = errors.New("no result returned")

type Endpoints struct {
	Text      string
	Voice     string
	ImageText string
	Caption   string
	Code      string
}

// Webhooks talks to n8n workflows. Every call is single-attempt and bounded
// by timeout; repeated failures of one workflow open its breaker so later
// calls to that workflow fail fast.
type Webhooks struct {
	client    *http.Client
	endpoints Endpoints
	timeout   time.Duration
	breakers  map[string]*gobreaker.CircuitBreaker
}

func NewWebhooks(client *http.Client, endpoints Endpoints, timeout time.Duration) *Webhooks {
	if client == nil {
		client = http.DefaultClient
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, url := range []string{endpoints.Text, endpoints.Voice, endpoints.ImageText, endpoints.Caption, endpoints.Code} {
		if _, ok := breakers[url]; !ok {
			breakers[url] = newBreaker(url)
		}
	}

	return &Webhooks{
		client:    client,
		endpoints: endpoints,
		timeout:   timeout,
		breakers:  breakers,
	}
}

// newBreaker trips after three consecutive failures of one workflow.
func newBreaker(url string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        url,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "workflow", name, "from", from.String(), "to", to.String())
		},
	})
}

func (w *Webhooks) TextQuery(ctx context.Context, prompt string) (string, error) {
	return w.postPrompt(ctx, w.endpoints.Text, prompt)
}

func (w *Webhooks) CodeQuery(ctx context.Context, prompt string) (string, error) {
	return w.postPrompt(ctx, w.endpoints.Code, prompt)
}

func (w *Webhooks) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return w.postFile(ctx, w.endpoints.Voice, "audio", audioPath)
}

func (w *Webhooks) ImageToText(ctx context.Context, imagePath string) (string, error) {
	return w.postFile(ctx, w.endpoints.ImageText, "image", imagePath)
}

func (w *Webhooks) CaptionImage(ctx context.Context, imagePath string) (string, error) {
	return w.postFile(ctx, w.endpoints.Caption, "image", imagePath)
}

func (w *Webhooks) postPrompt(ctx context.Context, url, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", err
	}
	return w.post(ctx, url, "application/json", body)
}

func (w *Webhooks) postFile(ctx context.Context, url, field, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	return w.post(ctx, url, mw.FormDataContentType(), buf.Bytes())
}

func (w *Webhooks) post(ctx context.Context, url, contentType string, body []byte) (string, error) {
	cb, ok := w.breakers[url]
	if !ok {
		return "", fmt.Errorf("no breaker for workflow %s", url)
	}

	out, err := cb.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := w.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook %s: status %d", url, resp.StatusCode)
		}

		return decodeResult(data), nil
	})
	if err != nil {
		return "", fmt.Errorf("call workflow: %w", err)
	}

	result, _ := out.(string)
	if result == "" {
		return "", ErrNoResult
	}
	return result, nil
}

// decodeResult extracts the "result" field. Non-string results are
// returned as their JSON text; anything unparseable counts as empty.
func decodeResult(data []byte) string {
	var payload struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}

	raw := bytes.TrimSpace(payload.Result)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
