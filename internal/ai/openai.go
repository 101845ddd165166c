package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	assistantPrompt = `You are JARVIS, a desktop voice assistant. Answer in one or two short spoken sentences. No markdown.`
	codePrompt      = `You are JARVIS, a coding assistant. Write or debug the code the user asks about. Be brief.`
	ocrPrompt       = `Transcribe all text visible in this image. Output only the text.`
	captionPrompt   = `Describe this image in one spoken sentence.`
)

// TranscribeFunc turns an audio file into text.
type TranscribeFunc func(ctx context.Context, audioPath string) (string, error)

// OpenAI answers text, code and image requests with chat completions.
// Transcription is delegated since chat models do not take audio files.
type OpenAI struct {
	client     openai.Client
	model      string
	timeout    time.Duration
	transcribe TranscribeFunc
}

func NewOpenAI(apiKey string, httpClient *http.Client, model string, timeout time.Duration, transcribe TranscribeFunc) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAI{
		client:     openai.NewClient(opts...),
		model:      model,
		timeout:    timeout,
		transcribe: transcribe,
	}
}

func (o *OpenAI) TextQuery(ctx context.Context, prompt string) (string, error) {
	return o.complete(ctx, openai.SystemMessage(assistantPrompt), openai.UserMessage(prompt))
}

func (o *OpenAI) CodeQuery(ctx context.Context, prompt string) (string, error) {
	return o.complete(ctx, openai.SystemMessage(codePrompt), openai.UserMessage(prompt))
}

func (o *OpenAI) ImageToText(ctx context.Context, imagePath string) (string, error) {
	return o.askImage(ctx, ocrPrompt, imagePath)
}

func (o *OpenAI) CaptionImage(ctx context.Context, imagePath string) (string, error) {
	return o.askImage(ctx, captionPrompt, imagePath)
}

func (o *OpenAI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if o.transcribe == nil {
		return "", errors.New("no transcriber configured")
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	text, err := o.transcribe(ctx, audioPath)
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return "", ErrNoResult
	}
	return text, nil
}

func (o *OpenAI) askImage(ctx context.Context, prompt, imagePath string) (string, error) {
	url, err := dataURL(imagePath)
	if err != nil {
		return "", err
	}

	return o.complete(ctx, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: url}),
	}))
}

func (o *OpenAI) complete(ctx context.Context, msgs ...openai.ChatCompletionMessageParamUnion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openai.ChatModel(o.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoResult
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Debug("Completion", "chars", len(content))
	if content == "" {
		return "", ErrNoResult
	}
	return content, nil
}

func dataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mime := "image/jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
