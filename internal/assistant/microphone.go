package assistant

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"jarvis/pkg/stt"
)

type PCMRecorder interface {
	RecordAuto(ctx context.Context) ([]float32, error)
}

type PCMTranscriber interface {
	TranscribePCM(ctx context.Context, pcm16k []float32) (stt.Result, error)
}

// Ducking lowers other audio while fn runs.
type Ducking interface {
	While(ctx context.Context, fn func() error) (duckErr, err error)
}

type Chime interface {
	Play()
}

// Microphone is the live Listener. Chime, Ducker and Notify are optional.
type Microphone struct {
	Recorder    PCMRecorder
	Transcriber PCMTranscriber
	Chime       Chime
	Ducker      Ducking
	Notify      func(ctx context.Context, summary string) error
}

func (m *Microphone) Listen(ctx context.Context) (string, error) {
	if m.Chime != nil {
		m.Chime.Play()
	}
	if m.Notify != nil {
		if err := m.Notify(ctx, "Listening..."); err != nil {
			log.Debug("Desktop notification failed", "err", err)
		}
	}

	log.Debug("Listening")

	var pcm []float32
	record := func() (err error) {
		pcm, err = m.Recorder.RecordAuto(ctx)
		return err
	}

	var err error
	if m.Ducker != nil {
		var duckErr error
		duckErr, err = m.Ducker.While(ctx, record)
		if duckErr != nil {
			log.Debug("Audio ducking failed", "err", duckErr)
		}
	} else {
		err = record()
	}
	if err != nil {
		return "", fmt.Errorf("record: %w", err)
	}

	if len(pcm) == 0 {
		return "", nil
	}

	log.Debug("Recorded", "samples", len(pcm))

	res, err := m.Transcriber.TranscribePCM(ctx, pcm)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}
