package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const SampleRate = 16000

type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// RecordAuto waits for speech and stops after a stretch of silence.
func (r *Recorder) RecordAuto(ctx context.Context) ([]float32, error) {
	const (
		frameSize        = 320 // 20ms
		frameMillis      = 20
		silenceThreshRMS = 0.015
		silenceMillis    = 600
		maxLengthSeconds = 10
	)

	buf := make([]float32, frameSize)
	out := make([]float32, 0, SampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	var (
		speaking      bool
		silenceFrames int
	)

	maxFrames := maxLengthSeconds * SampleRate / frameSize

	for i := 0; i < maxFrames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > silenceThreshRMS {
			speaking = true
			silenceFrames = 0
			out = append(out, buf...)
			continue
		}

		if speaking {
			silenceFrames++
			if silenceFrames*frameMillis >= silenceMillis {
				break
			}
			out = append(out, buf...)
		}
	}

	return out, nil
}

// RecordFor captures exactly d of audio unless ctx ends first.
func (r *Recorder) RecordFor(ctx context.Context, d time.Duration) ([]float32, error) {
	const frameSize = 1024

	if d <= 0 {
		return nil, errors.New("record duration must be positive")
	}

	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(SampleRate), len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	want := int(float64(SampleRate) * d.Seconds())
	out := make([]float32, 0, want+frameSize)

	for len(out) < want {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}

	return out[:want], nil
}

// RecordWAV records d of audio into a 16-bit mono WAV file at path.
func (r *Recorder) RecordWAV(ctx context.Context, path string, d time.Duration) error {
	pcm, err := r.RecordFor(ctx, d)
	if err != nil {
		return err
	}
	return WriteWAV(path, pcm)
}

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
