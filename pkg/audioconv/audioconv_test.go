package audioconv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
}

func TestDecodeWAVStereo32k(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")

	// 8 stereo frames at 32 kHz, 0.5 on both channels
	var data []int
	for range 8 {
		data = append(data, 16384, 16384)
	}
	writeWAV(t, path, 32000, 2, data)

	got, err := DecodeFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, got, 4)
	for _, v := range got {
		assert.InDelta(t, 0.5, v, 1e-3)
	}
}

func TestDecodeSniffsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	writeWAV(t, path, TargetRate, 1, []int{0, 100, 200, 300})

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	got, err := Decode(bytes.NewReader(raw), ".bin", Options{MaxSamples: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("nothing here")), ".txt", Options{})
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []float32{0.5, 0}, Downmix([]float32{1, 0, 0.5, -0.5}, 2))
	in := []float32{1, 2}
	assert.Equal(t, in, Downmix(in, 1))
}

func TestResample(t *testing.T) {
	assert.Equal(t, []float32{0, 2}, Resample([]float32{0, 1, 2, 3}, 32000, 16000))
	assert.Equal(t, []float32{0, 0.5, 1, 1}, Resample([]float32{0, 1}, 8000, 16000))
	assert.Empty(t, Resample(nil, 8000, 16000))
}
