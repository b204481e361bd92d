// Package wavtest generates WAV fixtures for tests.
package wavtest

import (
	"math"
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Write creates a 16-bit PCM sine-wave WAV file at path.
func Write(t testing.TB, path string, sampleRate, channels int, seconds float64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("wavtest: create %s: %v", path, err)
	}
	defer f.Close()

	frames := int(float64(sampleRate) * seconds)
	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		v := int(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		for c := 0; c < channels; c++ {
			data[i*channels+c] = v
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("wavtest: write samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("wavtest: close encoder: %v", err)
	}
}

// Bytes returns the content of a generated WAV file.
func Bytes(t testing.TB, sampleRate, channels int, seconds float64) []byte {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "fixture-*.wav")
	if err != nil {
		t.Fatalf("wavtest: %v", err)
	}
	path := f.Name()
	f.Close()

	Write(t, path, sampleRate, channels, seconds)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("wavtest: read %s: %v", path, err)
	}
	return b
}
