package audio_converter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"audio_conversion/entity"
	"audio_conversion/pkg/audio_converter/wavtest"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
}

type probeResult struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

func probe(t *testing.T, path string) probeResult {
	t.Helper()
	out, err := ffmpeg.Probe(path)
	if err != nil {
		t.Fatalf("probe %s: %v", path, err)
	}
	var res probeResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode probe output: %v", err)
	}
	if len(res.Streams) == 0 {
		t.Fatalf("no streams in %s", path)
	}
	return res
}

func TestProbe(t *testing.T) {
	src := filepath.Join(t.TempDir(), "speech.wav")
	wavtest.Write(t, src, 8000, 2, 3)

	info, err := NewAudioConverter().Probe(src)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.SampleRate != 8000 || info.Channels != 2 || info.BitDepth != 16 {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Duration < 2900*time.Millisecond || info.Duration > 3100*time.Millisecond {
		t.Errorf("expected ~3s duration, got %s", info.Duration)
	}
}

func TestConvertRejectsNonWav(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fake.wav")
	if err := os.WriteFile(src, []byte("this is not audio"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewAudioConverter().ConvertWavToMp3(context.Background(), src, filepath.Join(dir, "out.mp3"), entity.ProfileSpeech.Options())
	if err == nil {
		t.Fatal("expected error for non-WAV payload")
	}
	if entity.KindOf(err) != entity.KindConversion {
		t.Errorf("expected conversion kind, got %s", entity.KindOf(err))
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.mp3")); !os.IsNotExist(statErr) {
		t.Error("no output should be produced for invalid input")
	}
}

func TestConvertSpeechProfileProducesMono16k(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "speech.wav")
	dst := filepath.Join(dir, "speech.mp3")
	wavtest.Write(t, src, 8000, 2, 3)

	info, err := NewAudioConverter().ConvertWavToMp3(context.Background(), src, dst, entity.ProfileSpeech.Options())
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if info.Channels != 2 || info.SampleRate != 8000 {
		t.Errorf("input info should describe the source, got %+v", info)
	}

	res := probe(t, dst)
	s := res.Streams[0]
	if s.CodecName != "mp3" {
		t.Errorf("expected mp3 codec, got %q", s.CodecName)
	}
	if rate, _ := strconv.Atoi(s.SampleRate); rate != 16000 {
		t.Errorf("expected 16000 Hz, got %s", s.SampleRate)
	}
	if s.Channels != 1 {
		t.Errorf("expected mono, got %d channels", s.Channels)
	}
}

func TestConvertStandardProfileKeepsChannels(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "music.wav")
	dst := filepath.Join(dir, "music.mp3")
	wavtest.Write(t, src, 44100, 2, 1)

	if _, err := NewAudioConverter().ConvertWavToMp3(context.Background(), src, dst, entity.ProfileStandard.Options()); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	s := probe(t, dst).Streams[0]
	if s.Channels != 2 {
		t.Errorf("expected stereo to be kept, got %d", s.Channels)
	}
	if rate, _ := strconv.Atoi(s.SampleRate); rate != 44100 {
		t.Errorf("expected 44100 Hz to be kept, got %s", s.SampleRate)
	}
}

func TestConvertHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "speech.wav")
	wavtest.Write(t, src, 8000, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAudioConverter().ConvertWavToMp3(ctx, src, filepath.Join(dir, "out.mp3"), entity.ProfileSpeech.Options())
	if err == nil {
		t.Fatal("expected cancelled context to abort the conversion")
	}
	if entity.KindOf(err) != entity.KindConversion {
		t.Errorf("expected conversion kind, got %s", entity.KindOf(err))
	}
}

func TestCommandIsBoundToContext(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cmd := command(ctx, filepath.Join(dir, "in.wav"), filepath.Join(dir, "out.mp3"), entity.ProfileSpeech.Options())
	cancel()

	err := cmd.Start()
	if err == nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		t.Fatal("expected the command to refuse to start with a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestOutputArgs(t *testing.T) {
	args := outputArgs(entity.ProfileSpeech.Options())
	if args["ar"] != 16000 || args["ac"] != 1 || args["b:a"] != "64k" {
		t.Errorf("unexpected speech args %v", args)
	}

	args = outputArgs(entity.ProfileStandard.Options())
	for _, k := range []string{"ar", "ac", "b:a"} {
		if _, ok := args[k]; ok {
			t.Errorf("standard profile should not set %q", k)
		}
	}
}
