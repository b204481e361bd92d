package audio_converter

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"audio_conversion/entity"
)

const (
	traceName = "audio-converter"

	// ffmpeg can be chatty; only the tail is worth keeping in an error.
	maxStderrTail = 2048
)

type AudioConverter struct {
}

var _ entity.AudioConverter = (*AudioConverter)(nil)

func NewAudioConverter() *AudioConverter {
	return &AudioConverter{}
}

// Probe reads the WAV header of src.
func (ac *AudioConverter) Probe(src string) (entity.AudioInfo, error) {
	f, err := os.Open(src)
	if err != nil {
		return entity.AudioInfo{}, errors.Wrap(err, "open input")
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return entity.AudioInfo{}, errors.New("input is not a valid WAV file")
	}

	info := entity.AudioInfo{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	// Some encoders write bogus chunk sizes; the duration is informational only.
	if err := d.FwdToPCM(); err == nil {
		bytesPerSec := int64(info.SampleRate) * int64(info.Channels) * int64(info.BitDepth/8)
		if bytesPerSec > 0 {
			info.Duration = time.Duration(d.PCMLen()) * time.Second / time.Duration(bytesPerSec)
		}
	}

	return info, nil
}

// ConvertWavToMp3 transcodes src into an MP3 at dst. Every failure is a conversion error.
func (ac *AudioConverter) ConvertWavToMp3(ctx context.Context, src, dst string, opts entity.ConvertOptions) (entity.AudioInfo, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "ConvertWavToMp3")
	defer span.End()

	info, err := ac.Probe(src)
	if err != nil {
		span.RecordError(err)
		return info, entity.NewConversionError(err)
	}

	span.SetAttributes(
		attribute.Int("input.sample_rate", info.SampleRate),
		attribute.Int("input.channels", info.Channels),
		attribute.Int("output.sample_rate", opts.SampleRate),
		attribute.Int("output.channels", opts.Channels),
		attribute.String("output.bitrate", opts.Bitrate),
	)

	var stderr bytes.Buffer
	cmd := command(ctx, src, dst, opts)
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := run(ctx, cmd); err != nil {
		span.RecordError(err)
		return info, entity.NewConversionError(withStderr(err, stderr.String()))
	}

	return info, nil
}

func outputArgs(opts entity.ConvertOptions) ffmpeg.KwArgs {
	args := ffmpeg.KwArgs{
		"f":      "mp3",
		"acodec": "libmp3lame",
	}
	if opts.SampleRate > 0 {
		args["ar"] = opts.SampleRate
	}
	if opts.Channels > 0 {
		args["ac"] = opts.Channels
	}
	if opts.Bitrate != "" {
		args["b:a"] = opts.Bitrate
	}
	return args
}

// command builds the ffmpeg invocation. The stream context makes Compile use
// exec.CommandContext, so ffmpeg is killed when ctx ends.
// Compile also logs the command line through the standard log package.
func command(ctx context.Context, src, dst string, opts entity.ConvertOptions) *exec.Cmd {
	stream := ffmpeg.Input(src, ffmpeg.KwArgs{"f": "wav"}).
		Output(dst, outputArgs(opts)).
		OverWriteOutput()
	stream.Context = ctx

	return stream.Compile()
}

func run(ctx context.Context, cmd *exec.Cmd) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "ffmpeg")
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "ffmpeg")
		}
		return errors.Wrap(err, "ffmpeg")
	}
	return nil
}

func withStderr(err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return err
	}
	if len(stderr) > maxStderrTail {
		stderr = stderr[len(stderr)-maxStderrTail:]
	}
	if i := strings.LastIndex(stderr, "\n"); i >= 0 && i < len(stderr)-1 {
		// The last line is usually the actual reason.
		return errors.Wrap(err, stderr[i+1:])
	}
	return errors.Wrap(err, stderr)
}
