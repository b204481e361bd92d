package entity

import (
	"context"
	"time"
)

// Profile selects the MP3 encoding settings.
type Profile string

const (
	// ProfileSpeech targets transcription engines: 16 kHz, mono, 64 kbit/s.
	ProfileSpeech Profile = "speech"
	// ProfileStandard keeps the source rate and channels at the encoder's default bitrate.
	ProfileStandard Profile = "standard"
)

const (
	SpeechSampleRate = 16000
	SpeechChannels   = 1
	SpeechBitrate    = "64k"
)

// ConvertOptions are passed to the transcoder. Zero values keep the source property.
type ConvertOptions struct {
	SampleRate int
	Channels   int
	Bitrate    string
}

// Options returns the encoder settings for the profile.
func (p Profile) Options() ConvertOptions {
	switch p {
	case ProfileSpeech:
		return ConvertOptions{SampleRate: SpeechSampleRate, Channels: SpeechChannels, Bitrate: SpeechBitrate}
	default:
		return ConvertOptions{}
	}
}

func (p Profile) Valid() bool {
	return p == ProfileSpeech || p == ProfileStandard
}

// AudioInfo describes a probed WAV input.
type AudioInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

type AudioConverter interface {
	ConvertWavToMp3(ctx context.Context, src, dst string, opts ConvertOptions) (AudioInfo, error)
}
