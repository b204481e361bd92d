package entity

import (
	"context"
	"io"
	"path"
	"strings"
	"time"
	"unicode"
)

const (
	WavExt = ".wav"
	Mp3Ext = ".mp3"

	Mp3ContentType = "audio/mpeg"
)

// Delivery selects how the converted audio reaches the caller.
type Delivery string

const (
	DeliveryLink Delivery = "link"
	DeliveryFile Delivery = "file"
)

func (d Delivery) Valid() bool {
	return d == DeliveryLink || d == DeliveryFile
}

type ConversionUsecase interface {
	Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error)
}

type ConversionRequest struct {
	Filename string
	Body     io.Reader
	Delivery Delivery
	Profile  Profile
}

// ConversionResult is returned on success. For DeliveryFile, Audio holds the
// MP3 and the caller must Close it, which also releases the scratch space.
type ConversionResult struct {
	Filename     string
	DownloadLink string
	Size         int64
	Audio        io.ReadSeekCloser
}

type ConversionStatus string

const (
	StatusCompleted ConversionStatus = "completed"
	StatusFailed    ConversionStatus = "failed"
)

// ConversionEvent is published once per accepted request.
type ConversionEvent struct {
	RequestID    string           `json:"request_id"`
	Filename     string           `json:"filename"`
	Status       ConversionStatus `json:"status"`
	Kind         Kind             `json:"kind,omitempty"`
	Error        string           `json:"error,omitempty"`
	Delivery     Delivery         `json:"delivery"`
	Profile      Profile          `json:"profile"`
	DownloadLink string           `json:"download_link,omitempty"`
	Size         int64            `json:"size,omitempty"`
	DurationMs   int64            `json:"duration_ms"`
	Timestamp    time.Time        `json:"timestamp"`
}

type EventPublisher interface {
	PublishConversionEvent(ctx context.Context, ev ConversionEvent) error
}

// ValidateFilename accepts only names with the literal, case-sensitive ".wav"
// suffix and returns the base name with any directory part stripped.
func ValidateFilename(name string) (string, error) {
	if !strings.HasSuffix(name, WavExt) {
		return "", NewValidationError("Only .wav files are supported")
	}

	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == WavExt || base == "." || base == "/" {
		return "", NewValidationError("invalid filename")
	}
	if !strings.HasSuffix(base, WavExt) {
		return "", NewValidationError("Only .wav files are supported")
	}
	for _, r := range base {
		if unicode.IsControl(r) {
			return "", NewValidationError("invalid filename")
		}
	}

	return base, nil
}

// ConvertedName swaps only the trailing ".wav" for ".mp3".
func ConvertedName(name string) string {
	return strings.TrimSuffix(name, WavExt) + Mp3Ext
}
