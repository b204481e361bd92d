package entity

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies failures for responses, logs and metrics.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindConversion    Kind = "conversion"
	KindUpload        Kind = "upload"
	KindUnknown       Kind = "unknown"
)

// Upload stages.
const (
	StageCreate     = "create"
	StagePermission = "permission"
	StageLink       = "link"
)

// Error carries the kind, the pipeline stage that failed and the cause.
type Error struct {
	Kind  Kind
	Stage string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	var prefix string
	switch e.Kind {
	case KindConfiguration:
		prefix = "configuration error"
	case KindUpload:
		prefix = "upload failed"
	}

	msg := e.Msg
	if e.Err != nil {
		if msg != "" {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		} else {
			msg = e.Err.Error()
		}
	}

	if prefix == "" {
		return msg
	}
	if msg == "" {
		return prefix
	}
	return prefix + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Cause lets errors.Cause walk through to the underlying failure.
func (e *Error) Cause() error { return e.Err }

func NewValidationError(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NewRequestError is a validation failure caused by reading the request itself.
func NewRequestError(err error, msg string) error {
	return &Error{Kind: KindValidation, Stage: "read", Msg: msg, Err: err}
}

func NewConfigurationError(err error) error {
	return &Error{Kind: KindConfiguration, Err: err}
}

func NewConversionError(err error) error {
	return &Error{Kind: KindConversion, Stage: "transcode", Err: err}
}

func NewUploadError(stage string, err error) error {
	return &Error{Kind: KindUpload, Stage: stage, Err: err}
}

// KindOf reports the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StageOf reports the failing stage, if any.
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}
