package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", &buf)

	l.Debug("hidden")
	l.WithFields(map[string]interface{}{"filename": "speech.wav", "stage": "transcode"}).
		Error(errors.New("ffmpeg exited"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if entry["level"] != "error" {
		t.Errorf("expected error level, got %v", entry["level"])
	}
	if entry["filename"] != "speech.wav" || entry["stage"] != "transcode" {
		t.Errorf("missing fields in %v", entry)
	}
	if entry["message"] != "ffmpeg exited" {
		t.Errorf("unexpected message %v", entry["message"])
	}
}

func TestLoggerFormatsArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("debug", &buf)

	l.Info("serving on port %s", "8080")

	if !strings.Contains(buf.String(), "serving on port 8080") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
