package entity

import (
	"testing"

	"github.com/pkg/errors"
)

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "speech.wav", want: "speech.wav"},
		{in: "my recording.wav", want: "my recording.wav"},
		{in: "a.wav.wav", want: "a.wav.wav"},
		{in: "../../etc/passwd.wav", want: "passwd.wav"},
		{in: `..\..\evil.wav`, want: "evil.wav"},
		{in: "notes.WAV", wantErr: true},
		{in: "song.mp3", wantErr: true},
		{in: "speech.wav.txt", wantErr: true},
		{in: "", wantErr: true},
		{in: ".wav", wantErr: true},
		{in: "dir/.wav", wantErr: true},
		{in: "bad\nname.wav", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ValidateFilename(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ValidateFilename(%q) expected error, got %q", tt.in, got)
				continue
			}
			if KindOf(err) != KindValidation {
				t.Errorf("ValidateFilename(%q) kind = %s, want validation", tt.in, KindOf(err))
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateFilename(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertedName(t *testing.T) {
	cases := map[string]string{
		"speech.wav":     "speech.mp3",
		"a.wav.wav":      "a.wav.mp3",
		"wave.wav":       "wave.mp3",
		"my.wavfile.wav": "my.wavfile.mp3",
	}
	for in, want := range cases {
		if got := ConvertedName(in); got != want {
			t.Errorf("ConvertedName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProfileOptions(t *testing.T) {
	speech := ProfileSpeech.Options()
	if speech.SampleRate != 16000 || speech.Channels != 1 || speech.Bitrate != "64k" {
		t.Errorf("unexpected speech options: %+v", speech)
	}
	if std := ProfileStandard.Options(); std != (ConvertOptions{}) {
		t.Errorf("standard profile should keep source settings, got %+v", std)
	}
	if Profile("hifi").Valid() {
		t.Error("unknown profile should be invalid")
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := errors.Wrap(NewUploadError(StagePermission, cause), "publish")

	if KindOf(err) != KindUpload {
		t.Errorf("expected upload kind, got %s", KindOf(err))
	}
	if StageOf(err) != StagePermission {
		t.Errorf("expected permission stage, got %q", StageOf(err))
	}
	if errors.Cause(err) != cause {
		t.Errorf("errors.Cause should reach the root cause")
	}
	if got := NewUploadError(StageCreate, cause).Error(); got != "upload failed: quota exceeded" {
		t.Errorf("unexpected upload message %q", got)
	}
	if got := NewConfigurationError(errors.New("FOLDER_ID is not set")).Error(); got != "configuration error: FOLDER_ID is not set" {
		t.Errorf("unexpected configuration message %q", got)
	}
	if got := NewConversionError(errors.New("exit status 1")).Error(); got != "exit status 1" {
		t.Errorf("unexpected conversion message %q", got)
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("untyped errors should be unknown")
	}
	if KindOf(nil) != "" {
		t.Error("nil error should have no kind")
	}
}
