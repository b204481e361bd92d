// Package credentials resolves Google API credentials once at startup so the
// request path never performs discovery itself.
package credentials

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"

	"audio_conversion/entity"
)

type Mode string

const (
	// ModeKeyFile reads a service-account JSON key.
	ModeKeyFile Mode = "key_file"
	// ModeAmbient uses Application Default Credentials from the environment.
	ModeAmbient Mode = "ambient"
	// ModeAuto prefers the key file when it exists and falls back to ambient.
	ModeAuto Mode = "auto"
)

// Resolved wraps the credentials with where they came from, for logging.
type Resolved struct {
	*google.Credentials
	Source string
}

// Resolve obtains credentials for scopes. All failures are configuration errors.
func Resolve(ctx context.Context, mode Mode, keyFile string, scopes ...string) (*Resolved, error) {
	switch mode {
	case ModeKeyFile:
		return fromKeyFile(ctx, keyFile, scopes)
	case ModeAmbient:
		return ambient(ctx, scopes)
	case ModeAuto, "":
		if keyFile != "" {
			if _, err := os.Stat(keyFile); err == nil {
				return fromKeyFile(ctx, keyFile, scopes)
			}
		}
		return ambient(ctx, scopes)
	default:
		return nil, entity.NewConfigurationError(errors.Errorf("unknown credentials mode %q", mode))
	}
}

func fromKeyFile(ctx context.Context, keyFile string, scopes []string) (*Resolved, error) {
	if keyFile == "" {
		return nil, entity.NewConfigurationError(errors.New("service account file is not configured"))
	}

	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, entity.NewConfigurationError(errors.Wrapf(err, "service account file not readable at %s", keyFile))
	}

	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, entity.NewConfigurationError(errors.Wrapf(err, "parse service account file %s", keyFile))
	}

	return &Resolved{Credentials: creds, Source: "key_file:" + keyFile}, nil
}

func ambient(ctx context.Context, scopes []string) (*Resolved, error) {
	creds, err := google.FindDefaultCredentials(ctx, scopes...)
	if err != nil {
		return nil, entity.NewConfigurationError(errors.Wrap(err, "no ambient credentials found"))
	}

	return &Resolved{Credentials: creds, Source: "ambient"}, nil
}
