package storage

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"audio_conversion/config"
	"audio_conversion/entity"
	"audio_conversion/internal/credentials"
	"audio_conversion/internal/storage/driverepo"
	"audio_conversion/internal/storage/gcsrepo"
	"audio_conversion/internal/storage/s3repo"
	"audio_conversion/pkg/logger"
)

// NewBackend resolves credentials once and builds the configured backend.
// Any failure is reported as a configuration error.
func NewBackend(ctx context.Context, cfg config.Storage, l logger.Interface) (Backend, error) {
	switch cfg.Backend {
	case "drive", "":
		creds, err := credentials.Resolve(ctx, credentials.Mode(cfg.CredentialsMode), cfg.ServiceAccountFile, driverepo.Scope)
		if err != nil {
			return nil, err
		}
		l.Info("drive credentials resolved from %s", creds.Source)

		repo, err := driverepo.NewDriveRepository(ctx, option.WithCredentials(creds.Credentials))
		if err != nil {
			return nil, entity.NewConfigurationError(err)
		}
		return repo, nil

	case "gcs":
		creds, err := credentials.Resolve(ctx, credentials.Mode(cfg.CredentialsMode), cfg.ServiceAccountFile, gcsrepo.Scope)
		if err != nil {
			return nil, err
		}
		l.Info("gcs credentials resolved from %s", creds.Source)

		repo, err := gcsrepo.NewGCSRepository(ctx, cfg.GCS.Bucket, option.WithCredentials(creds.Credentials))
		if err != nil {
			return nil, entity.NewConfigurationError(err)
		}
		return repo, nil

	case "s3":
		repo, err := s3repo.NewS3Repository(ctx, s3repo.Options{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, entity.NewConfigurationError(err)
		}
		return repo, nil

	default:
		return nil, entity.NewConfigurationError(errors.Errorf("unknown storage backend %q", cfg.Backend))
	}
}

// NewLinkPublisher wires the configured backend into a Publisher. When the
// backend cannot be built, the returned publisher reports that error on every call.
func NewLinkPublisher(ctx context.Context, cfg config.Storage, observer UploadObserver, l logger.Interface) (entity.LinkPublisher, error) {
	backend, err := NewBackend(ctx, cfg, l)
	if err != nil {
		return Unavailable{FolderID: cfg.FolderID, Err: err}, err
	}
	return NewPublisher(backend, cfg.FolderID, cfg.UploadTimeout, observer, l), nil
}
