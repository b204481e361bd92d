package driverepo

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	traceName = "Drive-Repo"

	// Scope lets the service account manage only the files it creates.
	Scope = drive.DriveFileScope

	mp3MimeType = "audio/mpeg"
)

// DriveRepository publishes files into a Google Drive folder.
type DriveRepository struct {
	srv *drive.Service
}

func NewDriveRepository(ctx context.Context, opts ...option.ClientOption) (*DriveRepository, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "drive.NewService")
	}
	return &DriveRepository{srv: srv}, nil
}

func (r *DriveRepository) Name() string { return "drive" }

func (r *DriveRepository) Create(ctx context.Context, folder, localPath, name string) (string, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Create")
	defer span.End()

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	meta := &drive.File{
		Name:     name,
		Parents:  []string{folder},
		MimeType: mp3MimeType,
	}
	created, err := r.srv.Files.Create(meta).
		Media(f, googleapi.ContentType(mp3MimeType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "files.create")
	}

	return created.Id, nil
}

func (r *DriveRepository) GrantPublicRead(ctx context.Context, id string) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "GrantPublicRead")
	defer span.End()

	_, err := r.srv.Permissions.Create(id, &drive.Permission{Type: "anyone", Role: "reader"}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return errors.Wrap(err, "permissions.create")
	}
	return nil
}

func (r *DriveRepository) Link(ctx context.Context, id string) (string, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Link")
	defer span.End()

	f, err := r.srv.Files.Get(id).
		Fields("webContentLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "files.get")
	}
	return f.WebContentLink, nil
}

func (r *DriveRepository) Delete(ctx context.Context, id string) error {
	err := r.srv.Files.Delete(id).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return errors.Wrap(err, "files.delete")
	}
	return nil
}
