// Package storage publishes converted audio to a cloud folder and returns a public link.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"audio_conversion/entity"
	"audio_conversion/pkg/logger"
)

const (
	traceName = "storage"

	rollbackTimeout = 10 * time.Second
)

// Backend is one cloud provider's view of the upload protocol.
type Backend interface {
	Name() string
	// Create uploads localPath as name inside folder and returns the remote id.
	Create(ctx context.Context, folder, localPath, name string) (string, error)
	GrantPublicRead(ctx context.Context, id string) error
	// Link re-fetches the object and returns its public download link.
	Link(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// UploadObserver receives the duration and outcome of each publish attempt.
type UploadObserver interface {
	ObserveUpload(backend string, d time.Duration, err error)
}

// Publisher runs create, grant and link against a Backend. A failure after
// create deletes the remote object so no half-published file is left behind.
type Publisher struct {
	backend  Backend
	folderID string
	timeout  time.Duration
	observer UploadObserver
	l        logger.Interface
}

var _ entity.LinkPublisher = (*Publisher)(nil)

func NewPublisher(backend Backend, folderID string, timeout time.Duration, observer UploadObserver, l logger.Interface) *Publisher {
	return &Publisher{backend: backend, folderID: folderID, timeout: timeout, observer: observer, l: l}
}

func (p *Publisher) Publish(ctx context.Context, localPath, name string) (link string, err error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Publish")
	defer span.End()

	span.SetAttributes(
		attribute.String("backend", p.backend.Name()),
		attribute.String("name", name),
	)

	if p.folderID == "" {
		return "", errMissingFolder()
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		if p.observer != nil {
			p.observer.ObserveUpload(p.backend.Name(), time.Since(start), err)
		}
	}()

	id, err := p.backend.Create(ctx, p.folderID, localPath, name)
	if err != nil {
		return "", entity.NewUploadError(entity.StageCreate, err)
	}
	span.AddEvent("created", trace.WithAttributes(attribute.String("object.id", id)))

	if err := p.backend.GrantPublicRead(ctx, id); err != nil {
		p.rollback(id)
		return "", entity.NewUploadError(entity.StagePermission, err)
	}

	link, err = p.backend.Link(ctx, id)
	if err == nil && link == "" {
		err = errors.New("backend returned an empty link")
	}
	if err != nil {
		p.rollback(id)
		return "", entity.NewUploadError(entity.StageLink, err)
	}

	return link, nil
}

// rollback uses its own context: the request context may be the reason we are here.
func (p *Publisher) rollback(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
	defer cancel()

	if err := p.backend.Delete(ctx, id); err != nil {
		p.l.WithFields(map[string]interface{}{"backend": p.backend.Name(), "object": id}).
			Error(errors.Wrap(err, "rollback of partially published object failed"))
		return
	}
	p.l.Warn("rolled back partially published object %s on %s", id, p.backend.Name())
}

// Close releases the backend's client, if it holds one.
func (p *Publisher) Close() error {
	if c, ok := p.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func errMissingFolder() error {
	return entity.NewConfigurationError(errors.New("FOLDER_ID is not set"))
}

// Unavailable is used when the backend could not be initialised at startup.
// Link delivery then fails with the startup error; file delivery keeps working.
// A missing folder is still reported first, as it would be by a working backend.
type Unavailable struct {
	FolderID string
	Err      error
}

func (u Unavailable) Publish(context.Context, string, string) (string, error) {
	if u.FolderID == "" {
		return "", errMissingFolder()
	}
	return "", u.Err
}
