package gcsrepo

import (
	"context"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/option"
)

const (
	traceName = "GCS-Repo"

	// Scope is needed to change object ACLs.
	Scope = storage.ScopeFullControl

	publicHost = "https://storage.googleapis.com"
)

// GCSRepository publishes objects into a bucket; the folder becomes the object prefix.
type GCSRepository struct {
	client *storage.Client
	bucket string
}

func NewGCSRepository(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSRepository, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "storage.NewClient")
	}
	return &GCSRepository{client: client, bucket: bucket}, nil
}

func (r *GCSRepository) Name() string { return "gcs" }

// Create stores the file under folder/<uuid>/name so equal names never overwrite each other.
func (r *GCSRepository) Create(ctx context.Context, folder, localPath, name string) (string, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Create")
	defer span.End()

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	object := ObjectName(folder, uuid.NewString(), name)

	w := r.client.Bucket(r.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "audio/mpeg"
	w.ContentDisposition = mime.FormatMediaType("attachment", map[string]string{"filename": name})

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "write object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "close object writer")
	}

	return object, nil
}

func (r *GCSRepository) GrantPublicRead(ctx context.Context, id string) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "GrantPublicRead")
	defer span.End()

	if err := r.client.Bucket(r.bucket).Object(id).ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return errors.Wrap(err, "set object acl")
	}
	return nil
}

func (r *GCSRepository) Link(ctx context.Context, id string) (string, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Link")
	defer span.End()

	attrs, err := r.client.Bucket(r.bucket).Object(id).Attrs(ctx)
	if err != nil {
		return "", errors.Wrap(err, "object attrs")
	}
	return PublicURL(attrs.Bucket, attrs.Name), nil
}

func (r *GCSRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Bucket(r.bucket).Object(id).Delete(ctx); err != nil {
		return errors.Wrap(err, "delete object")
	}
	return nil
}

func (r *GCSRepository) Close() error {
	return r.client.Close()
}

// ObjectName builds folder/unique/name with empty segments dropped.
func ObjectName(folder, unique, name string) string {
	return strings.TrimPrefix(path.Join(strings.Trim(folder, "/"), unique, name), "/")
}

// PublicURL is the unauthenticated download URL for a publicly readable object.
func PublicURL(bucket, object string) string {
	segments := strings.Split(object, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return publicHost + "/" + bucket + "/" + strings.Join(segments, "/")
}
