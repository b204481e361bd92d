package s3repo

import (
	"context"
	"mime"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

const traceName = "S3-Repo"

// Options -.
type Options struct {
	// Endpoint is set for S3-compatible services such as MinIO.
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL overrides how links are built, e.g. a CDN in front of the bucket.
	PublicBaseURL string
}

type S3Repository struct {
	sess *s3.Client
	opts Options
}

// NewS3Repository uses static keys when both are given, otherwise the default AWS chain.
func NewS3Repository(ctx context.Context, opts Options) (*S3Repository, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	if opts.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...any) (aws.Endpoint, error) {
			return aws.Endpoint{
				PartitionID:       "aws",
				SigningRegion:     opts.Region,
				URL:               opts.Endpoint,
				HostnameImmutable: true,
			}, nil
		})
		loadOpts = append(loadOpts, config.WithEndpointResolverWithOptions(resolver))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.Endpoint != ""
	})
	return &S3Repository{sess: s3Client, opts: opts}, nil
}

func (s3Repo *S3Repository) Name() string { return "s3" }

// Create uploads under folder/<uuid>/name so equal names never overwrite each other.
func (s3Repo *S3Repository) Create(ctx context.Context, folder, localPath, name string) (string, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Create")
	defer span.End()

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := ObjectKey(folder, uuid.NewString(), name)

	uploader := manager.NewUploader(s3Repo.sess)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s3Repo.opts.Bucket),
		Key:                aws.String(key),
		Body:               f,
		ContentType:        aws.String("audio/mpeg"),
		ContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": name})),
	})
	if err != nil {
		return "", errors.Wrap(err, "upload object")
	}

	return key, nil
}

func (s3Repo *S3Repository) GrantPublicRead(ctx context.Context, id string) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "GrantPublicRead")
	defer span.End()

	_, err := s3Repo.sess.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(s3Repo.opts.Bucket),
		Key:    aws.String(id),
		ACL:    types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return errors.Wrap(err, "put object acl")
	}
	return nil
}

// Link confirms the object is there before handing out its URL.
func (s3Repo *S3Repository) Link(ctx context.Context, id string) (string, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Link")
	defer span.End()

	_, err := s3Repo.sess.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s3Repo.opts.Bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return "", errors.Wrap(err, "head object")
	}

	return s3Repo.ObjectURL(id), nil
}

func (s3Repo *S3Repository) Delete(ctx context.Context, id string) error {
	_, err := s3Repo.sess.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s3Repo.opts.Bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return errors.Wrap(err, "delete object")
	}
	return nil
}

// ObjectURL builds the public URL for key.
func (s3Repo *S3Repository) ObjectURL(key string) string {
	escaped := escapeKey(key)

	switch {
	case s3Repo.opts.PublicBaseURL != "":
		return strings.TrimRight(s3Repo.opts.PublicBaseURL, "/") + "/" + escaped
	case s3Repo.opts.Endpoint != "":
		return strings.TrimRight(s3Repo.opts.Endpoint, "/") + "/" + s3Repo.opts.Bucket + "/" + escaped
	default:
		return "https://" + s3Repo.opts.Bucket + ".s3." + s3Repo.opts.Region + ".amazonaws.com/" + escaped
	}
}

// ObjectKey builds folder/unique/name with empty segments dropped.
func ObjectKey(folder, unique, name string) string {
	return strings.TrimPrefix(path.Join(strings.Trim(folder, "/"), unique, name), "/")
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
