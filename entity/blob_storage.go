package entity

import (
	"context"
)

// LinkPublisher uploads a local file into the configured destination folder,
// makes it publicly readable and returns its download link.
type LinkPublisher interface {
	Publish(ctx context.Context, localPath, name string) (string, error)
}
