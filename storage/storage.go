// Package storage hosts uploaded images and hands back public URLs
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores an image and returns the URL it is served from
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

type Config struct {
	// Driver is "local", "s3" or "gcs"
	Driver string

	LocalPath string
	// PublicURL is the externally visible base of the API, used for local files
	PublicURL string

	S3Region string
	S3Bucket string

	GCSBucket          string
	GCSCredentialsFile string
}

// New builds the image host selected by cfg.Driver
func New(ctx context.Context, cfg Config) (Uploader, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalPath, cfg.PublicURL)
	case "s3":
		return NewS3(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// objectKey turns "<folder>/<file name>" into "<folder>/<uuid><ext>" so
// client-chosen names never reach the bucket.
func objectKey(name string) string {
	folder := path.Dir(name)
	key := uuid.NewString() + strings.ToLower(path.Ext(name))
	if folder == "." || folder == "/" {
		return key
	}
	return path.Join(folder, key)
}
