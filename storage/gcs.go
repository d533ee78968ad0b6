package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCS struct {
	client *gcs.Client
	bucket string
}

// NewGCS uses the credentials file when given, otherwise the ambient
// application default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (c *GCS) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := objectKey(name)
	w := c.client.Bucket(c.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	// the object is only committed on Close
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("commit object: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucket, key), nil
}
