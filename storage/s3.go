package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type S3 struct {
	s3     *s3.S3
	bucket string
}

func NewS3(region, bucket string) (*S3, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &S3{s3: s3.New(sess), bucket: bucket}, nil
}

func (c *S3) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	// PutObject needs a seekable body
	buf, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	key := objectKey(name)

	_, err = c.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf),
		ContentLength: aws.Int64(int64(len(buf))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, key), nil
}
