package byteserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Store is a Store backed by an AWS S3 bucket, for deployments that
// want buffer bytes served from object storage instead of local disk.
// Client construction is left to the caller so tests can inject a fake
// endpoint.
type S3Store struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Store wraps an already-constructed *s3.Client. Callers typically
// build client via:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	client := s3.NewFromConfig(cfg)
func NewS3Store(client *s3.Client, bucket, prefix, baseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix, baseURL: baseURL}
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	if key == "" {
		k, err := randomKey()
		if err != nil {
			return "", err
		}
		key = k
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("byteserver: s3 put %s: %w", key, err)
	}
	return s.baseURL + key, nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := s.GetReader(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *S3Store) GetReader(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("byteserver: s3 get %s: %w", key, err)
	}
	size := int64(0)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, size, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		return fmt.Errorf("byteserver: s3 delete %s: %w", key, err)
	}
	return nil
}

var _ ReadCloserStore = (*S3Store)(nil)
