package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Fetcher reads raw email objects written by the mail-receiving
// service.
type S3Fetcher struct {
	client *s3.Client
	bucket string
}

// NewS3Fetcher creates a raw-mail fetcher for one bucket
func NewS3Fetcher(cfg aws.Config, bucket string) *S3Fetcher {
	return &S3Fetcher{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}
}

// FetchRawEmail returns the raw bytes of a stored email. Missing or
// empty objects are errors.
func (f *S3Fetcher) FetchRawEmail(ctx context.Context, key string) ([]byte, error) {
	result, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raw email %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw email %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("raw email object %s is empty", key)
	}

	return data, nil
}
