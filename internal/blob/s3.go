package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type S3Opts struct {
	Bucket          string
	Region          string
	Endpoint        string // for S3 compatible services, empty for AWS
	AccessKey       string
	SecretAccessKey string
	Prefix          string
}

// S3 keeps blobs as objects in a single bucket. Locations are object keys.
type S3 struct {
	c        *s3.Client
	uploader *manager.Uploader
	bucket   *string
	prefix   string
}

func NewS3(ctx context.Context, o S3Opts) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKey,
			o.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		so.Region = o.Region
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})

	s := &S3{
		c: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		}),
		bucket: aws.String(o.Bucket),
		prefix: o.Prefix,
	}

	if err := s.Ping(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *S3) Locate(id string) string {
	return path.Join(s.prefix, id)
}

// Put goes through the multipart uploader, which falls back to a single
// PutObject for small bodies.
func (s *S3) Put(ctx context.Context, location string, r io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(location),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3, %w", location, err)
	}

	return nil
}

func (s *S3) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	out, err := s.c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(location),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}

		return nil, fmt.Errorf("failed to get %s from S3, %w", location, err)
	}

	return out.Body, nil
}

func (s *S3) Delete(ctx context.Context, location string) error {
	_, err := s.c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(location),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete %s from S3, %w", location, err)
	}

	return nil
}

func (s *S3) Ping(ctx context.Context) error {
	_, err := s.c.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: s.bucket,
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("bucket '%s' does not exist", *s.bucket)
		}

		return fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}

	return false
}
