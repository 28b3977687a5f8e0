package mirror

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/phenocam-tools/phenofetch/internal/archive"
)

// S3Client is the subset of the S3 API the uploader needs.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader mirrors fetched files into an S3 bucket, keyed
// prefix/class-subdir/filename to match the local layout.
type Uploader struct {
	client S3Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewUploader builds an uploader with the default AWS credential chain
// (environment variables, profiles, IAM roles).
func NewUploader(ctx context.Context, region, bucket, prefix string, logger *slog.Logger) (*Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewUploaderWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewUploaderWithClient wires an uploader over an existing client. Used by
// tests with a mock client.
func NewUploaderWithClient(client S3Client, bucket, prefix string, logger *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With("component", "mirror"),
	}
}

// Key returns the object key for a file reference.
func (u *Uploader) Key(ref archive.FileReference) string {
	return path.Join(u.prefix, ref.Class.Subdir(), ref.Filename)
}

// Upload streams one fetched file to the bucket.
func (u *Uploader) Upload(ctx context.Context, ref archive.FileReference, body io.Reader, size int64) error {
	key := u.Key(ref)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", ref.Filename, u.bucket, key, err)
	}
	u.logger.Debug("Mirrored file.", "bucket", u.bucket, "key", key, "bytes", size)
	return nil
}
