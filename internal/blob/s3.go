package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/durablefs/vfs/internal/retry"
)

// S3Backend stores blob bytes in a remote object store, serving the warm
// and cold tiers. Every failed call is retried with backoff via the shared
// retry helper until its attempts run out; permanent failures (missing
// object, access denied) are not told apart from transient ones and are
// retried too. A missing object is then reported as ErrNotFound.
type S3Backend struct {
	client *s3.Client
	bucket string
	prefix string
	retry  retry.Config
}

// S3Config configures an S3Backend.
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
	// PathStyle forces path-style addressing, needed by most S3-compatible
	// non-AWS endpoints (MinIO, localstack).
	PathStyle bool
}

// NewS3Backend loads default AWS credentials/config and builds an
// S3Backend for cfg.Bucket.
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blob: s3 bucket name required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
	})

	return &S3Backend{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		retry:  retry.DefaultConfig(),
	}, nil
}

func (b *S3Backend) key(id string) string {
	if b.prefix == "" {
		return id
	}
	return b.prefix + "/" + id
}

func (b *S3Backend) Put(ctx context.Context, id string, data []byte) (int64, error) {
	err := retry.Do(ctx, b.retry, func(ctx context.Context) error {
		_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(b.bucket),
			Key:           aws.String(b.key(id)),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("s3 put %s: %w", id, err)
	}
	return int64(len(data)), nil
}

func (b *S3Backend) Get(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := retry.Do(ctx, b.retry, func(ctx context.Context) error {
		out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(b.key(id)),
		})
		if err != nil {
			return err
		}
		defer out.Body.Close()
		data, err = io.ReadAll(out.Body)
		return err
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", id, err)
	}
	return data, nil
}

func (b *S3Backend) Delete(ctx context.Context, id string) error {
	err := retry.Do(ctx, b.retry, func(ctx context.Context) error {
		_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(b.key(id)),
		})
		return err
	})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("s3 delete %s: %w", id, err)
	}
	return nil
}

func (b *S3Backend) Head(ctx context.Context, id string) (int64, error) {
	var size int64
	err := retry.Do(ctx, b.retry, func(ctx context.Context) error {
		out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(b.key(id)),
		})
		if err != nil {
			return err
		}
		size = aws.ToInt64(out.ContentLength)
		return nil
	})
	if err != nil {
		if isNoSuchKey(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("s3 head %s: %w", id, err)
	}
	return size, nil
}

func isNoSuchKey(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var notFound *s3types.NotFound
	return errors.As(err, &notFound)
}
