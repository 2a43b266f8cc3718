package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"recipepipe/internal/config"
	"recipepipe/internal/models"
)

// ObjectGetter is the part of the S3 client the source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads <prefix><collection>.json objects from a bucket.
type S3Source struct {
	client  ObjectGetter
	bucket  string
	prefix  string
	timeout time.Duration
}

// NewS3Source connects to the configured bucket. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies. A custom
// endpoint switches to path-style addressing for S3-compatible stores.
func NewS3Source(ctx context.Context, cfg *config.SourceConfig) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, config.ErrMissingSourceLocation
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", ErrSourceUnavailable, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3SourceWithClient(client, cfg.Bucket, cfg.Prefix, cfg.Retry.GetTimeout()), nil
}

// NewS3SourceWithClient wraps an existing client.
func NewS3SourceWithClient(client ObjectGetter, bucket, prefix string, timeout time.Duration) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix, timeout: timeout}
}

// Key returns the object key of a collection.
func (s *S3Source) Key(collection string) string {
	return s.prefix + collection + ".json"
}

// Load downloads and decodes one collection object.
func (s *S3Source) Load(ctx context.Context, collection string) ([]*models.Document, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	key := s.Key(collection)

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrCollectionMissing, s.bucket, key)
		}

		return nil, fmt.Errorf("%w: s3 get failed: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	docs, err := Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode s3://%s/%s: %w", s.bucket, key, err)
	}

	return docs, nil
}
