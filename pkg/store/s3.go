package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	errs "github.com/matzehuels/randlist/pkg/errors"
)

// S3Store keeps each blob as an object in one bucket. It works against AWS
// and S3-compatible servers such as MinIO through cfg.Endpoint.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds a client from cfg. Static credentials are used when an
// access key is given, the default AWS credential chain otherwise.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "s3 store needs a bucket")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(cfg.Endpoint))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Get downloads the object for key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return s3Error(err)
		}
		defer out.Body.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, out.Body); err != nil {
			return Retryable(err)
		}
		data = buf.Bytes()
		return nil
	})

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "s3 get %s/%s", s.bucket, key)
	}
	return data, nil
}

// Put uploads data as the object for key.
func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	if err := errs.ValidateKey(key); err != nil {
		return err
	}
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String("application/octet-stream"),
		})
		return s3Error(err)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "s3 put %s/%s", s.bucket, key)
	}
	return nil
}

// Delete removes the object for key.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return s3Error(err)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "s3 delete %s/%s", s.bucket, key)
	}
	return nil
}

// Close does nothing; the SDK client holds no connections of its own.
func (s *S3Store) Close() error {
	return nil
}

func s3Error(err error) error {
	var ne net.Error
	if errors.As(err, &ne) {
		return Retryable(err)
	}
	return err
}

// Ensure S3Store implements Store.
var _ Store = (*S3Store)(nil)
