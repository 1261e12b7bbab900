package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the artifact as a single object in an S3 bucket.
type S3Store struct {
	client S3API
	bucket string
	key    string
}

// NewS3Store wraps an existing client.
func NewS3Store(client S3API, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key}
}

// NewS3Client builds a client from the default AWS credential chain. Path
// style addressing keeps S3-compatible endpoints (MinIO, LocalStack) working
// when AWS_ENDPOINT_URL is set.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("classifier: load AWS config: %w", err)
	}
	return s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
		UsePathStyle: true,
	}), nil
}

func (s *S3Store) Location() string { return "s3://" + s.bucket + "/" + s.key }

func (s *S3Store) Load(ctx context.Context) (*Model, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNoArtifact
		}
		return nil, fmt.Errorf("classifier: get %s: %w", s.Location(), err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("classifier: read %s: %w", s.Location(), err)
	}
	return decodeModel(b)
}

// Save overwrites the object. S3 PUTs are atomic per object, so readers see
// either the old or the new artifact.
func (s *S3Store) Save(ctx context.Context, m *Model) error {
	b, err := encodeModel(m)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("classifier: put %s: %w", s.Location(), err)
	}
	return nil
}
