package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string // e.g., "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	PublicURL       string // e.g., "http://localhost:9000/exports"
}

// ObjectPutter is the subset of the S3 client used for archiving
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage archives exported reports to S3-compatible storage
type S3Storage struct {
	client    ObjectPutter
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewS3Storage creates a new S3 storage client
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true, // Required for MinIO
	})

	return NewS3StorageWithClient(client, cfg.Bucket, cfg.PublicURL), nil
}

// NewS3StorageWithClient wraps an existing client
func NewS3StorageWithClient(client ObjectPutter, bucket, publicURL string) *S3Storage {
	return &S3Storage{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
		now:       time.Now,
	}
}

// ArchiveOutput describes an archived export
type ArchiveOutput struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ArchiveCSV uploads a CSV export under exports/YYYY/MM/DD/filename
func (s *S3Storage) ArchiveCSV(ctx context.Context, filename string, body []byte) (*ArchiveOutput, error) {
	now := s.now()
	key := path.Join("exports", now.Format("2006/01/02"), path.Base(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("text/csv; charset=utf-8"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading to s3: %w", err)
	}

	return &ArchiveOutput{
		Key:        key,
		URL:        fmt.Sprintf("%s/%s", s.publicURL, key),
		Size:       int64(len(body)),
		UploadedAt: now,
	}, nil
}
