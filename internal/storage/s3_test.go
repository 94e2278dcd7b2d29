package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveCSV(t *testing.T) {
	putter := &fakePutter{}
	s := NewS3StorageWithClient(putter, "reports", "http://minio:9000/reports")
	s.now = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) }

	out, err := s.ArchiveCSV(context.Background(), "accounts_2026-03-07.csv", []byte("\"a\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "exports/2026/03/07/accounts_2026-03-07.csv", out.Key)
	assert.Equal(t, "http://minio:9000/reports/exports/2026/03/07/accounts_2026-03-07.csv", out.URL)
	assert.Equal(t, int64(4), out.Size)

	assert.Equal(t, "reports", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "text/csv; charset=utf-8", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "\"a\"\n", string(putter.body))
}

func TestArchiveCSV_StripsDirectories(t *testing.T) {
	putter := &fakePutter{}
	s := NewS3StorageWithClient(putter, "reports", "")
	s.now = func() time.Time { return time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC) }

	out, err := s.ArchiveCSV(context.Background(), "../../etc/groups.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "exports/2026/03/07/groups.csv", out.Key)
}

func TestArchiveCSV_UploadError(t *testing.T) {
	s := NewS3StorageWithClient(&fakePutter{err: errors.New("denied")}, "reports", "")

	_, err := s.ArchiveCSV(context.Background(), "x.csv", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploading to s3")
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(S3Config{})
	assert.Error(t, err)
}
