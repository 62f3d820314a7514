package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/your-org/vms/internal/config"
)

// PhotoStore keeps enrollment photos in MinIO. The matching engine only
// ever sees embeddings; the raw photos stay here for operator review and
// re-enrollment.
type PhotoStore struct {
	client *minio.Client
	bucket string
}

func NewPhotoStore(cfg config.MinIOConfig) (*PhotoStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &PhotoStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *PhotoStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

func photoKey(visitorID uuid.UUID, position int) string {
	return fmt.Sprintf("enrollment/%s/%d.jpg", visitorID, position)
}

// PutEnrollmentPhoto stores one enrollment sample photo under the
// visitor's prefix at the given sample position.
func (s *PhotoStore) PutEnrollmentPhoto(ctx context.Context, visitorID uuid.UUID, position int, data []byte) (string, error) {
	key := photoKey(visitorID, position)
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("put photo %s: %w", key, err)
	}
	return key, nil
}

// GetEnrollmentPhoto fetches a stored sample photo.
func (s *PhotoStore) GetEnrollmentPhoto(ctx context.Context, visitorID uuid.UUID, position int) ([]byte, error) {
	key := photoKey(visitorID, position)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get photo %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read photo %s: %w", key, err)
	}
	return data, nil
}

// ListEnrollmentPhotos returns the stored photo keys for a visitor.
func (s *PhotoStore) ListEnrollmentPhotos(ctx context.Context, visitorID uuid.UUID) ([]string, error) {
	prefix := fmt.Sprintf("enrollment/%s/", visitorID)
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list photos %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// DeleteEnrollmentPhotos removes every photo under a visitor's prefix.
// Re-enrollment replaces the profile atomically, so the old photos are
// cleared in one batch first.
func (s *PhotoStore) DeleteEnrollmentPhotos(ctx context.Context, visitorID uuid.UUID) error {
	keys, err := s.ListEnrollmentPhotos(ctx, visitorID)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)
	for result := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if result.Err != nil {
			return fmt.Errorf("delete photo %s: %w", result.ObjectName, result.Err)
		}
	}
	return nil
}

// Ping checks MinIO connectivity.
func (s *PhotoStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
