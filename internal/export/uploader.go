package export

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
)

// Uploader writes a finished snapshot somewhere durable. The GCS
// implementation is used in production; tests substitute a fake.
type Uploader interface {
	Upload(ctx context.Context, objectName string, data []byte) error
}

// GCSUploader uploads snapshots to a Google Cloud Storage bucket.
// It assumes Application Default Credentials are configured.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

// NewGCSUploader creates an uploader backed by the given bucket.
func NewGCSUploader(ctx context.Context, bucket string) (*GCSUploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket}, nil
}

// Upload writes data to the bucket under objectName.
func (u *GCSUploader) Upload(ctx context.Context, objectName string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	obj := u.client.Bucket(u.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", objectName, err)
	}

	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload %q: %w", objectName, err)
	}

	return nil
}

// Close releases the underlying storage client.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}
