package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorageService implements StorageService on a Google Cloud Storage bucket.
type GCSStorageService struct {
	client     *storage.Client
	bucketName string
}

// NewGCSStorageService creates a GCS backend. With an empty credentials path the
// application default credentials are used.
func NewGCSStorageService(ctx context.Context, credentialsPath, bucketName string) (*GCSStorageService, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("GCS_BUCKET is required for the gcs storage provider")
	}
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStorageService{client: client, bucketName: bucketName}, nil
}

// PublicURL is the address of a public-read object.
func PublicURL(bucket, objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, strings.Join(segments, "/"))
}

func (s *GCSStorageService) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	w := s.client.Bucket(s.bucketName).Object(objectPath).NewWriter(ctx)
	w.ACL = []storage.ACLRule{{Entity: storage.AllUsers, Role: storage.RoleReader}}
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to copy file to storage: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return PublicURL(s.bucketName, objectPath), nil
}

func (s *GCSStorageService) Delete(ctx context.Context, objectPath string) error {
	if err := s.client.Bucket(s.bucketName).Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSStorageService) Close() error {
	return s.client.Close()
}
