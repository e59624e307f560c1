package client

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// MockS3Client implements S3ClientInterface for tests without AWS credentials
type MockS3Client struct {
	Bucket string
	Region string

	GenerateFileKeyFunc      func(category, owner, fileExt string) (string, error)
	GeneratePresignedURLFunc func(ctx context.Context, category, owner, fileName, contentType string) (string, string, error)
	UploadFileFunc           func(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFileFunc           func(ctx context.Context, key string) error

	// Deleted records keys passed to DeleteFile
	Deleted []string
}

// NewMockS3Client creates a new mock S3 client
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket: "test-bucket",
		Region: "us-east-1",
	}
}

func (m *MockS3Client) GenerateFileKey(category, owner, fileExt string) (string, error) {
	if m.GenerateFileKeyFunc != nil {
		return m.GenerateFileKeyFunc(category, owner, fileExt)
	}
	return generateFileKey(category, owner, fileExt, time.Now())
}

func (m *MockS3Client) GeneratePresignedURL(ctx context.Context, category, owner, fileName, contentType string) (string, string, error) {
	if m.GeneratePresignedURLFunc != nil {
		return m.GeneratePresignedURLFunc(ctx, category, owner, fileName, contentType)
	}

	key, err := m.GenerateFileKey(category, owner, filepath.Ext(fileName))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate file key: %w", err)
	}
	return m.GetFileURL(key) + "?X-Amz-Signature=mock", key, nil
}

func (m *MockS3Client) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, key, file, contentType)
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	return m.GetFileURL(key), nil
}

func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	m.Deleted = append(m.Deleted, key)
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}
	return nil
}

func (m *MockS3Client) GetFileURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Bucket, m.Region, key)
}

var _ S3ClientInterface = (*MockS3Client)(nil)
