package client

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"github.com/dadolfin1208/signalforge/internal/config"
)

// ErrPresignUnsupported is returned by stores that only accept direct uploads.
var ErrPresignUnsupported = errors.New("presigned uploads are not supported by this storage backend")

// StoredFile describes a file after it has been written to storage.
type StoredFile struct {
	URL string
	// Key is empty when the backend does not expose object keys.
	Key string
}

// FileStore is where uploaded audio and installers end up.
type FileStore interface {
	Backend() string
	Put(ctx context.Context, category, owner, fileName, contentType string, file io.Reader) (*StoredFile, error)
	Presign(ctx context.Context, category, owner, fileName, contentType string) (uploadURL string, file *StoredFile, err error)
	Delete(ctx context.Context, key string) error
}

// platformFileStore uploads through the platform's core upload integration
type platformFileStore struct {
	pc *PlatformClient
}

// NewPlatformFileStore creates a FileStore backed by the hosted platform
func NewPlatformFileStore(pc *PlatformClient) FileStore {
	return &platformFileStore{pc: pc}
}

func (s *platformFileStore) Backend() string { return config.DriverPlatform }

func (s *platformFileStore) Put(ctx context.Context, category, owner, fileName, contentType string, file io.Reader) (*StoredFile, error) {
	res, err := s.pc.UploadFile(ctx, fileName, contentType, file)
	if err != nil {
		return nil, err
	}
	return &StoredFile{URL: res.FileURL}, nil
}

func (s *platformFileStore) Presign(ctx context.Context, category, owner, fileName, contentType string) (string, *StoredFile, error) {
	return "", nil, ErrPresignUnsupported
}

// Delete is a no-op: the platform keeps uploaded files and exposes no delete.
func (s *platformFileStore) Delete(ctx context.Context, key string) error {
	return nil
}

// s3FileStore writes objects under generated keys
type s3FileStore struct {
	s3 S3ClientInterface
}

// NewS3FileStore creates a FileStore backed by an S3 bucket
func NewS3FileStore(s3 S3ClientInterface) FileStore {
	return &s3FileStore{s3: s3}
}

func (s *s3FileStore) Backend() string { return config.DriverS3 }

func (s *s3FileStore) Put(ctx context.Context, category, owner, fileName, contentType string, file io.Reader) (*StoredFile, error) {
	key, err := s.s3.GenerateFileKey(category, owner, filepath.Ext(fileName))
	if err != nil {
		return nil, err
	}
	url, err := s.s3.UploadFile(ctx, key, file, contentType)
	if err != nil {
		return nil, err
	}
	return &StoredFile{URL: url, Key: key}, nil
}

func (s *s3FileStore) Presign(ctx context.Context, category, owner, fileName, contentType string) (string, *StoredFile, error) {
	uploadURL, key, err := s.s3.GeneratePresignedURL(ctx, category, owner, fileName, contentType)
	if err != nil {
		return "", nil, err
	}
	return uploadURL, &StoredFile{URL: s.s3.GetFileURL(key), Key: key}, nil
}

func (s *s3FileStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.s3.DeleteFile(ctx, key)
}
