package client

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	appConfig "github.com/dadolfin1208/signalforge/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Upload categories used as the first key segment
const (
	CategoryAudio      = "audio"
	CategoryInstallers = "installers"
)

// PresignExpiry is how long a presigned upload URL stays valid
const PresignExpiry = 15 * time.Minute

// S3ClientInterface defines the interface for S3 operations
type S3ClientInterface interface {
	GenerateFileKey(category, owner, fileExt string) (string, error)
	GeneratePresignedURL(ctx context.Context, category, owner, fileName, contentType string) (string, string, error)
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
}

// S3Client wraps AWS S3 client and implements S3ClientInterface
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	endpoint      string // set for MinIO and other S3-compatible stores
}

// NewS3Client creates a new S3 client
func NewS3Client(cfg *appConfig.S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	} else if cfg.Endpoint != "" {
		return nil, fmt.Errorf("access key and secret key are required for a custom S3 endpoint")
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Client{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      cfg.Endpoint,
	}, nil
}

// GenerateFileKey generates a unique object key
// Format: {category}/{owner}/{year}/{month}/{uuid}_{timestamp}{ext}
func (c *S3Client) GenerateFileKey(category, owner, fileExt string) (string, error) {
	return generateFileKey(category, owner, fileExt, time.Now())
}

func generateFileKey(category, owner, fileExt string, now time.Time) (string, error) {
	if category != CategoryAudio && category != CategoryInstallers {
		return "", fmt.Errorf("invalid upload category: %q (must be %q or %q)", category, CategoryAudio, CategoryInstallers)
	}
	if owner == "" {
		return "", fmt.Errorf("owner is required")
	}

	// emails are not safe path segments everywhere
	owner = strings.NewReplacer("@", "_at_", "/", "_").Replace(owner)

	return fmt.Sprintf("%s/%s/%s/%s/%s_%d%s",
		category, owner, now.Format("2006"), now.Format("01"),
		uuid.New().String(), now.Unix(), strings.ToLower(fileExt)), nil
}

// GeneratePresignedURL returns a presigned PUT URL and the object key it targets
func (c *S3Client) GeneratePresignedURL(ctx context.Context, category, owner, fileName, contentType string) (string, string, error) {
	fileKey, err := c.GenerateFileKey(category, owner, filepath.Ext(fileName))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate file key: %w", err)
	}

	presigned, err := c.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(fileKey),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = PresignExpiry
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return presigned.URL, fileKey, nil
}

// UploadFile uploads a file to S3 and returns its URL
func (c *S3Client) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return c.GetFileURL(key), nil
}

// DeleteFile deletes a file from S3
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GetFileURL returns the public URL for a key
func (c *S3Client) GetFileURL(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.endpoint, "/"), c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}
