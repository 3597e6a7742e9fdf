package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fadilmartias/resume-screener/internal/config"
)

// FileStoreInterface archives uploaded documents and returns the key they were stored under.
type FileStoreInterface interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

func NewFileStore(ctx context.Context, cfg *config.StorageConfig, uploadDir string) (FileStoreInterface, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3FileStore(ctx, cfg)
	case "local", "":
		return NewLocalFileStore(uploadDir), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type LocalFileStore struct {
	Dir string
}

func NewLocalFileStore(dir string) *LocalFileStore {
	return &LocalFileStore{Dir: dir}
}

func (s *LocalFileStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return key, nil
}

type S3FileStore struct {
	client *s3.Client
	bucket string
}

func NewS3FileStore(ctx context.Context, cfg *config.StorageConfig) (*S3FileStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3FileStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3FileStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return key, nil
}
