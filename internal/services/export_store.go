package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrExportNotFound is returned by Fetch when nothing was archived under a name.
var ErrExportNotFound = errors.New("export not found")

// ExportStore archives batch CSVs so they outlive the in-memory batch store.
type ExportStore interface {
	Archive(ctx context.Context, name string, data []byte) (string, error)
	Fetch(ctx context.Context, name string) ([]byte, error)
}

type localExportStore struct {
	exportPath string
}

func NewLocalExportStore(exportPath string) (ExportStore, error) {
	s := &localExportStore{exportPath: exportPath}
	if err := s.ensureExportDir(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *localExportStore) ensureExportDir() error {
	if err := os.MkdirAll(s.exportPath, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	return nil
}

func (s *localExportStore) Archive(_ context.Context, name string, data []byte) (string, error) {
	path, err := s.filePath(name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

func (s *localExportStore) Fetch(_ context.Context, name string) ([]byte, error) {
	path, err := s.filePath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrExportNotFound
		}
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	return data, nil
}

func (s *localExportStore) filePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid export name %q", name)
	}
	return filepath.Join(s.exportPath, name), nil
}

// S3API is the subset of the S3 client used by the export archive.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3ExportConfig struct {
	Bucket      string
	EndpointURL string
	Region      string
	AccessKey   string
	SecretKey   string
}

type s3ExportStore struct {
	client S3API
	bucket string
}

func NewS3ExportStore(ctx context.Context, conf S3ExportConfig) (ExportStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(conf.Region),
	}
	if conf.AccessKey != "" && conf.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	if conf.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(conf.EndpointURL)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = conf.EndpointURL != ""
	})

	return NewS3ExportStoreWithClient(client, conf.Bucket), nil
}

func NewS3ExportStoreWithClient(client S3API, bucket string) ExportStore {
	return &s3ExportStore{client: client, bucket: bucket}
}

func (s *s3ExportStore) Archive(ctx context.Context, name string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, name), nil
}

func (s *s3ExportStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrExportNotFound
		}
		return nil, fmt.Errorf("failed to download export: %w", err)
	}
	defer result.Body.Close()

	body, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export body: %w", err)
	}
	return body, nil
}
