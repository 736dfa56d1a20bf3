package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config locates the bucket tiles are published to. Endpoint is only needed
// for S3 compatible stores such as MinIO.
type Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// objectAPI is the subset of *s3.Client the uploader needs.
type objectAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// UploadError records a tile that could not be uploaded.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("storage: uploading %s: %v", e.Name, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Uploader publishes tile files to a bucket.
type Uploader struct {
	client objectAPI
	cfg    Config
	logger *slog.Logger
}

// New builds an S3 client for cfg.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: no bucket given")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newUploader(client, cfg, logger), nil
}

func newUploader(client objectAPI, cfg Config, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Uploader{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Key returns the object key for a tile file name.
func (u *Uploader) Key(name string) string {
	return path.Join(u.cfg.Prefix, name)
}

// URL returns the location of a tile in the bucket, for consumers that
// fetch objects over plain HTTP.
func (u *Uploader) URL(name string) string {
	base := strings.TrimSuffix(u.cfg.Endpoint, "/")
	if base == "" {
		return fmt.Sprintf("s3://%s/%s", u.cfg.Bucket, u.Key(name))
	}
	return fmt.Sprintf("%s/%s/%s", base, u.cfg.Bucket, u.Key(name))
}

// EnsureBucket creates the bucket if it does not exist.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.cfg.Bucket),
	})
	if err == nil {
		return nil
	}

	if _, err := u.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(u.cfg.Bucket),
	}); err != nil {
		return fmt.Errorf("storage: creating bucket %s: %w", u.cfg.Bucket, err)
	}
	u.logger.Info("created bucket", "bucket", u.cfg.Bucket)
	return nil
}

// Upload puts each named file from dir into the bucket. Every file is
// attempted; failures are returned together.
func (u *Uploader) Upload(ctx context.Context, dir string, names []string) error {
	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if err := u.put(ctx, filepath.Join(dir, name), name); err != nil {
			u.logger.Warn("upload failed", "file", name, "error", err)
			errs = append(errs, &UploadError{Name: name, Err: err})
			continue
		}
		u.logger.Debug("uploaded", "file", name, "key", u.Key(name))
	}
	return errors.Join(errs...)
}

func (u *Uploader) put(ctx context.Context, file, name string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(u.Key(name)),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	_, err = u.client.PutObject(ctx, input)
	return err
}
