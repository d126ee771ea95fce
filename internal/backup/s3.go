package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the settings for offsite backup copies. An empty
// Bucket disables uploads.
type S3Config struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// Uploader copies backup files to an S3-compatible object store.
type Uploader struct {
	cfg    S3Config
	logger *slog.Logger
}

// NewUploader creates an Uploader.
func NewUploader(cfg S3Config, logger *slog.Logger) *Uploader {
	return &Uploader{cfg: cfg, logger: logger}
}

// Enabled reports whether uploads are configured.
func (u *Uploader) Enabled() bool { return u.cfg.Bucket != "" }

func (u *Uploader) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(u.cfg.Region),
	}
	if u.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(u.cfg.AccessKey, u.cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if u.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(u.cfg.BaseEndpoint)
		}
	}), nil
}

// Upload copies the file at path to the bucket under backups/<name>.
func (u *Uploader) Upload(ctx context.Context, path string) error {
	client, err := u.client(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	key := "backups/" + filepath.Base(path)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	u.logger.Info("backup uploaded", "bucket", u.cfg.Bucket, "key", key)
	return nil
}
