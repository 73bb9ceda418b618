package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"media-pipeline/internal/pkg/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioSourcePresigner signs GET URLs for remote S3 sources with static
// credentials, so the staging copy pulls the bytes directly.
type MinioSourcePresigner struct {
	client *minio.Client
}

func NewMinioSourcePresigner(cfg config.SourceConfig) (*MinioSourcePresigner, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client oluşturulamadı: %w", err)
	}
	return &MinioSourcePresigner{client: client}, nil
}

func (p *MinioSourcePresigner) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := p.client.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign s3://%s/%s failed: %w", bucket, key, err)
	}
	return u.String(), nil
}
