package repositories

import (
	"context"
	"io"
	"time"

	"media-pipeline/internal/domain/entities"
)

type StagingStorage interface {
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	// StartCopy returns once the copy is registered; the bytes move in the background.
	StartCopy(ctx context.Context, sourceURL, name string) error
	// List skips blobs under the poison prefix.
	List(ctx context.Context) ([]entities.StagedBlob, error)
	Stat(ctx context.Context, name string) (*entities.StagedBlob, error)
	PresignGet(ctx context.Context, name string, ttl time.Duration) (string, error)
	DeleteIfExists(ctx context.Context, name string) error
	// RecordFailure counts a failed encode submission and returns the total.
	RecordFailure(ctx context.Context, name string) (int, error)
	MoveToPoison(ctx context.Context, name string) error
}

// SourcePresigner turns an s3:// source into a short-lived https URL.
type SourcePresigner interface {
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
