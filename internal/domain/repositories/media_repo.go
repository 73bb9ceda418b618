package repositories

import (
	"context"
	"errors"
	"time"

	"media-pipeline/internal/domain/entities"
)

// ErrNotFound is returned by the media service for absent entities.
var ErrNotFound = errors.New("not found")

//* Her usecase sadece ihtiyacı olan arayüze bağlanır

type AssetRepository interface {
	GetAsset(ctx context.Context, id string) (*entities.Asset, error)
	CreateAssetFromBlob(ctx context.Context, name, blobURL string) (*entities.Asset, error)
	UpdateAsset(ctx context.Context, asset *entities.Asset) error
	DeleteAsset(ctx context.Context, id string) error
	GetAssetMetadata(ctx context.Context, id string) ([]entities.AssetFileMetadata, error)
	StreamingURL(ctx context.Context, id string) (string, error)
}

type JobRepository interface {
	GetJob(ctx context.Context, id string) (*entities.Job, error)
	SubmitJob(ctx context.Context, spec entities.JobSpec) (*entities.Job, error)
	CountJobs(ctx context.Context, state entities.JobState) (int, error)
	ListProcessors(ctx context.Context, name string) ([]entities.MediaProcessor, error)
	EncodingReservedUnits(ctx context.Context) (*entities.ReservedUnits, error)
}

type NotificationRepository interface {
	FindNotificationEndpoint(ctx context.Context, name string) (*entities.NotificationEndpoint, error)
	CreateNotificationEndpoint(ctx context.Context, name, address string) (*entities.NotificationEndpoint, error)
}

type ContentProtectionRepository interface {
	CreateContentKey(ctx context.Context, key entities.ContentKey) (*entities.ContentKey, error)
	SetKeyAuthorizationPolicy(ctx context.Context, keyID, policyID string) error
	FindAuthorizationPolicy(ctx context.Context, name string) (*entities.Policy, error)
	FindDeliveryPolicy(ctx context.Context, name string) (*entities.Policy, error)
	AttachDeliveryPolicy(ctx context.Context, assetID, policyID string) error
}

type LocatorRepository interface {
	CreateLocator(ctx context.Context, assetID string, permissions entities.AccessPermission, duration time.Duration) (*entities.Locator, error)
}

// MediaPlatform is the full surface of the media service client.
type MediaPlatform interface {
	AssetRepository
	JobRepository
	NotificationRepository
	ContentProtectionRepository
	LocatorRepository
}
