package usecases

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/pkg/config"
	consts "media-pipeline/pkg/constants"

	"go.uber.org/zap"
)

type PublishService interface {
	PublishAsset(ctx context.Context, assetID string) error
}

type publishService struct {
	media     repositories.MediaPlatform
	publisher repositories.MessagePublisher
	queues    config.QueueConfig
	logger    *zap.Logger
}

func NewPublishService(media repositories.MediaPlatform, publisher repositories.MessagePublisher, queues config.QueueConfig, logger *zap.Logger) PublishService {
	return &publishService{
		media:     media,
		publisher: publisher,
		queues:    queues,
		logger:    logger,
	}
}

func (s *publishService) PublishAsset(ctx context.Context, assetID string) error {
	log := s.logger.With(zap.String("assetId", assetID))

	asset, err := s.media.GetAsset(ctx, assetID)
	if stderrors.Is(err, repositories.ErrNotFound) {
		log.Warn("asset not found, nothing to publish")
		return nil
	}
	if err != nil {
		return err
	}

	locator, err := s.media.CreateLocator(ctx, asset.ID, entities.AccessRead, consts.LocatorLifetime)
	if err != nil {
		return err
	}

	body, err := json.Marshal(dto.UpdateReferenceMessage{AssetID: asset.ID, Status: dto.WorkflowPublished})
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, s.queues.UpdateCMS, body); err != nil {
		return err
	}

	log.Info("asset published", zap.String("streamingUrl", locator.Path), zap.Time("expires", locator.ExpirationTime))
	return nil
}
