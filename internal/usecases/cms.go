package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/infrastructure/metrics"
	"media-pipeline/pkg/errors"
	"media-pipeline/pkg/helper"

	"go.uber.org/zap"
)

type CMSService interface {
	NotifyCMS(ctx context.Context, msg *dto.UpdateReferenceMessage) error
}

type cmsService struct {
	media  repositories.MediaPlatform
	cms    repositories.CMSNotifier
	logger *zap.Logger
}

func NewCMSService(media repositories.MediaPlatform, cms repositories.CMSNotifier, logger *zap.Logger) CMSService {
	return &cmsService{
		media:  media,
		cms:    cms,
		logger: logger,
	}
}

func (s *cmsService) NotifyCMS(ctx context.Context, msg *dto.UpdateReferenceMessage) error {
	log := s.logger.With(zap.String("assetId", msg.AssetID), zap.Stringer("status", msg.Status))

	if msg.Status != dto.WorkflowPublished {
		log.Debug("cms update ignored")
		return nil
	}

	asset, err := s.media.GetAsset(ctx, msg.AssetID)
	if stderrors.Is(err, repositories.ErrNotFound) {
		log.Warn("asset not found, cms not notified")
		return nil
	}
	if err != nil {
		return err
	}

	files, err := s.media.GetAssetMetadata(ctx, asset.ID)
	if stderrors.Is(err, repositories.ErrNotFound) || (err == nil && len(files) == 0) {
		return fmt.Errorf("asset %s: %w", asset.ID, errors.ErrMetadataNotReady)
	}
	if err != nil {
		return err
	}

	ref := AggregateMetadata(files)
	ref.AssetID = asset.ID
	ref.AssetAlternateID = asset.AlternateID

	streamingURL, err := s.media.StreamingURL(ctx, asset.ID)
	if err != nil && !stderrors.Is(err, repositories.ErrNotFound) {
		return err
	}
	ref.BaseStreamingURI = streamingURL

	code, err := s.cms.Notify(ctx, ref)
	if err != nil {
		return err
	}
	metrics.CMSNotifications.WithLabelValues(strconv.Itoa(code/100) + "xx").Inc()
	if code < 200 || code > 299 {
		log.Warn("cms callback answered with non-success status", zap.Int("status", code))
		return nil
	}

	log.Info("cms notified", zap.String("alternateId", ref.AssetAlternateID))
	return nil
}

// AggregateMetadata folds per-variant metadata into one record: the longest
// duration, the largest video bitrate and dimensions over every track, the
// audio track count of the first variant and the aspect ratio of the first
// video track.
func AggregateMetadata(files []entities.AssetFileMetadata) dto.CMSReference {
	var ref dto.CMSReference
	if len(files) == 0 {
		return ref
	}

	var duration time.Duration
	seenVideo := false
	for _, f := range files {
		if f.Duration > duration {
			duration = f.Duration
		}
		for _, v := range f.VideoTracks {
			if !seenVideo {
				ref.AspectRatio = fmt.Sprintf("%d:%d", v.DisplayAspectRatioNumerator, v.DisplayAspectRatioDenominator)
				seenVideo = true
			}
			ref.Bitrate = max(ref.Bitrate, v.Bitrate)
			ref.Height = max(ref.Height, v.Height)
			ref.Width = max(ref.Width, v.Width)
		}
	}

	ref.Duration = helper.FormatTimeSpan(duration)
	ref.AudioTracksCount = len(files[0].AudioTracks)
	ref.VideoBitratesCount = len(files)
	return ref
}
