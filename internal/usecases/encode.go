package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/pkg/config"
	consts "media-pipeline/pkg/constants"
	"media-pipeline/pkg/errors"
	"media-pipeline/pkg/file"
	"media-pipeline/pkg/helper"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
)

type EncodeService interface {
	// EncodeBlob turns a complete staging blob into an asset and submits its
	// encode job. Incomplete or already consumed blobs are skipped.
	EncodeBlob(ctx context.Context, blobName string) error
	SubmitJob(ctx context.Context, req *dto.EncodeJobRequest) (*dto.EncodeJobResponse, error)
}

type encodeService struct {
	media    repositories.MediaPlatform
	staging  repositories.StagingStorage
	encoding config.EncodingConfig
	queues   config.QueueConfig
	logger   *zap.Logger
}

func NewEncodeService(media repositories.MediaPlatform, staging repositories.StagingStorage, encoding config.EncodingConfig, queues config.QueueConfig, logger *zap.Logger) EncodeService {
	return &encodeService{
		media:    media,
		staging:  staging,
		encoding: encoding,
		queues:   queues,
		logger:   logger,
	}
}

func (s *encodeService) EncodeBlob(ctx context.Context, blobName string) error {
	log := s.logger.With(zap.String("blob", blobName))

	blob, err := s.staging.Stat(ctx, blobName)
	if stderrors.Is(err, repositories.ErrNotFound) {
		log.Debug("staging blob already consumed")
		return nil
	}
	if err != nil {
		return err
	}
	if !blob.IsComplete() {
		log.Debug("staging blob not complete yet", zap.String("copyStatus", string(blob.CopyStatus)))
		return nil
	}

	// Job inputs are resolved before the asset exists.
	preset, err := s.defaultPreset()
	if err != nil {
		return err
	}
	processor, err := s.latestProcessor(ctx)
	if err != nil {
		return err
	}
	endpoint, err := s.notificationEndpoint(ctx)
	if err != nil {
		return err
	}
	blobURL, err := s.staging.PresignGet(ctx, blobName, consts.StagingPresignTTL)
	if err != nil {
		return err
	}

	asset, err := s.media.CreateAssetFromBlob(ctx, blobName, blobURL)
	if err != nil {
		return fmt.Errorf("create asset from %s: %w", blobName, err)
	}
	log = log.With(zap.String("assetId", asset.ID))

	asset.AlternateID = file.ReferenceID(blobName)
	if err := s.media.UpdateAsset(ctx, asset); err != nil {
		s.discardAsset(ctx, log, asset.ID)
		return fmt.Errorf("set alternate id on %s: %w", asset.ID, err)
	}
	log = log.With(zap.String("alternateId", asset.AlternateID))

	name := asset.Name + " encoded"
	job, err := s.media.SubmitJob(ctx, entities.JobSpec{
		Name: name,
		Tasks: []entities.TaskSpec{{
			Name:            name,
			ProcessorID:     processor.ID,
			Configuration:   preset,
			InputAssetIDs:   []string{asset.ID},
			OutputAssetName: name,
		}},
		NotificationEndpointID: endpoint.ID,
	})
	if err != nil {
		s.discardAsset(ctx, log, asset.ID)
		return fmt.Errorf("submit encode job for %s: %w", asset.ID, err)
	}

	if err := s.staging.DeleteIfExists(ctx, blobName); err != nil {
		return err
	}

	log.Info("encode job submitted", zap.String("jobId", job.ID), zap.String("processor", processor.Version))
	return nil
}

// discardAsset removes an asset whose job never got submitted; the blob stays
// in staging and the next pass creates a fresh one.
func (s *encodeService) discardAsset(ctx context.Context, log *zap.Logger, id string) {
	if err := s.media.DeleteAsset(context.WithoutCancel(ctx), id); err != nil && !stderrors.Is(err, repositories.ErrNotFound) {
		log.Error("failed to discard unsubmitted asset", zap.Error(err))
	}
}

func (s *encodeService) SubmitJob(ctx context.Context, req *dto.EncodeJobRequest) (*dto.EncodeJobResponse, error) {
	if req == nil || strings.TrimSpace(req.AssetID) == "" {
		return nil, errors.ErrValidation("Please pass asset ID in the input object (assetId)")
	}
	if strings.TrimSpace(req.MesPreset) == "" {
		return nil, errors.ErrValidation("Please pass the encoder preset in the input object (mesPreset)")
	}

	asset, err := s.media.GetAsset(ctx, req.AssetID)
	if stderrors.Is(err, repositories.ErrNotFound) {
		return nil, errors.ErrAssetNotFound(err)
	}
	if err != nil {
		return nil, err
	}

	preset, err := s.requestPreset(req.MesPreset)
	if err != nil {
		return nil, err
	}
	processor, err := s.latestProcessor(ctx)
	if err != nil {
		return nil, err
	}
	endpoint, err := s.notificationEndpoint(ctx)
	if err != nil {
		return nil, err
	}

	job, err := s.media.SubmitJob(ctx, entities.JobSpec{
		Name:     consts.SubmitJobName,
		Priority: consts.SubmitJobPriority,
		Tasks: []entities.TaskSpec{{
			Name:            consts.EncodeTaskName,
			ProcessorID:     processor.ID,
			Configuration:   preset,
			InputAssetIDs:   []string{asset.ID},
			OutputAssetName: asset.Name + " encoded",
		}},
		NotificationEndpointID: endpoint.ID,
	})
	if err != nil {
		return nil, err
	}

	queued, err := s.media.CountJobs(ctx, entities.JobStateQueued)
	if err != nil {
		return nil, err
	}

	resp := &dto.EncodeJobResponse{JobID: job.ID, OtherJobsQueue: queued}
	if len(job.Tasks) > 0 {
		taskID := job.Tasks[0].ID
		resp.Mes.TaskID = &taskID
		if out := job.OutputAssetID(); out != "" {
			resp.Mes.AssetID = &out
		}
	}

	s.logger.Info("job submitted", zap.String("jobId", job.ID), zap.String("assetId", asset.ID))
	return resp, nil
}

// defaultPreset: inline override > preset file > system preset name.
func (s *encodeService) defaultPreset() (string, error) {
	if strings.TrimSpace(s.encoding.Preset) != "" {
		return s.encoding.Preset, nil
	}
	if s.encoding.PresetFile != "" {
		p := s.encoding.PresetFile
		if _, err := os.Stat(p); err != nil && !filepath.IsAbs(p) {
			p = filepath.Join(s.encoding.PresetsDir, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("read preset file: %w", err)
		}
		return string(data), nil
	}
	return s.encoding.PresetName, nil
}

// requestPreset loads .json/.xml presets from the presets directory; anything
// else is a preset name or inline preset.
func (s *encodeService) requestPreset(preset string) (string, error) {
	if !helper.IsPresetFile(preset) {
		return preset, nil
	}
	data, err := os.ReadFile(filepath.Join(s.encoding.PresetsDir, filepath.Base(preset)))
	if err != nil {
		return "", fmt.Errorf("read preset %s: %w", preset, err)
	}
	return string(data), nil
}

func (s *encodeService) latestProcessor(ctx context.Context) (*entities.MediaProcessor, error) {
	processors, err := s.media.ListProcessors(ctx, s.encoding.ProcessorName)
	if err != nil {
		return nil, err
	}

	var latest *entities.MediaProcessor
	for i := range processors {
		p := &processors[i]
		if !strings.EqualFold(p.Name, s.encoding.ProcessorName) {
			continue
		}
		if latest == nil || compareVersions(p.Version, latest.Version) > 0 {
			latest = p
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("media processor %q not found", s.encoding.ProcessorName)
	}
	return latest, nil
}

// compareVersions orders dotted versions. Semver-shaped versions ("1.2",
// "v4.12.0") go through semver; anything else is compared part by part.
func compareVersions(a, b string) int {
	va, vb := canonicalVersion(a), canonicalVersion(b)
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}

	pa, pb := strings.Split(strings.TrimPrefix(a, "v"), "."), strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var x, y int
		if i < len(pa) {
			x, _ = strconv.Atoi(pa[i])
		}
		if i < len(pb) {
			y, _ = strconv.Atoi(pb[i])
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// notificationEndpoint returns the queue endpoint for job notifications,
// creating it on first use.
func (s *encodeService) notificationEndpoint(ctx context.Context) (*entities.NotificationEndpoint, error) {
	endpoint, err := s.media.FindNotificationEndpoint(ctx, s.queues.NotificationEndpointName)
	if err == nil {
		return endpoint, nil
	}
	if !stderrors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	endpoint, err = s.media.CreateNotificationEndpoint(ctx, s.queues.NotificationEndpointName, s.queues.EncodeJobs)
	if err != nil {
		return nil, fmt.Errorf("create notification endpoint: %w", err)
	}
	s.logger.Info("notification endpoint created", zap.String("name", endpoint.Name), zap.String("address", endpoint.Address))
	return endpoint, nil
}
