package usecases

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/mapper"
	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/pkg/config"
	consts "media-pipeline/pkg/constants"
	"media-pipeline/pkg/errors"

	"go.uber.org/zap"
)

type JobStatusService interface {
	CheckJobStatus(ctx context.Context, req *dto.CheckJobStatusRequest) (*dto.CheckJobStatusResponse, error)
	HandleJobStateChange(ctx context.Context, msg *dto.JobStateChangeMessage) error
}

type jobStatusService struct {
	media       repositories.MediaPlatform
	publisher   repositories.MessagePublisher
	queues      config.QueueConfig
	apiEndpoint string
	logger      *zap.Logger

	pollAttempts int
	pollDelay    time.Duration
}

func NewJobStatusService(media repositories.MediaPlatform, publisher repositories.MessagePublisher, queues config.QueueConfig, apiEndpoint string, logger *zap.Logger) JobStatusService {
	return &jobStatusService{
		media:        media,
		publisher:    publisher,
		queues:       queues,
		apiEndpoint:  apiEndpoint,
		logger:       logger,
		pollAttempts: consts.JobStatusPollAttempts,
		pollDelay:    consts.JobStatusPollDelay,
	}
}

func (s *jobStatusService) CheckJobStatus(ctx context.Context, req *dto.CheckJobStatusRequest) (*dto.CheckJobStatusResponse, error) {
	if req == nil || strings.TrimSpace(req.JobID) == "" {
		return nil, errors.ErrValidation("Please pass the job ID in the input object (JobId)")
	}

	job, err := s.getJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	for i := 0; i < s.pollAttempts && !job.State.IsTerminal(); i++ {
		timer := time.NewTimer(s.pollDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if job, err = s.getJob(ctx, req.JobID); err != nil {
			return nil, err
		}
	}

	resp := mapper.JobToStatusResponse(job)

	if req.ExtendedInfo && job.State.IsTerminal() {
		info, err := s.extendedInfo(ctx)
		if err != nil {
			return nil, err
		}
		resp.ExtendedInfo = info
	}
	return resp, nil
}

func (s *jobStatusService) getJob(ctx context.Context, id string) (*entities.Job, error) {
	job, err := s.media.GetJob(ctx, id)
	if stderrors.Is(err, repositories.ErrNotFound) {
		return nil, errors.ErrJobNotFound(err)
	}
	return job, err
}

func (s *jobStatusService) extendedInfo(ctx context.Context) (*dto.ExtendedInfo, error) {
	units, err := s.media.EncodingReservedUnits(ctx)
	if err != nil {
		return nil, err
	}

	info := &dto.ExtendedInfo{
		MediaUnitNumber:    units.CurrentReservedUnits,
		MediaUnitSize:      units.ReservedUnitType.SizeName(),
		AmsRESTAPIEndpoint: s.apiEndpoint,
	}
	counts := []struct {
		state entities.JobState
		dst   *int
	}{
		{entities.JobStateProcessing, &info.OtherJobsProcessing},
		{entities.JobStateScheduled, &info.OtherJobsScheduled},
		{entities.JobStateQueued, &info.OtherJobsQueue},
	}
	for _, c := range counts {
		n, err := s.media.CountJobs(ctx, c.state)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return info, nil
}

// HandleJobStateChange reacts to terminal job notifications. On Finished the
// output asset inherits the mezzanine's alternate id, is queued for content
// protection, and only then is the mezzanine deleted.
func (s *jobStatusService) HandleJobStateChange(ctx context.Context, msg *dto.JobStateChangeMessage) error {
	log := s.logger.With(zap.String("jobId", msg.Properties.JobID), zap.String("newState", string(msg.Properties.NewState)))

	switch msg.Properties.NewState {
	case entities.JobStateFinished:
		return s.jobFinished(ctx, log, msg.Properties.JobID)
	case entities.JobStateError, entities.JobStateCanceled:
		return s.jobFailed(ctx, log, msg.Properties.JobID)
	default:
		log.Debug("job state change ignored")
		return nil
	}
}

func (s *jobStatusService) jobFinished(ctx context.Context, log *zap.Logger, jobID string) error {
	job, err := s.media.GetJob(ctx, jobID)
	if stderrors.Is(err, repositories.ErrNotFound) {
		log.Warn("job not found")
		return nil
	}
	if err != nil {
		return err
	}

	mezzanineID, outputID := job.InputAssetID(), job.OutputAssetID()
	if mezzanineID == "" || outputID == "" {
		log.Warn("job has no input or output asset")
		return nil
	}
	log = log.With(zap.String("mezzanineId", mezzanineID), zap.String("assetId", outputID))

	mezzanine, err := s.media.GetAsset(ctx, mezzanineID)
	if stderrors.Is(err, repositories.ErrNotFound) {
		log.Info("mezzanine asset already removed")
		return nil
	}
	if err != nil {
		return err
	}
	output, err := s.media.GetAsset(ctx, outputID)
	if stderrors.Is(err, repositories.ErrNotFound) {
		log.Warn("output asset not found")
		return nil
	}
	if err != nil {
		return err
	}

	output.AlternateID = mezzanine.AlternateID
	if err := s.media.UpdateAsset(ctx, output); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, s.queues.ContentProtection, []byte(output.ID)); err != nil {
		return err
	}

	if err := s.media.DeleteAsset(ctx, mezzanine.ID); err != nil && !stderrors.Is(err, repositories.ErrNotFound) {
		return err
	}

	log.Info("encode finished, output queued for content protection", zap.String("alternateId", output.AlternateID))
	return nil
}

func (s *jobStatusService) jobFailed(ctx context.Context, log *zap.Logger, jobID string) error {
	job, err := s.media.GetJob(ctx, jobID)
	if stderrors.Is(err, repositories.ErrNotFound) {
		log.Warn("job not found")
		return nil
	}
	if err != nil {
		return err
	}

	msg := dto.UpdateReferenceMessage{
		AssetID:      job.InputAssetID(),
		Status:       dto.WorkflowError,
		ErrorMessage: mapper.TaskErrors(job),
	}
	if msg.AssetID == "" {
		log.Warn("failed job has no input asset")
		return nil
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	log.Warn("encode job did not finish", zap.String("errorText", msg.ErrorMessage))
	return s.publisher.Publish(ctx, s.queues.UpdateCMS, body)
}
