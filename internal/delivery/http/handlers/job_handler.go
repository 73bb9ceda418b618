package handlers

import (
	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/usecases"
	"media-pipeline/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type JobHandler struct {
	encodeService    usecases.EncodeService
	jobStatusService usecases.JobStatusService
}

func NewJobHandler(encodeService usecases.EncodeService, jobStatusService usecases.JobStatusService) *JobHandler {
	return &JobHandler{
		encodeService:    encodeService,
		jobStatusService: jobStatusService,
	}
}

// SubmitJob
//
// @Summary      Submit Job
// @Description  Submits a single-task encoding job for an existing asset
// @Tags         Jobs
// @Accept       json
// @Produce      json
// @Param        request  body      dto.EncodeJobRequest true "Asset id and encoder preset"
// @Success      200      {object}  dto.EncodeJobResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.InternalErrorResponse
// @Security     FunctionKey
// @Router       /submit-job [post]
func (h *JobHandler) SubmitJob(c *fiber.Ctx) error {
	var req dto.EncodeJobRequest
	if err := parseBody(c, &req); err != nil {
		return errors.HandleError(c, err)
	}

	resp, err := h.encodeService.SubmitJob(c.UserContext(), &req)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}

// CheckJobStatus
//
// @Summary      Check Job Status
// @Description  Polls a job until it is terminal or the poll budget is spent
// @Tags         Jobs
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CheckJobStatusRequest true "Job id"
// @Success      200      {object}  dto.CheckJobStatusResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse "Job not found"
// @Security     FunctionKey
// @Router       /check-job-status [post]
func (h *JobHandler) CheckJobStatus(c *fiber.Ctx) error {
	var req dto.CheckJobStatusRequest
	if err := parseBody(c, &req); err != nil {
		return errors.HandleError(c, err)
	}

	resp, err := h.jobStatusService.CheckJobStatus(c.UserContext(), &req)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}
