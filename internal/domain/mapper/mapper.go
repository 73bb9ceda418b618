package mapper

import (
	"fmt"
	"strings"

	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/domain/entities"
	"media-pipeline/pkg/helper"
)

// JobToStatusResponse maps a job to the check-job-status body. ExtendedInfo
// is left for the caller.
func JobToStatusResponse(job *entities.Job) *dto.CheckJobStatusResponse {
	resp := &dto.CheckJobStatusResponse{
		JobState:        job.State,
		StartTime:       job.StartTime,
		EndTime:         job.EndTime,
		RunningDuration: helper.FormatTimeSpan(job.RunningDuration),
		IsRunning:       !job.State.IsTerminal(),
		IsSuccessful:    job.State == entities.JobStateFinished,
	}
	if job.State == entities.JobStateError || job.State == entities.JobStateCanceled {
		resp.ErrorText = TaskErrors(job)
	}
	return resp
}

// TaskErrors is one "<task> : <message>" line per task error detail.
func TaskErrors(job *entities.Job) string {
	var lines []string
	for _, task := range job.Tasks {
		for _, detail := range task.ErrorDetails {
			lines = append(lines, fmt.Sprintf("%s : %s", task.Name, detail.Message))
		}
	}
	return strings.Join(lines, "\n")
}
