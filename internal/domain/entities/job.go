package entities

import "time"

type JobState string

const (
	JobStateQueued     JobState = "Queued"
	JobStateScheduled  JobState = "Scheduled"
	JobStateProcessing JobState = "Processing"
	JobStateFinished   JobState = "Finished"
	JobStateError      JobState = "Error"
	JobStateCanceled   JobState = "Canceled"
	JobStateCanceling  JobState = "Canceling"
)

// IsTerminal reports whether the job can no longer change state.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateFinished, JobStateError, JobStateCanceled:
		return true
	}
	return false
}

func (s JobState) IsValid() bool {
	switch s {
	case JobStateQueued, JobStateScheduled, JobStateProcessing,
		JobStateFinished, JobStateError, JobStateCanceled, JobStateCanceling:
		return true
	}
	return false
}

// Job is an encode operation submitted to the media service.
type Job struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	State           JobState      `json:"state"`
	Priority        int           `json:"priority"`
	StartTime       *time.Time    `json:"startTime,omitempty"`
	EndTime         *time.Time    `json:"endTime,omitempty"`
	RunningDuration time.Duration `json:"runningDuration"`
	Tasks           []Task        `json:"tasks"`
}

type Task struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	State          JobState      `json:"state,omitempty"`
	InputAssetIDs  []string      `json:"inputAssetIds"`
	OutputAssetIDs []string      `json:"outputAssetIds"`
	ErrorDetails   []ErrorDetail `json:"errorDetails,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InputAssetID returns the first input asset of the first task.
func (j *Job) InputAssetID() string {
	if len(j.Tasks) == 0 || len(j.Tasks[0].InputAssetIDs) == 0 {
		return ""
	}
	return j.Tasks[0].InputAssetIDs[0]
}

// OutputAssetID returns the first output asset of the first task.
func (j *Job) OutputAssetID() string {
	if len(j.Tasks) == 0 || len(j.Tasks[0].OutputAssetIDs) == 0 {
		return ""
	}
	return j.Tasks[0].OutputAssetIDs[0]
}

// JobSpec is what gets submitted to create a job.
type JobSpec struct {
	Name                   string     `json:"name"`
	Priority               int        `json:"priority"`
	Tasks                  []TaskSpec `json:"tasks"`
	NotificationEndpointID string     `json:"notificationEndpointId,omitempty"`
}

type TaskSpec struct {
	Name            string   `json:"name"`
	ProcessorID     string   `json:"processorId"`
	Configuration   string   `json:"configuration"`
	InputAssetIDs   []string `json:"inputAssetIds"`
	OutputAssetName string   `json:"outputAssetName"`
}

type MediaProcessor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type NotificationEndpoint struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address"`
}

const NotificationEndpointTypeQueue = "Queue"

type ReservedUnitType string

const (
	ReservedUnitBasic    ReservedUnitType = "Basic"
	ReservedUnitStandard ReservedUnitType = "Standard"
	ReservedUnitPremium  ReservedUnitType = "Premium"
)

// SizeName maps the reserved unit type to its S1/S2/S3 label.
func (t ReservedUnitType) SizeName() string {
	switch t {
	case ReservedUnitStandard:
		return "S2"
	case ReservedUnitPremium:
		return "S3"
	default:
		return "S1"
	}
}

type ReservedUnits struct {
	CurrentReservedUnits int              `json:"currentReservedUnits"`
	ReservedUnitType     ReservedUnitType `json:"reservedUnitType"`
}
