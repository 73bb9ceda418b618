package dto

import (
	"time"

	"media-pipeline/internal/domain/entities"
)

type CheckJobStatusRequest struct {
	JobID        string `json:"JobId"`
	ExtendedInfo bool   `json:"ExtendedInfo"`
}

type CheckJobStatusResponse struct {
	JobState        entities.JobState `json:"jobState"`
	ErrorText       string            `json:"errorText"`
	StartTime       *time.Time        `json:"startTime"`
	EndTime         *time.Time        `json:"endTime"`
	RunningDuration string            `json:"runningDuration"`
	IsRunning       bool              `json:"isRunning"`
	IsSuccessful    bool              `json:"isSuccessful"`
	ExtendedInfo    *ExtendedInfo     `json:"ExtendedInfo"`
}

// ExtendedInfo is the operational snapshot returned on request.
type ExtendedInfo struct {
	MediaUnitNumber     int    `json:"MediaUnitNumber"`
	MediaUnitSize       string `json:"MediaUnitSize"`
	OtherJobsProcessing int    `json:"OtherJobsProcessing"`
	OtherJobsScheduled  int    `json:"OtherJobsScheduled"`
	OtherJobsQueue      int    `json:"OtherJobsQueue"`
	AmsRESTAPIEndpoint  string `json:"AmsRESTAPIEndpoint"`
}

type EncodeJobRequest struct {
	AssetID   string `json:"AssetId"`
	MesPreset string `json:"MesPreset"`
}

// TaskOutput points at the task and output asset of one job slot; nil when
// the slot was not requested.
type TaskOutput struct {
	AssetID *string `json:"AssetId"`
	TaskID  *string `json:"TaskId"`
}

type EncodeJobResponse struct {
	JobID           string     `json:"JobId"`
	OtherJobsQueue  int        `json:"OtherJobsQueue"`
	Mes             TaskOutput `json:"Mes"`
	Mepw            TaskOutput `json:"Mepw"`
	IndexV1         TaskOutput `json:"IndexV1"`
	IndexV2         TaskOutput `json:"IndexV2"`
	Ocr             TaskOutput `json:"Ocr"`
	FaceDetection   TaskOutput `json:"FaceDetection"`
	FaceRedaction   TaskOutput `json:"FaceRedaction"`
	MotionDetection TaskOutput `json:"MotionDetection"`
	Summarization   TaskOutput `json:"Summarization"`
	Hyperlapse      TaskOutput `json:"Hyperlapse"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// InternalErrorResponse carries the raw error text of an unexpected failure.
type InternalErrorResponse struct {
	Error string `json:"Error"`
}
