package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"media-pipeline/internal/domain/entities"
)

// JobStateChangeMessage is the notification the media service posts to the
// encode-jobs queue.
type JobStateChangeMessage struct {
	MessageVersion string                   `json:"MessageVersion,omitempty"`
	EventType      string                   `json:"EventType,omitempty"`
	ETag           string                   `json:"ETag,omitempty"`
	TimeStamp      *time.Time               `json:"TimeStamp,omitempty"`
	Properties     JobStateChangeProperties `json:"Properties"`
}

type JobStateChangeProperties struct {
	JobID    string            `json:"JobId"`
	OldState entities.JobState `json:"OldState,omitempty"`
	NewState entities.JobState `json:"NewState"`
}

func (m JobStateChangeMessage) Validate() error {
	if strings.TrimSpace(m.Properties.JobID) == "" {
		return fmt.Errorf("job state change: JobId is required")
	}
	if !m.Properties.NewState.IsValid() {
		return fmt.Errorf("job state change: unknown NewState %q", m.Properties.NewState)
	}
	return nil
}

type AssetWorkflowStatus int

const (
	WorkflowEncoding AssetWorkflowStatus = iota
	WorkflowContentProtectionAdded
	WorkflowPublished
	WorkflowError
)

var workflowStatusNames = [...]string{"Encoding", "ContentProtectionAdded", "Published", "Error"}

func (s AssetWorkflowStatus) String() string {
	if s < 0 || int(s) >= len(workflowStatusNames) {
		return fmt.Sprintf("AssetWorkflowStatus(%d)", int(s))
	}
	return workflowStatusNames[s]
}

func (s AssetWorkflowStatus) MarshalJSON() ([]byte, error) {
	if s < 0 || int(s) >= len(workflowStatusNames) {
		return nil, fmt.Errorf("invalid workflow status %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the status either by name or by ordinal.
func (s *AssetWorkflowStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		for i, n := range workflowStatusNames {
			if strings.EqualFold(n, name) {
				*s = AssetWorkflowStatus(i)
				return nil
			}
		}
		return fmt.Errorf("unknown workflow status %q", name)
	}

	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err != nil {
		return fmt.Errorf("workflow status must be a name or a number: %w", err)
	}
	if ordinal < 0 || ordinal >= len(workflowStatusNames) {
		return fmt.Errorf("unknown workflow status %d", ordinal)
	}
	*s = AssetWorkflowStatus(ordinal)
	return nil
}

// UpdateReferenceMessage travels on the update-cms queue.
type UpdateReferenceMessage struct {
	AssetID      string              `json:"AssetId"`
	Status       AssetWorkflowStatus `json:"Status"`
	ErrorMessage string              `json:"ErrorMessage,omitempty"`
}

func (m UpdateReferenceMessage) Validate() error {
	if strings.TrimSpace(m.AssetID) == "" {
		return fmt.Errorf("update reference: AssetId is required")
	}
	return nil
}

// CMSReference is the aggregated record posted to the CMS callback.
type CMSReference struct {
	AssetID            string `json:"assetId"`
	AssetAlternateID   string `json:"assetAlternateId"`
	BaseStreamingURI   string `json:"baseStreamingUri"`
	Duration           string `json:"duration"`
	AudioTracksCount   int    `json:"audioTracksCount"`
	VideoBitratesCount int    `json:"videoBitratesCount"`
	Bitrate            int    `json:"bitrate"`
	Height             int    `json:"height"`
	Width              int    `json:"width"`
	AspectRatio        string `json:"aspectRatio"`
}
