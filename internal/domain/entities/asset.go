package entities

import "time"

// Asset is a handle to a set of media files owned by the media service.
type Asset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AlternateID string    `json:"alternateId,omitempty"`
	State       string    `json:"state,omitempty"`
	Created     time.Time `json:"created,omitempty"`
}

// StagedBlob is an object in the staging container waiting to be encoded.
type StagedBlob struct {
	Name        string     `json:"name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"contentType,omitempty"`
	CopyStatus  CopyStatus `json:"copyStatus,omitempty"`
}

type CopyStatus string

const (
	CopyStatusPending CopyStatus = "pending"
	CopyStatusSuccess CopyStatus = "success"
	CopyStatusFailed  CopyStatus = "failed"
)

// IsComplete reports whether the blob is fully present. Blobs written without
// a copy marker (direct uploads by other tools) count as complete.
func (b StagedBlob) IsComplete() bool {
	return b.CopyStatus == "" || b.CopyStatus == CopyStatusSuccess
}

// AssetFileMetadata describes one bitrate variant of an encoded asset.
type AssetFileMetadata struct {
	Name        string        `json:"name"`
	Duration    time.Duration `json:"duration"`
	AudioTracks []AudioTrack  `json:"audioTracks"`
	VideoTracks []VideoTrack  `json:"videoTracks"`
}

type AudioTrack struct {
	ID           int    `json:"id"`
	Codec        string `json:"codec,omitempty"`
	Language     string `json:"language,omitempty"`
	Channels     int    `json:"channels,omitempty"`
	Bitrate      int    `json:"bitrate,omitempty"`
	SamplingRate int    `json:"samplingRate,omitempty"`
}

type VideoTrack struct {
	ID                            int    `json:"id"`
	Bitrate                       int    `json:"bitrate"`
	Width                         int    `json:"width"`
	Height                        int    `json:"height"`
	DisplayAspectRatioNumerator   int    `json:"displayAspectRatioNumerator"`
	DisplayAspectRatioDenominator int    `json:"displayAspectRatioDenominator"`
	Codec                         string `json:"codec,omitempty"`
}
