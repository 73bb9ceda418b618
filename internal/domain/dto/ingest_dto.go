package dto

type ImportExternalRequest struct {
	Source string `json:"source"`
	ID     string `json:"id,omitempty"`
}

type IngestResponse struct {
	Name string `json:"name"`
}

// UploadRequest describes a direct multipart upload.
type UploadRequest struct {
	ID          string
	Filename    string
	Size        int64
	ContentType string
	SHA256      string
}
