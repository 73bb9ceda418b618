package errors

import (
	stderrors "errors"
	"fmt"
)

type PipelineError struct {
	Code    string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

const (
	CodeValidation    = "validation"
	CodeAssetNotFound = "asset_not_found"
	CodeJobNotFound   = "job_not_found"
	CodeInternal      = "internal_error"
)

var (
	ErrValidation = func(message string) *PipelineError {
		return &PipelineError{Code: CodeValidation, Message: message}
	}
	ErrAssetNotFound = func(err error) *PipelineError {
		return &PipelineError{Code: CodeAssetNotFound, Message: "Asset not found", Err: err}
	}
	ErrJobNotFound = func(err error) *PipelineError {
		return &PipelineError{Code: CodeJobNotFound, Message: "Job not found", Err: err}
	}
	ErrInternal = func(err error) *PipelineError {
		return &PipelineError{Code: CodeInternal, Message: "internal error", Err: err}
	}
)

// ErrMetadataNotReady means the encoded asset has no technical metadata yet;
// the message is redelivered later.
var ErrMetadataNotReady = stderrors.New("metadata not ready")
