package constants

import "time"

const (
	StatusOK = "ok"
)

const (
	// Staging object metadata key holding the copy status.
	CopyStatusMetadataKey = "copy-status"
	// Staging object tag counting failed encode submissions.
	EncodeAttemptsTagKey = "encode-attempts"
	// Blobs that keep failing are moved under this prefix and no longer scanned.
	StagingPoisonPrefix = "poison/"

	SourcePresignTTL  = 30 * time.Minute
	StagingPresignTTL = 4 * time.Hour
)

const (
	JobStatusPollAttempts = 3
	JobStatusPollDelay    = 5 * time.Second
)

const (
	CommonEncryptionKeyName     = "CommonEncryptionContentKey"
	CommonEncryptionCbcsKeyName = "CommonEncryptionCbcsContentKey"
	ContentKeySize              = 16

	LocatorLifetime = 10 * 365 * 24 * time.Hour
)

const (
	TokenNotBeforeSkew = time.Minute
	TokenLifetime      = 10 * time.Minute
)

const (
	SubmitJobName     = "Pipeline Job"
	SubmitJobPriority = 10
	EncodeTaskName    = "MES encoding task"
)
