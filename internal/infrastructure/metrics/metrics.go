package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRetry    = "retry"
	OutcomePoison   = "poison"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
	OutcomeReleased = "released"
)

var (
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_queue_messages_total",
		Help: "Queue messages handled, by queue and outcome.",
	}, []string{"queue", "outcome"})

	HandlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_queue_handler_duration_seconds",
		Help:    "Time spent in a queue handler.",
		Buckets: prometheus.DefBuckets,
	}, []string{"queue"})

	StagingBlobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_staging_blobs_total",
		Help: "Staging blobs seen by the scanner, by outcome.",
	}, []string{"outcome"})

	IngestRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_ingest_requests_total",
		Help: "Ingest requests accepted, by kind.",
	}, []string{"kind"})

	CMSNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_cms_notifications_total",
		Help: "CMS callback posts, by HTTP status class.",
	}, []string{"status"})
)
