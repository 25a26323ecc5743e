// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_classifications_total",
			Help: "Classified utterances by intent and gate decision",
		},
		[]string{"intent", "decision"},
	)

	// RuleDepth observes how far down the rule table a match was found.
	RuleDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classifier_rule_depth",
			Help:    "Number of rules evaluated before a match",
			Buckets: prometheus.LinearBuckets(5, 5, 14),
		},
	)

	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refresh_total",
			Help: "Catalog snapshot refresh attempts by status",
		},
		[]string{"status"},
	)

	CatalogSnapshotEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_snapshot_entries",
			Help: "Entries in the active catalog snapshot by kind",
		},
		[]string{"kind"},
	)

	CatalogSnapshotLoadedAt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_snapshot_loaded_timestamp_seconds",
			Help: "Unix time the active catalog snapshot was built",
		},
	)

	FallbackRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_requests_total",
			Help: "Fallback interpreter calls by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	ReviewPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_published_total",
			Help: "Escalated utterances published for review by status",
		},
		[]string{"status"},
	)
)
