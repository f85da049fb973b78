// orchestrator-service/internal/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orchestrator_tick_duration_seconds",
		Help:    "Duration of a full orchestrator tick.",
		Buckets: prometheus.DefBuckets,
	})
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_ticks_total",
		Help: "Ticks executed, partitioned by outcome.",
	}, []string{"outcome"})
	stageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_stage_errors_total",
		Help: "Stage failures, partitioned by stage name.",
	}, []string{"stage"})
	jobsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orchestrator_jobs_published_total",
		Help: "Posting jobs successfully published.",
	})
	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orchestrator_jobs_failed_total",
		Help: "Posting jobs that exhausted their retry budget.",
	})
	jobsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orchestrator_jobs_cancelled_total",
		Help: "Posting jobs cancelled by promotion expiry or deletion.",
	})
	lowStockCriticalGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orchestrator_low_stock_critical_items",
		Help: "Critical low stock items observed in the latest tick.",
	})
)
