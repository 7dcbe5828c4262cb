// Package metrics exposes Prometheus collectors for the pipeline.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seopipe_stage_duration_seconds",
			Help:    "Duration of pipeline stage executions in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	StagesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seopipe_stages_completed_total",
			Help: "Total number of stage executions that succeeded.",
		},
		[]string{"stage"},
	)
	StagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seopipe_stages_failed_total",
			Help: "Total number of stage executions that exhausted their retry budget or hit a permanent failure.",
		},
		[]string{"stage"},
	)
	StageRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seopipe_stage_retries_total",
			Help: "Total number of stage retry attempts.",
		},
		[]string{"stage"},
	)
	RecordsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seopipe_records_created_total",
			Help: "Total number of records created, labeled by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(StagesCompleted)
	prometheus.MustRegister(StagesFailed)
	prometheus.MustRegister(StageRetries)
	prometheus.MustRegister(RecordsCreated)
}

// Expose serves the /metrics endpoint on its own listener.
func Expose(addr string) {
	slog.Info("exposing Prometheus metrics", "address", addr)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server failed", "error", err)
	}
}
