package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TrainingRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delaytrain_training_runs_total",
		Help: "Total training pipeline runs",
	})
	TrainingErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delaytrain_training_errors_total",
		Help: "Total training pipeline failures",
	})
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delaytrain_stage_duration_seconds",
		Help:    "Pipeline stage duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	RowsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "delaytrain_rows_loaded",
		Help: "Departure rows loaded in the last run",
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delaytrain_command_runs_total",
		Help: "Total CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delaytrain_command_errors_total",
		Help: "Total CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(TrainingRuns, TrainingErrors, StageDuration, RowsLoaded, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveStage records the elapsed time of one pipeline stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// IncCommandRun increments the run counter for a CLI command.
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

// IncCommandError increments the error counter for a CLI command.
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
