package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	TrainingRuns.Inc()
	TrainingErrors.Inc()
	RowsLoaded.Set(1200)
	IncCommandRun("train")
	IncCommandError("train")
	ObserveStage("load", time.Now().Add(-250*time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"delaytrain_training_runs_total",
		"delaytrain_training_errors_total",
		"delaytrain_stage_duration_seconds",
		"delaytrain_rows_loaded",
		"delaytrain_command_runs_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
