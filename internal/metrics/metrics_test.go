package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersExposed(t *testing.T) {
	LintRuns.WithLabelValues("brackets").Inc()
	Since("lint", time.Now().Add(-time.Millisecond))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `netlogo_intel_lint_runs_total{linter="brackets"}`, "lint runs missing")
	assert.Contains(t, body, `netlogo_intel_analysis_duration_seconds_count{stage="lint"}`, "duration missing")
}
