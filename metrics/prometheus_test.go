package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncPageResult(ResultSuccess)
	pr.IncPageResult(ResultSuccess)
	pr.IncPageResult(ResultFailed)
	pr.IncBuildOutcome(ResultFailed)
	pr.SetPagesRendered(2)
	pr.ObservePageDuration(10 * time.Millisecond)
	pr.ObserveBuildDuration(time.Second)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.pageResults.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.pageResults.WithLabelValues("failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("failed")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.pagesRendered), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(pr.pageDuration))
}

func TestPrometheusRecorderHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome(ResultSuccess)

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mdsite_build_outcomes_total{result="success"} 1`)
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncBuildOutcome(ResultCanceled)
	r.ObservePageDuration(time.Millisecond)
}
