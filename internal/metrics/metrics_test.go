package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmhh/treesync/internal/metrics"
	"github.com/osmhh/treesync/pkg/reconciler"
	"github.com/osmhh/treesync/pkg/records"
)

func testResult() *reconciler.Result {
	r := reconciler.NewResult()
	r.AddCreate(&records.Authoritative{})
	r.AddCreate(&records.Authoritative{})
	r.AddUpdate(&records.Target{ID: 1})
	r.AddReview(reconciler.Review{Record: &records.Authoritative{}, Reason: reconciler.ReasonConflict})
	r.AddReview(reconciler.Review{Record: &records.Authoritative{}, Reason: reconciler.ReasonAmbiguous})
	r.AddReview(reconciler.Review{Record: &records.Authoritative{}, Reason: reconciler.ReasonAmbiguous})
	r.AddDelete(&records.Target{ID: 2})
	r.Unchanged = 5
	r.Warn("target %d links to %s", 3, "ref:bukea=1")
	r.Metadata.Stats = reconciler.ResultStatistics{Authoritative: 10, Targets: 7}
	r.Metadata.StartTime = utc.FromUnix(1700000000)
	r.Finalize()
	r.Metadata.Duration = 1500 * time.Millisecond
	return r
}

func TestObserve(t *testing.T) {
	m := metrics.New()
	m.Observe(testResult())

	tests := []struct {
		label string
		want  float64
	}{
		{"create", 2},
		{"update", 1},
		{"review", 3},
		{"delete", 1},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, testutil.ToFloat64(m.Decisions.WithLabelValues(tt.label)))
		})
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reviews.WithLabelValues("ambiguous")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reviews.WithLabelValues("conflict")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Reviews.WithLabelValues("too-far")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.Records.WithLabelValues("authoritative")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Records.WithLabelValues("target")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Unchanged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Warnings))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.Duration))
	assert.Equal(t, len(reconciler.Reasons), testutil.CollectAndCount(m.Reviews))
}

func TestObserveNil(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() { m.Observe(testResult()) })
	assert.NotPanics(t, func() { metrics.New().Observe(nil) })
}

func TestWriteFile(t *testing.T) {
	m := metrics.New()
	m.Observe(testResult())

	path := filepath.Join(t.TempDir(), "treesync.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `treesync_decisions_total{decision="create"} 2`)
	assert.Contains(t, string(data), `treesync_reviews_total{reason="ambiguous"} 2`)
	assert.Contains(t, string(data), "treesync_run_duration_seconds 1.5")
}

func TestWriteFileMissingDir(t *testing.T) {
	m := metrics.New()
	err := m.WriteFile(filepath.Join(t.TempDir(), "missing", "treesync.prom"))
	assert.Error(t, err)
}
