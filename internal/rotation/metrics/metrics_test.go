package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/keyrotate/internal/rotation"
)

func finishedRun(status rotation.Status, d time.Duration) *rotation.Result {
	start := time.Date(2026, 8, 25, 4, 0, 0, 0, time.UTC)
	return &rotation.Result{
		Status:     status,
		StartedAt:  start,
		FinishedAt: start.Add(d),
	}
}

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.RecordStarted()
	r.RecordResult(finishedRun(rotation.StatusSucceeded, 12*time.Second))
	r.RecordStarted()
	r.RecordResult(finishedRun(rotation.StatusRolledBack, time.Minute))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.startedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.completedTotal.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.completedTotal.WithLabelValues("rolled_back")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rollbackTotal))
}

func TestRecorderNoRollbackOnSuccess(t *testing.T) {
	r := NewRecorder()
	r.RecordResult(finishedRun(rotation.StatusSucceeded, time.Second))

	assert.Equal(t, 0.0, testutil.ToFloat64(r.rollbackTotal))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.RecordStarted()
	r.RecordResult(finishedRun(rotation.StatusSucceeded, 5*time.Second))

	path := filepath.Join(t.TempDir(), "keyrotate.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "keyrotate_rotation_started_total 1")
	assert.Contains(t, string(data), `keyrotate_rotation_completed_total{status="succeeded"} 1`)
	assert.Contains(t, string(data), "keyrotate_rotation_duration_seconds_count 1")
}
