package provisioning

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveStage(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.ObserveStage("deploy-rg", stageOK, 12*time.Minute)
	m.ObserveStage("deploy-sub", stageWarning, 30*time.Second)
	m.ObserveStage("deploy-sub", stageWarning, 40*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageTotal.WithLabelValues("deploy-rg", stageOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stageTotal.WithLabelValues("deploy-sub", stageWarning)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.stageDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()
	var m *Metrics

	m.ObserveStage("deploy-rg", stageOK, time.Second)
	m.Finish(time.Now())
	assert.NoError(t, m.WriteToTextfile(filepath.Join(t.TempDir(), "akslab.prom")))
}

func TestMetrics_WriteToTextfile(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.ObserveStage("configure", stageOK, 90*time.Second)
	m.Finish(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "akslab.prom")
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `akslab_pipeline_stage_total{outcome="ok",stage="configure"} 1`)
	assert.Contains(t, out, "akslab_pipeline_stage_duration_seconds_bucket")
	assert.Contains(t, out, "akslab_pipeline_last_run_timestamp_seconds 1.7e+09")
}

func TestMetrics_WriteToTextfileWithoutPath(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewMetrics().WriteToTextfile(""))
}
