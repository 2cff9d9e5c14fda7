package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchrunner/internal/model"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()
	r.VariantFinished(model.StatusCompleted)
	r.VariantFinished(model.StatusCompleted)
	r.VariantFinished(model.StatusErrored)
	r.IterationFinished(20 * time.Millisecond)
	r.IterationFinished(30 * time.Millisecond)
	r.Retried()
	r.RunFinished(2 * time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.variants.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.variants.WithLabelValues("errored")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.variants.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.iterations))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.retries))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.runSeconds))
	assert.Equal(t, 1, testutil.CollectAndCount(r.iterationSeconds))
}

func TestRecorder_RegistriesAreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.Retried()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.retries))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.VariantFinished(model.StatusFailed)
	r.IterationFinished(time.Millisecond)

	path := filepath.Join(t.TempDir(), "benchrunner.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `benchrunner_variants_total{status="failed"} 1`)
	assert.Contains(t, out, "benchrunner_iterations_total 1")
	assert.Contains(t, out, "benchrunner_iteration_duration_seconds_count 1")

	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
