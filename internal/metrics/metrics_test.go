package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCounters(t *testing.T) {
	m := New()

	m.RunStarted("lexical")(nil)
	m.RunStarted("lexical")(errors.New("boom"))
	done := m.RunStarted("embedding")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRuns))
	done(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("lexical", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("lexical", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("embedding", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeRuns))
}

func TestCandidateCounters(t *testing.T) {
	m := New()

	m.CandidateScored("good", 80)
	m.CandidateScored("good", 77)
	m.CandidateSkipped("corrupt_document")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.candidates.WithLabelValues("good")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues("corrupt_document")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.finalScore))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.CandidateScored("poor", 10)

	path := filepath.Join(t.TempDir(), "cv_screener.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cv_screener_candidates_scored_total{verdict="poor"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	m.RunStarted("lexical")(nil)
	m.CandidateScored("good", 80)
	m.CandidateSkipped("corrupt_document")
	assert.Nil(t, m.Registry())
	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}
