package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveFit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveFit("Ridge", "real", time.Millisecond, nil)
	m.ObserveFit("Ridge", "real", time.Millisecond, nil)
	m.ObserveFit("Ridge", "fake", time.Millisecond, errors.New("singular"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EstimatorFits.WithLabelValues("Ridge", "real", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EstimatorFits.WithLabelValues("Ridge", "fake", OutcomeError)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.EstimatorFits))
}

func TestMetrics_Stage(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	m.Time("align")()
	m.ObserveStage("align", 2*time.Second)
	m.ObserveStage("row_distance", time.Second)
	assert.Equal(t, 2, testutil.CollectAndCount(m.StageDuration))
}

func TestMetrics_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFit("x", "real", 0, nil)
		m.Time("stage")()
	})
}
