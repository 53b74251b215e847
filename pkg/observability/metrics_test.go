package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a manual-reader meter provider and returns a cleanup.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// TestNewMetricsRecorder tests a real recorder comes back when a provider is set.
func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	recorder.RecordTurn(context.Background(), false, time.Second, 1)
}

// TestRecordHandlerExecution tests dispatch counts, latency, and error counts.
func TestRecordHandlerExecution(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records execution count", func(t *testing.T) {
		m.RecordHandlerExecution(ctx, "profile", 50*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		mtr := findMetric(rm, "workflow.handler.executions")
		require.NotNil(t, mtr)

		sum, ok := mtr.Data.(metricdata.Sum[int64])
		require.True(t, ok, "expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "handler" && attr.Value.AsString() == "profile" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "expected datapoint for handler=profile")
	})

	t.Run("records latency", func(t *testing.T) {
		m.RecordHandlerExecution(ctx, "job-search", 100*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		mtr := findMetric(rm, "workflow.handler.latency_ms")
		require.NotNil(t, mtr)

		hist, ok := mtr.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records errors when present", func(t *testing.T) {
		m.RecordHandlerExecution(ctx, "learning", 10*time.Millisecond, errors.New("provider unavailable"))

		rm := collectMetrics(t, reader)
		mtr := findMetric(rm, "workflow.handler.errors")
		require.NotNil(t, mtr)

		sum, ok := mtr.Data.(metricdata.Sum[int64])
		require.True(t, ok, "expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "handler" && attr.Value.AsString() == "learning" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "expected error datapoint for handler=learning")
	})

	t.Run("does not record error when nil", func(t *testing.T) {
		m.RecordHandlerExecution(ctx, "resume-builder", 10*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		mtr := findMetric(rm, "workflow.handler.errors")
		if mtr == nil {
			return
		}
		sum, ok := mtr.Data.(metricdata.Sum[int64])
		if !ok {
			return
		}
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "handler" && attr.Value.AsString() == "resume-builder" {
					assert.Equal(t, int64(0), dp.Value)
				}
			}
		}
	})
}

// TestRecordTurn tests turn counts, latency, and cycle histograms.
func TestRecordTurn(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records clean turns", func(t *testing.T) {
		m.RecordTurn(ctx, false, 500*time.Millisecond, 2)

		rm := collectMetrics(t, reader)
		mtr := findMetric(rm, "workflow.turns")
		require.NotNil(t, mtr)

		sum, ok := mtr.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.NotEmpty(t, sum.DataPoints)
	})

	t.Run("records degraded turns", func(t *testing.T) {
		m.RecordTurn(ctx, true, 100*time.Millisecond, 6)

		rm := collectMetrics(t, reader)
		require.NotNil(t, findMetric(rm, "workflow.turns"))
	})

	t.Run("records turn latency and cycles", func(t *testing.T) {
		m.RecordTurn(ctx, false, 200*time.Millisecond, 3)

		rm := collectMetrics(t, reader)

		latency := findMetric(rm, "workflow.turn.latency_ms")
		require.NotNil(t, latency)
		hist, ok := latency.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)

		cycles := findMetric(rm, "workflow.turn.cycles")
		require.NotNil(t, cycles)
		cyclesHist, ok := cycles.Data.(metricdata.Histogram[int64])
		require.True(t, ok, "expected Histogram[int64] type")
		require.NotEmpty(t, cyclesHist.DataPoints)
	})
}

// TestRecordRouteFallback tests fallback decisions carry their reason.
func TestRecordRouteFallback(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordRouteFallback(context.Background(), "classifier")

	rm := collectMetrics(t, reader)
	mtr := findMetric(rm, "workflow.route.fallbacks")
	require.NotNil(t, mtr)

	sum, ok := mtr.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)

	found := false
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "reason" && attr.Value.AsString() == "classifier" {
				found = true
			}
		}
	}
	assert.True(t, found, "expected datapoint for reason=classifier")
}

// TestOtelMetrics_AllMethods tests every instrument records without error.
func TestOtelMetrics_AllMethods(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()

	m.RecordHandlerExecution(ctx, "profile", 25*time.Millisecond, nil)
	m.RecordHandlerExecution(ctx, "skills-gap", 10*time.Millisecond, errors.New("boom"))
	m.RecordTurn(ctx, true, 100*time.Millisecond, 6)
	m.RecordTurn(ctx, false, 50*time.Millisecond, 1)
	m.RecordRouteFallback(ctx, "keyword")
	m.RecordCompletion(ctx, "reasoning", 30*time.Millisecond, nil)
	m.RecordCompletion(ctx, "coding", 30*time.Millisecond, errors.New("timeout"))

	rm := collectMetrics(t, reader)

	assert.NotNil(t, findMetric(rm, "workflow.handler.executions"))
	assert.NotNil(t, findMetric(rm, "workflow.handler.latency_ms"))
	assert.NotNil(t, findMetric(rm, "workflow.handler.errors"))
	assert.NotNil(t, findMetric(rm, "workflow.turns"))
	assert.NotNil(t, findMetric(rm, "workflow.turn.latency_ms"))
	assert.NotNil(t, findMetric(rm, "workflow.turn.cycles"))
	assert.NotNil(t, findMetric(rm, "workflow.route.fallbacks"))
	assert.NotNil(t, findMetric(rm, "workflow.completion.calls"))
	assert.NotNil(t, findMetric(rm, "workflow.completion.latency_ms"))
}

// TestNewOtelMetrics_Creation tests every instrument is constructed.
func TestNewOtelMetrics_Creation(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotNil(t, m.handlerExecutions)
	assert.NotNil(t, m.handlerLatency)
	assert.NotNil(t, m.handlerErrors)
	assert.NotNil(t, m.turns)
	assert.NotNil(t, m.turnLatency)
	assert.NotNil(t, m.turnCycles)
	assert.NotNil(t, m.routeFallbacks)
	assert.NotNil(t, m.completions)
	assert.NotNil(t, m.completionLatency)
}
