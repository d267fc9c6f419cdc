package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRuntimeCollector(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	c, err := NewRuntimeCollector(provider.Meter("test"), time.Hour)
	require.NoError(t, err)

	stats := c.Sample(context.Background())
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.HeapInUse)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["census_runtime_goroutines"])
	assert.True(t, names["census_runtime_uptime_seconds"])
}

func TestRuntimeCollector_RunStopsWithContext(t *testing.T) {
	provider := sdkmetric.NewMeterProvider()
	c, err := NewRuntimeCollector(provider.Meter("test"), time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestNewRuntimeCollector_RejectsZeroInterval(t *testing.T) {
	_, err := NewRuntimeCollector(sdkmetric.NewMeterProvider().Meter("test"), 0)
	assert.Error(t, err)
}
