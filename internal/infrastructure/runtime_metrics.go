package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics reports process health for long-running serve mode
type RuntimeMetrics struct {
	goroutines metric.Int64Gauge
	heapInUse  metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	gcCount    metric.Int64Gauge
	uptime     metric.Float64Gauge
}

// RuntimeStats is one sample of the Go runtime
type RuntimeStats struct {
	Goroutines int
	HeapInUse  uint64
	HeapAlloc  uint64
	GCCount    uint32
	Uptime     time.Duration
}

// CreateRuntimeMetrics registers the runtime gauges on meter
func CreateRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	var (
		m   RuntimeMetrics
		err error
	)
	if m.goroutines, err = meter.Int64Gauge("census_runtime_goroutines",
		metric.WithDescription("Number of live goroutines")); err != nil {
		return nil, err
	}
	if m.heapInUse, err = meter.Int64Gauge("census_runtime_heap_inuse_bytes",
		metric.WithDescription("Heap bytes in use"), metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.heapAlloc, err = meter.Int64Gauge("census_runtime_heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated and not yet freed"), metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.gcCount, err = meter.Int64Gauge("census_runtime_gc_cycles",
		metric.WithDescription("Completed GC cycles")); err != nil {
		return nil, err
	}
	if m.uptime, err = meter.Float64Gauge("census_runtime_uptime_seconds",
		metric.WithDescription("Seconds since the collector started"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return &m, nil
}

// Collect samples the runtime and records it
func (m *RuntimeMetrics) Collect(ctx context.Context, start time.Time) RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := RuntimeStats{
		Goroutines: runtime.NumGoroutine(),
		HeapInUse:  ms.HeapInuse,
		HeapAlloc:  ms.HeapAlloc,
		GCCount:    ms.NumGC,
		Uptime:     time.Since(start),
	}

	m.goroutines.Record(ctx, int64(stats.Goroutines))
	m.heapInUse.Record(ctx, int64(stats.HeapInUse))
	m.heapAlloc.Record(ctx, int64(stats.HeapAlloc))
	m.gcCount.Record(ctx, int64(stats.GCCount))
	m.uptime.Record(ctx, stats.Uptime.Seconds())
	return stats
}

// RuntimeCollector samples RuntimeMetrics on a fixed interval
type RuntimeCollector struct {
	metrics  *RuntimeMetrics
	start    time.Time
	interval time.Duration
}

// NewRuntimeCollector creates a collector. interval must be positive.
func NewRuntimeCollector(meter metric.Meter, interval time.Duration) (*RuntimeCollector, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("runtime collector interval must be positive, got %s", interval)
	}
	metrics, err := CreateRuntimeMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}
	return &RuntimeCollector{metrics: metrics, start: time.Now(), interval: interval}, nil
}

// Run collects once immediately and then on every tick until ctx is done
func (c *RuntimeCollector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.metrics.Collect(ctx, c.start)
	for {
		select {
		case <-ticker.C:
			c.metrics.Collect(ctx, c.start)
		case <-ctx.Done():
			return
		}
	}
}

// Sample collects immediately and returns the stats
func (c *RuntimeCollector) Sample(ctx context.Context) RuntimeStats {
	return c.metrics.Collect(ctx, c.start)
}
