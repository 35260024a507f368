package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("datapeek.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var heapGauge, _ = meter.Int64Gauge("heap_alloc_mb")
var liveObjectsGauge, _ = meter.Int64Gauge("live_objects")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// InstrumentPerfStats samples runtime and cpu stats every 30 seconds
// until ctx is cancelled.
func InstrumentPerfStats(ctx context.Context) {
	// prime the cpu counters so the first sample has a baseline
	cpu.Percent(0, false)

	go func() {
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				samplePerfStats(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func samplePerfStats(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// interval 0 measures since the previous call instead of blocking
	cpuUsage, err := cpu.Percent(0, false)
	if err == nil {
		cpuGauge.Record(ctx, cpuUsage[0])
	} else {
		slog.Warn("failed to read cpu usage", "err", err)
	}

	heapGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
	liveObjectsGauge.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
	goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
}
