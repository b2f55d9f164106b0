package telemetry

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// ProcessStats reports the resource usage of this process as observable
// gauges, sampled whenever the meter provider collects.
type ProcessStats struct {
	proc         *process.Process
	registration metric.Registration
}

func InstrumentProcess(ctx context.Context) (*ProcessStats, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil, err
	}

	meter := otel.Meter("hrtools.lib.telemetry.process")
	cpuGauge, err := meter.Float64ObservableGauge(
		"process.cpu.percent",
		metric.WithDescription("cpu used by this process since the last collection"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return nil, err
	}
	rssGauge, err := meter.Int64ObservableGauge(
		"process.memory.rss",
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}
	goroutineGauge, err := meter.Int64ObservableGauge("process.goroutines")
	if err != nil {
		return nil, err
	}

	stats := &ProcessStats{proc: proc}
	stats.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		// an interval of 0 compares against the previous call
		cpu, err := proc.PercentWithContext(ctx, 0)
		if err == nil {
			o.ObserveFloat64(cpuGauge, cpu)
		}
		mem, err := proc.MemoryInfoWithContext(ctx)
		if err == nil {
			o.ObserveInt64(rssGauge, int64(mem.RSS))
		}
		o.ObserveInt64(goroutineGauge, int64(runtime.NumGoroutine()))
		return nil
	}, cpuGauge, rssGauge, goroutineGauge)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Sample reads the current rss and cpu percentage directly.
func (s *ProcessStats) Sample(ctx context.Context) (rss uint64, cpu float64, err error) {
	mem, err := s.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	cpu, err = s.proc.PercentWithContext(ctx, 0)
	if err != nil {
		return 0, 0, err
	}
	return mem.RSS, cpu, nil
}

func (s *ProcessStats) Stop() error {
	return s.registration.Unregister()
}
