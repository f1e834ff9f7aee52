package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel/metric"
)

// Gauge names exported on the service meter.
const (
	MetricCPUPercent = "o11ybox.process.cpu.percent"
	MetricMemoryRSS  = "o11ybox.process.memory.rss"
	MetricGoroutines = "o11ybox.runtime.goroutines"
)

// Snapshot is one resource reading.
type Snapshot struct {
	CPUPercent  float64
	Utilization float64
	Cores       int
	RSS         uint64
	Goroutines  int
	HeapAlloc   uint64
	HeapSys     uint64
	StackInuse  uint64
	NumGC       uint32
	GCCPU       float64
	Saturation  string
}

// Monitor tracks process resource usage and saturation indicators. Every
// reading is logged and kept for the observable gauges.
type Monitor struct {
	interval time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
	proc     *process.Process

	mu   sync.Mutex
	last Snapshot

	registration metric.Registration
}

// New creates a monitor with the given collection interval and registers its
// gauges on meter.
func New(interval time.Duration, logger *slog.Logger, meter metric.Meter) (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process handle: %w", err)
	}

	m := &Monitor{
		interval: interval,
		logger:   logger,
		proc:     proc,
	}

	if err := m.registerGauges(meter); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Monitor) registerGauges(meter metric.Meter) error {
	cpu, err := meter.Float64ObservableGauge(
		MetricCPUPercent,
		metric.WithDescription("Process CPU usage in percent of one core"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gauge %q: %w", MetricCPUPercent, err)
	}

	rss, err := meter.Int64ObservableGauge(
		MetricMemoryRSS,
		metric.WithDescription("Process resident set size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gauge %q: %w", MetricMemoryRSS, err)
	}

	gor, err := meter.Int64ObservableGauge(
		MetricGoroutines,
		metric.WithDescription("Number of live goroutines"),
		metric.WithUnit("{goroutine}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gauge %q: %w", MetricGoroutines, err)
	}

	m.registration, err = meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			s := m.Last()
			o.ObserveFloat64(cpu, s.CPUPercent)
			o.ObserveInt64(rss, int64(s.RSS))
			o.ObserveInt64(gor, int64(s.Goroutines))
			return nil
		},
		cpu, rss, gor,
	)
	if err != nil {
		return fmt.Errorf("failed to register callback: %w", err)
	}

	return nil
}

// Run starts the monitoring loop in a background goroutine.
// The loop ends when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		// Immediate first collection
		m.collect(ctx)

		for {
			select {
			case <-ctx.Done():
				if err := m.registration.Unregister(); err != nil {
					m.logger.Warn("failed to unregister monitor gauges", "error", err)
				}
				m.logger.Info("monitor shutdown complete")
				return
			case <-ticker.C:
				m.collect(ctx)
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// Last returns the most recent reading.
func (m *Monitor) Last() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// read takes a fresh reading.
func (m *Monitor) read(ctx context.Context) Snapshot {
	// ---- CPU ----
	processCPU, err := m.proc.CPUPercentWithContext(ctx)
	if err != nil {
		m.logger.Warn("failed to get CPU percent", "error", err)
		processCPU = 0
	}

	cores := runtime.GOMAXPROCS(-1)
	maxCPU := float64(cores * 100)

	utilization := 0.0
	if maxCPU > 0 {
		utilization = processCPU / maxCPU
	}

	var rss uint64
	if mi, err := m.proc.MemoryInfoWithContext(ctx); err != nil {
		m.logger.Warn("failed to get memory info", "error", err)
	} else {
		rss = mi.RSS
	}

	// ---- Runtime / Memory ----
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	// ---- Saturation ----
	saturation := "normal"
	if utilization > 0.95 {
		saturation = "saturated"
	} else if utilization > 0.80 {
		saturation = "high"
	}

	return Snapshot{
		CPUPercent:  processCPU,
		Utilization: utilization,
		Cores:       cores,
		RSS:         rss,
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   ms.HeapAlloc,
		HeapSys:     ms.HeapSys,
		StackInuse:  ms.StackInuse,
		NumGC:       ms.NumGC,
		GCCPU:       ms.GCCPUFraction,
		Saturation:  saturation,
	}
}

// collect reads current metrics, stores them and logs resource usage.
func (m *Monitor) collect(ctx context.Context) {
	s := m.read(ctx)

	m.mu.Lock()
	m.last = s
	m.mu.Unlock()

	mb := func(b uint64) float64 {
		return float64(b) / (1024 * 1024)
	}
	kb := func(b uint64) float64 {
		return float64(b) / 1024
	}

	m.logger.LogAttrs(
		ctx,
		slog.LevelInfo,
		"resource",
		slog.String("cpu", fmt.Sprintf("%.4f%%", s.CPUPercent)),
		slog.String("util", fmt.Sprintf("%.4f%%", s.Utilization*100)),
		slog.Int("cores", s.Cores),
		slog.Int("gor", s.Goroutines),
		slog.String(
			"mem",
			fmt.Sprintf(
				"rss:%.2fMB alloc:%.2fMB sys:%.2fMB stack:%.0fKB",
				mb(s.RSS),
				mb(s.HeapAlloc),
				mb(s.HeapSys),
				kb(s.StackInuse),
			),
		),
		slog.Uint64("gc", uint64(s.NumGC)),
		slog.String("gc_cpu", fmt.Sprintf("%.3f", s.GCCPU)),
		slog.String("sat", s.Saturation),
	)

	if s.Saturation == "saturated" {
		m.logger.WarnContext(ctx,
			"cpu saturation detected",
			"cpu", s.CPUPercent,
			"util_pct", s.Utilization*100,
			"action", "reduce load or increase GOMAXPROCS",
		)
	}
}
