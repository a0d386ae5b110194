package profiler

import (
	"log/slog"
	"math"
	"runtime"
	"time"
)

// Stats is one sampling window of frame and memory statistics.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Logs stats through slog at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithLogger sets the logger stats are written to.
func WithLogger(logger *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithInterval sets how often stats are sampled and logged.
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and the logger to slog.Default().
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
	}

	// TotalAlloc only grows, the delta is the churn since the last window.
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	s.GCCount = p.memStats.NumGC
	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	p.logger.Info("profiler",
		slog.Float64("fps", round2(s.FPS)),
		slog.Float64("heap_mb", round2(s.HeapMB)),
		slog.Float64("alloc_rate_mb", round2(s.AllocRateMB)),
		slog.Uint64("gc", uint64(s.GCCount)),
		slog.Uint64("gc_last_us", s.LastPauseUs),
		slog.Uint64("gc_max_us", s.MaxPauseUs),
		slog.Float64("sys_mb", round2(s.SysMB)),
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = s
	return true
}

// Last returns the stats of the most recent logged window.
func (p *Profiler) Last() Stats {
	return p.last
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
