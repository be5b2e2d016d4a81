package profiler

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// Stats is one reporting window of frame and simulation throughput.
type Stats struct {
	FPS          float64
	StepsPerSec  float64
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
	WindowLength time.Duration
}

// Profiler tracks frame rate, simulation step rate and memory statistics.
// Outputs stats to a slog.Logger at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	frameCount     int
	stepCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler reporting through logger.
// A nil logger discards the reports; interval values of zero or less default to 1 second.
//
// Parameters:
//   - logger: destination of the periodic Info line
//   - interval: the reporting window
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *slog.Logger, interval time.Duration) *Profiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		logger:         logger,
		updateInterval: interval,
	}
}

// Tick should be called once per frame with the current time and whether a simulation step
// ran this frame. When the reporting window has elapsed the window's stats are logged and returned.
//
// Parameters:
//   - now: the frame's timestamp
//   - stepped: true if the frame executed a simulation step
//
// Returns:
//   - Stats: the window's statistics, valid only when the bool is true
//   - bool: true if stats were reported this tick, false otherwise
func (p *Profiler) Tick(now time.Time, stepped bool) (Stats, bool) {
	if p.lastTime.IsZero() {
		p.lastTime = now
	}
	p.frameCount++
	if stepped {
		p.stepCount++
	}

	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	s := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		StepsPerSec:  float64(p.stepCount) / elapsed.Seconds(),
		WindowLength: elapsed,
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap, TotalAlloc is cumulative churn, Sys is the process footprint.
	s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	s.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	s.GCCount = p.memStats.NumGC
	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
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

	p.logger.LogAttrs(context.Background(), slog.LevelInfo, "profiler",
		slog.Float64("fps", round2(s.FPS)),
		slog.Float64("steps_per_sec", round2(s.StepsPerSec)),
		slog.Float64("heap_mb", round2(s.HeapMB)),
		slog.Float64("alloc_rate_mb_s", round2(s.AllocRateMB)),
		slog.Uint64("gc", uint64(s.GCCount)),
		slog.Uint64("gc_last_us", s.LastPauseUs),
		slog.Uint64("gc_max_us", s.MaxPauseUs),
		slog.Float64("sys_mb", round2(s.SysMB)),
	)

	p.frameCount = 0
	p.stepCount = 0
	p.lastTime = now
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s, true
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
