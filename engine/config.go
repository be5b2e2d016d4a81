package engine

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
	"github.com/Carmen-Shannon/oxy-life/engine/scheduler"
	"github.com/Carmen-Shannon/oxy-life/engine/shading"
)

// Config is the startup configuration surface. It is read once; nothing in it changes while running.
type Config struct {
	GridWidth  int
	GridHeight int
	// CellSize is the window size of one cell in pixels.
	CellSize int
	TileSize int

	// Cadence is parsed by scheduler.ParsePolicy: "time" or "frames".
	Cadence         string
	CadenceInterval time.Duration
	CadenceFrames   int

	InitialAlive float64
	// Seed of 0 picks a seed from the clock at start.
	Seed uint64

	// Shading is parsed by shading.ParseMode: "static" or "palette".
	Shading        string
	KeyframeLength time.Duration

	// BurstWindow and BurstCycle gate kernel writes. A zero window writes on every step.
	BurstWindow time.Duration
	BurstCycle  time.Duration

	PaintCopiesCurrent bool
	Workers            int

	// PresentMode is "vsync" or "uncapped".
	PresentMode string
	// FrameLimit caps the render rate in frames per second, 0 is uncapped.
	FrameLimit float64
	Profile    bool
}

// NewConfig returns a Config populated with defaults.
//
// Returns:
//   - *Config: the default configuration
func NewConfig() *Config {
	return &Config{
		GridWidth:       64,
		GridHeight:      64,
		CellSize:        12,
		TileSize:        automaton.DefaultTileSize,
		Cadence:         scheduler.PolicyTime.String(),
		CadenceInterval: scheduler.DefaultInterval,
		CadenceFrames:   scheduler.DefaultFrameCadence,
		InitialAlive:    0.1,
		Shading:         "static",
		KeyframeLength:  shading.DefaultKeyframeLength,
		Workers:         runtime.GOMAXPROCS(0),
		PresentMode:     renderer.PresentModeVSync.String(),
	}
}

// Bind attaches the configuration to the provided FlagSet.
//
// Parameters:
//   - fs: the flag set to register on
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.GridWidth, "width", c.GridWidth, "grid width in cells")
	fs.IntVar(&c.GridHeight, "height", c.GridHeight, "grid height in cells")
	fs.IntVar(&c.CellSize, "cell", c.CellSize, "pixels per cell")
	fs.IntVar(&c.TileSize, "tile", c.TileSize, "kernel tile edge length")
	fs.StringVar(&c.Cadence, "cadence", c.Cadence, "step cadence policy: time or frames")
	fs.DurationVar(&c.CadenceInterval, "interval", c.CadenceInterval, "time between steps for the time cadence")
	fs.IntVar(&c.CadenceFrames, "every", c.CadenceFrames, "frames between steps for the frames cadence")
	fs.Float64Var(&c.InitialAlive, "alive", c.InitialAlive, "initial alive probability")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "seed for the initial population, 0 picks one")
	fs.StringVar(&c.Shading, "shading", c.Shading, "cell shading: static or palette")
	fs.DurationVar(&c.KeyframeLength, "keyframe", c.KeyframeLength, "palette keyframe length")
	fs.DurationVar(&c.BurstWindow, "burst-window", c.BurstWindow, "active write window per burst cycle, 0 disables")
	fs.DurationVar(&c.BurstCycle, "burst-cycle", c.BurstCycle, "burst cycle length")
	fs.BoolVar(&c.PaintCopiesCurrent, "paint-copies", c.PaintCopiesCurrent, "refresh unpainted cells while painting")
	fs.IntVar(&c.Workers, "workers", c.Workers, "CPU kernel workers")
	fs.StringVar(&c.PresentMode, "present", c.PresentMode, "present mode: vsync or uncapped")
	fs.Float64Var(&c.FrameLimit, "fps", c.FrameLimit, "render frame cap, 0 is uncapped")
	fs.BoolVar(&c.Profile, "profile", c.Profile, "log frame and step rates")
}

// Validate reports every problem with the configuration at once.
//
// Returns:
//   - error: ErrInvalidConfig wrapping each problem, or nil
func (c *Config) Validate() error {
	var errs []error
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		errs = append(errs, fmt.Errorf("grid must be positive, got %dx%d", c.GridWidth, c.GridHeight))
	}
	if c.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell size must be positive, got %d", c.CellSize))
	}
	if c.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("tile size must be positive, got %d", c.TileSize))
	}
	policy, err := scheduler.ParsePolicy(c.Cadence)
	if err != nil {
		errs = append(errs, err)
	}
	switch {
	case err != nil:
	case policy == scheduler.PolicyTime && c.CadenceInterval < 0:
		errs = append(errs, fmt.Errorf("interval must not be negative, got %s", c.CadenceInterval))
	case policy == scheduler.PolicyFrames && c.CadenceFrames <= 0:
		errs = append(errs, fmt.Errorf("frame cadence must be positive, got %d", c.CadenceFrames))
	}
	if c.InitialAlive < 0 || c.InitialAlive > 1 {
		errs = append(errs, fmt.Errorf("alive probability must be in [0, 1], got %v", c.InitialAlive))
	}
	mode, err := shading.ParseMode(c.Shading)
	if err != nil {
		errs = append(errs, err)
	} else if mode == automaton.ShadingPalette && c.KeyframeLength <= 0 {
		errs = append(errs, fmt.Errorf("keyframe length must be positive, got %s", c.KeyframeLength))
	}
	if c.BurstWindow < 0 || (c.BurstWindow > 0 && c.BurstCycle < c.BurstWindow) {
		errs = append(errs, fmt.Errorf("burst window %s does not fit cycle %s", c.BurstWindow, c.BurstCycle))
	}
	if _, err := renderer.ParsePresentMode(c.PresentMode); err != nil {
		errs = append(errs, err)
	}
	if c.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("frame limit must not be negative, got %v", c.FrameLimit))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// GridSize returns the configured grid dimensions.
func (c *Config) GridSize() common.GridSize {
	return common.GridSize{Width: c.GridWidth, Height: c.GridHeight}
}

// WindowSize returns the initial window size, one CellSize square per cell.
func (c *Config) WindowSize() (int, int) {
	return c.GridWidth * c.CellSize, c.GridHeight * c.CellSize
}

// Kernel builds the CPU kernel and tile parameters described by the configuration.
// The caller owns the result and must Close it, usually by handing it to a device.
//
// Parameters:
//   - logger: receives kernel diagnostics, nil discards them
//
// Returns:
//   - automaton.Kernel: the configured kernel
func (c *Config) Kernel(logger *slog.Logger) automaton.Kernel {
	gate := automaton.Always()
	if c.BurstWindow > 0 {
		gate = automaton.BurstWindow(c.BurstWindow, c.BurstCycle)
	}
	return automaton.NewKernel(
		automaton.WithTileSize(c.TileSize),
		automaton.WithWorkers(c.Workers),
		automaton.WithPaintCopiesCurrent(c.PaintCopiesCurrent),
		automaton.WithWritePredicate(gate),
		automaton.WithLogger(logger),
	)
}

// Policy builds the shading policy. An unknown mode falls back to static shading; call Validate first.
//
// Returns:
//   - shading.Policy: the color policy
func (c *Config) Policy() shading.Policy {
	mode, err := shading.ParseMode(c.Shading)
	if err != nil {
		mode = automaton.ShadingStatic
	}
	return shading.NewPolicy(mode, c.KeyframeLength)
}

// Scheduler builds the step cadence gate.
//
// Returns:
//   - scheduler.Scheduler: the cadence gate
func (c *Config) Scheduler() scheduler.Scheduler {
	if policy, _ := scheduler.ParsePolicy(c.Cadence); policy == scheduler.PolicyFrames {
		return scheduler.NewScheduler(scheduler.WithFrameCadence(c.CadenceFrames))
	}
	return scheduler.NewScheduler(scheduler.WithInterval(c.CadenceInterval))
}

// RendererOptions maps the presentation settings onto renderer options.
//
// Returns:
//   - []renderer.RendererBuilderOption: the options for renderer.NewRenderer
func (c *Config) RendererOptions() []renderer.RendererBuilderOption {
	mode, err := renderer.ParsePresentMode(c.PresentMode)
	if err != nil {
		mode = renderer.PresentModeVSync
	}
	return []renderer.RendererBuilderOption{renderer.WithPresentMode(mode)}
}
