// Command oxy-life runs the automaton in a window on the GPU.
//
// Space or P pauses stepping, R reseeds, C clears, Escape quits. Hold the left mouse button to paint.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-life/engine"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/window"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "oxy-life:", err)
		}
		os.Exit(exitCode(err))
	}
}

func run(args []string) error {
	// ── Configuration ───────────────────────────────────────────────────
	cfg := engine.NewConfig()
	fs := flag.NewFlagSet("oxy-life", flag.ContinueOnError)
	cfg.Bind(fs)
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("%w: %w", engine.ErrInvalidConfig, err)
	}
	engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	logger := engine.Logger()

	// ── Window ──────────────────────────────────────────────────────────
	w, h := cfg.WindowSize()
	win, err := window.NewWindow(
		window.WithTitle(fmt.Sprintf("oxy-life %dx%d", cfg.GridWidth, cfg.GridHeight)),
		window.WithSize(w, h),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", engine.ErrGPUUnsupported, err)
	}
	defer win.Close()

	// ── Device ──────────────────────────────────────────────────────────
	state, err := grid.NewState(cfg.GridSize())
	if err != nil {
		return err
	}
	dev, err := engine.OpenGPU(cfg, win, state)
	if err != nil {
		return err
	}

	// ── Engine ──────────────────────────────────────────────────────────
	eng, err := engine.NewEngine(cfg,
		engine.WithWindow(win),
		engine.WithState(state),
		engine.WithDevice(dev),
	)
	if err != nil {
		dev.Close()
		return err
	}
	logger.Info("controls", slog.String("keys", "space/p pause, r reseed, c clear, esc quit"))
	return eng.Run()
}

// exitCode distinguishes configuration mistakes from missing GPU capability.
func exitCode(err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp), errors.Is(err, engine.ErrInvalidConfig):
		return 2
	case errors.Is(err, engine.ErrGPUUnsupported),
		errors.Is(err, engine.ErrNoAdapter),
		errors.Is(err, engine.ErrSurfaceConfiguration),
		errors.Is(err, engine.ErrKernelCompilation):
		return 3
	default:
		return 1
	}
}
