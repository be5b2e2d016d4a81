// Command oxy-life-snapshot runs the automaton headless on the CPU kernel and writes every frame
// as frame_NNNN.png.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-life/engine"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "oxy-life-snapshot:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := engine.NewConfig()
	cfg.Cadence = "frames"
	cfg.CadenceFrames = 1

	fs := flag.NewFlagSet("oxy-life-snapshot", flag.ContinueOnError)
	cfg.Bind(fs)
	frames := fs.Uint64("frames", 16, "number of frames to render")
	out := fs.String("out", ".", "output directory")
	verbose := fs.Bool("v", false, "log every frame")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	logger := engine.Logger()

	dev, err := engine.OpenSoftware(cfg)
	if err != nil {
		return err
	}

	var saveErr error
	eng, err := engine.NewEngine(cfg,
		engine.WithDevice(dev),
		engine.WithMaxFrames(*frames),
		engine.WithFrameCallback(func(res engine.FrameResult) {
			if saveErr != nil {
				return
			}
			path := filepath.Join(*out, fmt.Sprintf("frame_%04d.png", res.Frame))
			if saveErr = dev.SavePNG(path); saveErr != nil {
				return
			}
			logger.Debug("frame written", slog.String("path", path), slog.Uint64("step", res.Step))
		}),
	)
	if err != nil {
		dev.Close()
		return err
	}
	if err := eng.Run(); err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}
	logger.Info("snapshot complete", slog.Uint64("frames", *frames), slog.String("out", *out))
	return nil
}
