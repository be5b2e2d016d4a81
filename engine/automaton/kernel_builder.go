package automaton

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// KernelBuilderOption is a functional option for configuring a Kernel.
type KernelBuilderOption func(*kernel)

// NewKernel creates a Kernel. Without options it uses an 8x8 tile, one worker per CPU,
// the preserved stale-data paint policy and a write predicate that is always true.
//
// Parameters:
//   - options: variadic list of KernelBuilderOption
//
// Returns:
//   - Kernel: the configured kernel
func NewKernel(options ...KernelBuilderOption) Kernel {
	k := &kernel{
		tileSize:  DefaultTileSize,
		workers:   runtime.NumCPU(),
		writeGate: Always(),
		logger:    slog.New(slog.DiscardHandler),
	}

	for _, option := range options {
		option(k)
	}

	// Initialize the pool after options so WithWorkers can override the default.
	if k.workers > 1 {
		k.pool = worker.NewDynamicWorkerPool(k.workers, 256, 1*time.Second)
	}
	k.logger.Debug("automaton kernel ready", "tile", k.tileSize, "workers", k.workers, "paint_copies", k.paintCopies)

	return k
}

// WithTileSize sets the workgroup edge length. Values below 1 are ignored.
//
// Parameters:
//   - n: cells per tile along each axis
//
// Returns:
//   - KernelBuilderOption: option function that sets the tile size
func WithTileSize(n int) KernelBuilderOption {
	return func(k *kernel) {
		if n > 0 {
			k.tileSize = n
		}
	}
}

// WithWorkers sets how many pool workers evaluate tile rows. One or fewer runs every step inline.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - KernelBuilderOption: option function that sets the worker count
func WithWorkers(n int) KernelBuilderOption {
	return func(k *kernel) {
		k.workers = n
	}
}

// WithPaintCopiesCurrent makes unpainted cells carry their current value into the next generation
// while painting, instead of being left untouched.
//
// Parameters:
//   - enabled: true to copy current into next for unpainted cells
//
// Returns:
//   - KernelBuilderOption: option function that sets the paint policy
func WithPaintCopiesCurrent(enabled bool) KernelBuilderOption {
	return func(k *kernel) {
		k.paintCopies = enabled
	}
}

// WithWritePredicate installs a write gate evaluated once per invocation. Nil restores Always.
//
// Parameters:
//   - p: the predicate
//
// Returns:
//   - KernelBuilderOption: option function that sets the write predicate
func WithWritePredicate(p WritePredicate) KernelBuilderOption {
	return func(k *kernel) {
		if p == nil {
			p = Always()
		}
		k.writeGate = p
	}
}

// WithLogger sets the logger used for kernel diagnostics.
//
// Parameters:
//   - l: the logger, nil keeps the discard logger
//
// Returns:
//   - KernelBuilderOption: option function that sets the logger
func WithLogger(l *slog.Logger) KernelBuilderOption {
	return func(k *kernel) {
		if l != nil {
			k.logger = l
		}
	}
}
