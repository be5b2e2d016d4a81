// package engine drives the cellular automaton. An Engine starts Idle; Start seeds the grid, uploads
// it to the device and moves to Running, after which every Frame snapshots the pointer, asks the
// scheduler whether a step is due, steps and swaps if so, then renders the current generation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/device"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/input"
	"github.com/Carmen-Shannon/oxy-life/engine/profiler"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
	"github.com/Carmen-Shannon/oxy-life/engine/scheduler"
	"github.com/Carmen-Shannon/oxy-life/engine/window"
)

// Phase is the frame loop state.
type Phase int

const (
	// PhaseIdle is the state before Start.
	PhaseIdle Phase = iota
	// PhaseRunning is entered by Start and never left; the host stops calling Frame instead.
	PhaseRunning
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// FrameResult describes one completed frame.
type FrameResult struct {
	// Frame is the 1-based frame ordinal.
	Frame uint64
	// Stepped is true when a step ran and the generations were swapped.
	Stepped bool
	// Step is the step counter after the frame.
	Step uint64
	// Rendered is the generation drawn this frame.
	Rendered grid.Generation
	// Skipped is true when the surface was unavailable and nothing ran.
	Skipped bool
}

// keyQueueSize bounds the key events buffered between two frames. Extra keys are dropped.
const keyQueueSize = 16

// engine implements the Engine interface.
type engine struct {
	mu    sync.Mutex
	phase Phase

	config Config
	state  grid.State
	device device.Device
	window window.Window

	pointer   input.Pointer
	scheduler scheduler.Scheduler
	rng       *rand.Rand
	paused    bool

	logger *slog.Logger
	clock  func() time.Time
	start  time.Time
	frames uint64

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        uint64        // 0 = run until quit
	onFrame          func(FrameResult)

	keys    chan uint32
	resizes chan [2]int

	wg          sync.WaitGroup
	quitChannel chan struct{}
	quitOnce    sync.Once
	runErr      error
}

// Engine is the frame driver. Start, Frame and Run must be called from one goroutine; KeyDown,
// Resize, Pointer and Quit may be called from host event callbacks.
type Engine interface {
	// Start performs one-time setup: seeds both generations, uploads them to the device and resets
	// the scheduler baseline. It moves the engine from PhaseIdle to PhaseRunning.
	//
	// Returns:
	//   - error: ErrAlreadyStarted, ErrNoDevice, or the device upload error
	Start() error

	// Frame runs one iteration of the frame loop at the given time.
	//
	// Parameters:
	//   - now: the frame timestamp
	//
	// Returns:
	//   - FrameResult: what the frame did
	//   - error: ErrNotStarted, or a device error that should end the loop
	Frame(now time.Time) (FrameResult, error)

	// Run starts the engine and drives frames until Quit, the window closes, or the frame limit
	// is reached. With a window, frames run on a render goroutine while the calling goroutine pumps
	// window messages.
	//
	// Returns:
	//   - error: the startup error or the error that ended the loop
	Run() error

	// Quit stops Run. Safe to call multiple times.
	Quit()

	// KeyDown queues a key for the next frame.
	//
	// Parameters:
	//   - keyCode: a common.Key* code
	KeyDown(keyCode uint32)

	// Resize queues a framebuffer resize for the next frame. The grid is never resized.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Phase returns the frame loop state.
	Phase() Phase

	// Paused reports whether stepping is paused.
	Paused() bool

	// State returns the grid.
	State() grid.State

	// Pointer returns the pointer the host input callbacks write to.
	Pointer() input.Pointer

	// Device returns the device frames are run on.
	Device() device.Device

	// Window returns the host window, or nil when running headless.
	Window() window.Window
}

var _ Engine = &engine{}

// NewEngine creates an Idle engine. Options are applied after the grid and scheduler are built from
// cfg, so WithState and WithScheduler replace them.
//
// Parameters:
//   - cfg: the startup configuration, validated here
//   - options: functional options; WithDevice is required before Start
//
// Returns:
//   - Engine: the new engine
//   - error: ErrInvalidConfig, or a grid allocation error
func NewEngine(cfg *Config, options ...EngineBuilderOption) (Engine, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &engine{
		config:      *cfg,
		pointer:     input.NewPointer(),
		scheduler:   cfg.Scheduler(),
		logger:      Logger(),
		clock:       time.Now,
		keys:        make(chan uint32, keyQueueSize),
		resizes:     make(chan [2]int, 1),
		quitChannel: make(chan struct{}),
	}
	if cfg.FrameLimit > 0 {
		e.renderFrameLimit = time.Duration(float64(time.Second) / cfg.FrameLimit)
	}
	e.profilingEnabled = cfg.Profile

	for _, opt := range options {
		opt(e)
	}

	if e.state == nil {
		s, err := grid.NewState(cfg.GridSize())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		e.state = s
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(e.logger, 0)
	}
	if e.window != nil {
		e.bindWindow(e.window)
	}

	return e, nil
}

// bindWindow routes host events into the engine. Callbacks run on the window goroutine and only
// touch the pointer and the queues.
func (e *engine) bindWindow(w window.Window) {
	w.SetResizeCallback(e.Resize)
	w.SetKeyDownCallback(e.KeyDown)
	w.SetMouseMoveCallback(func(x, y float64) {
		cw, ch := w.CanvasSize()
		e.pointer.Move(x, y, cw, ch)
	})
	w.SetMouseButtonCallback(func(button uint32, pressed bool) {
		if pressed {
			e.pointer.Press(button)
		} else {
			e.pointer.Release(button)
		}
	})
}

func (e *engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseIdle {
		return ErrAlreadyStarted
	}
	if e.device == nil {
		return ErrNoDevice
	}
	if e.device.Size() != e.state.Size() {
		return fmt.Errorf("%w: device %dx%d, grid %dx%d", device.ErrSizeMismatch,
			e.device.Size().Width, e.device.Size().Height, e.state.Size().Width, e.state.Size().Height)
	}

	seed := common.Coalesce(e.config.Seed, uint64(e.clock().UnixNano()))
	e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	e.state.Seed(e.rng, e.config.InitialAlive)
	if err := e.device.Upload(e.state); err != nil {
		return err
	}

	e.start = e.clock()
	e.scheduler.Reset(e.start)
	e.phase = PhaseRunning

	size := e.state.Size()
	e.logger.Info("engine started",
		slog.String("device", e.device.Name()),
		slog.Int("width", size.Width),
		slog.Int("height", size.Height),
		slog.Uint64("seed", seed),
		slog.String("cadence", e.scheduler.Policy().String()),
	)
	return nil
}

func (e *engine) Frame(now time.Time) (FrameResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseRunning {
		return FrameResult{}, ErrNotStarted
	}
	e.frames++
	res := FrameResult{Frame: e.frames}
	elapsed := now.Sub(e.start)

	if err := e.drainResizes(); err != nil {
		return res, err
	}
	if err := e.drainKeys(); err != nil {
		return res, err
	}
	snapshot := e.pointer.Snapshot()

	if err := e.device.BeginFrame(); err != nil {
		if errors.Is(err, renderer.ErrSurfaceUnavailable) {
			res.Skipped = true
			res.Step = e.state.Step()
			res.Rendered = e.state.Current()
			return res, nil
		}
		return res, err
	}

	if !e.paused && e.scheduler.Due(now) {
		inv := automaton.Invocation{Pointer: snapshot, Elapsed: elapsed}
		written, err := e.device.Step(e.state, inv)
		if err != nil {
			return res, err
		}
		if written {
			e.state.Swap()
			res.Stepped = true
		}
	}

	res.Step = e.state.Step()
	res.Rendered = e.state.Current()
	if err := e.device.Render(e.state, elapsed); err != nil {
		return res, err
	}

	if e.profilingEnabled {
		e.profiler.Tick(now, res.Stepped)
	}
	if e.onFrame != nil {
		e.onFrame(res)
	}
	return res, nil
}

// drainKeys applies queued key presses. Grid mutation happens here so it stays on the frame goroutine.
func (e *engine) drainKeys() error {
	for {
		select {
		case key := <-e.keys:
			if err := e.applyKey(key); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (e *engine) applyKey(key uint32) error {
	switch key {
	case common.KeySpace, common.KeyP:
		e.paused = !e.paused
		e.logger.Info("pause toggled", slog.Bool("paused", e.paused))
	case common.KeyR:
		e.state.Seed(e.rng, e.config.InitialAlive)
		e.logger.Info("grid reseeded", slog.Float64("alive", e.config.InitialAlive))
		return e.device.Upload(e.state)
	case common.KeyC:
		e.state.Clear()
		e.logger.Info("grid cleared")
		return e.device.Upload(e.state)
	case common.KeyEsc:
		// A windowed host closes itself; headless runs stop here.
		e.signalQuit()
	}
	return nil
}

func (e *engine) drainResizes() error {
	select {
	case sz := <-e.resizes:
		if sz[0] <= 0 || sz[1] <= 0 {
			// Minimized. The renderer parks the surface and frames are skipped until restored.
			e.logger.Debug("surface parked", slog.Int("width", sz[0]), slog.Int("height", sz[1]))
		}
		return e.device.Resize(sz[0], sz[1])
	default:
		return nil
	}
}

func (e *engine) KeyDown(keyCode uint32) {
	select {
	case e.keys <- keyCode:
	default:
		e.logger.Warn("key dropped", slog.Uint64("key", uint64(keyCode)))
	}
}

// Resize keeps only the latest pending size.
func (e *engine) Resize(width, height int) {
	sz := [2]int{width, height}
	select {
	case e.resizes <- sz:
	default:
		select {
		case <-e.resizes:
		default:
		}
		select {
		case e.resizes <- sz:
		default:
		}
	}
}

func (e *engine) Run() error {
	if err := e.Start(); err != nil {
		return err
	}
	defer e.device.Close()

	if e.window == nil {
		e.wg.Add(1)
		e.handleFrames()
		return e.err()
	}

	e.wg.Add(2)
	go e.handleFrames()
	go e.handleQuit()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
	return e.err()
}

// handleFrames runs the frame loop until quit. Recovers from panics to avoid crashing the process
// and signals quit on recovery.
func (e *engine) handleFrames() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("frame loop recovered from panic", slog.Any("panic", r))
			e.setErr(fmt.Errorf("frame loop panic: %v", r))
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := e.clock()
		res, err := e.Frame(frameStart)
		if err != nil {
			e.logger.LogAttrs(context.Background(), slog.LevelError, "frame failed",
				slog.Uint64("frame", res.Frame),
				slog.String("error", err.Error()),
			)
			e.setErr(err)
			e.signalQuit()
			return
		}
		if e.maxFrames > 0 && res.Frame >= e.maxFrames {
			e.signalQuit()
			return
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - e.clock().Sub(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// handleQuit closes the window once quit is signalled from the frame loop.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
	e.window.RequestClose()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel. Uses sync.Once so the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) setErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.runErr == nil {
		e.runErr = err
	}
}

func (e *engine) err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runErr
}

func (e *engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *engine) State() grid.State {
	return e.state
}

func (e *engine) Pointer() input.Pointer {
	return e.pointer
}

func (e *engine) Device() device.Device {
	return e.device
}

func (e *engine) Window() window.Window {
	return e.window
}
