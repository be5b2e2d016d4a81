package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/automaton"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
)

// recordingDevice logs every call and lets tests script step and frame outcomes.
type recordingDevice struct {
	size common.GridSize

	calls     []string
	uploads   int
	renders   []grid.Generation
	steps     []uint64 // state.Step() seen by Render
	inv       []automaton.Invocation
	resizes   [][2]int
	closed    bool
	suppress  bool
	beginErr  error
	renderErr error
}

func (d *recordingDevice) Name() string          { return "recording" }
func (d *recordingDevice) Size() common.GridSize { return d.size }

func (d *recordingDevice) Upload(grid.State) error {
	d.uploads++
	d.calls = append(d.calls, "upload")
	return nil
}

func (d *recordingDevice) BeginFrame() error {
	d.calls = append(d.calls, "begin")
	return d.beginErr
}

func (d *recordingDevice) Step(_ grid.State, inv automaton.Invocation) (bool, error) {
	d.calls = append(d.calls, "step")
	d.inv = append(d.inv, inv)
	return !d.suppress, nil
}

func (d *recordingDevice) Render(state grid.State, _ time.Duration) error {
	d.calls = append(d.calls, "render")
	d.renders = append(d.renders, state.Current())
	d.steps = append(d.steps, state.Step())
	return d.renderErr
}

func (d *recordingDevice) Resize(width, height int) error {
	d.resizes = append(d.resizes, [2]int{width, height})
	return nil
}

func (d *recordingDevice) Close() { d.closed = true }

// fakeClock advances only when told to.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

func testConfig(mutate func(*Config)) *Config {
	cfg := NewConfig()
	cfg.GridWidth, cfg.GridHeight = 8, 8
	cfg.Seed = 7
	cfg.InitialAlive = 0.5
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func newTestEngine(t *testing.T, cfg *Config, options ...EngineBuilderOption) (Engine, *recordingDevice, *fakeClock) {
	t.Helper()
	dev := &recordingDevice{size: cfg.GridSize()}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	opts := append([]EngineBuilderOption{WithDevice(dev), WithClock(clock.Now)}, options...)
	e, err := NewEngine(cfg, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, dev, clock
}

func TestFrameBeforeStart(t *testing.T) {
	e, _, clock := newTestEngine(t, testConfig(nil))
	if e.Phase() != PhaseIdle {
		t.Fatalf("Phase() = %s, want idle", e.Phase())
	}
	if _, err := e.Frame(clock.Now()); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Frame before Start = %v, want ErrNotStarted", err)
	}
}

func TestStart(t *testing.T) {
	t.Run("no device", func(t *testing.T) {
		e, err := NewEngine(testConfig(nil))
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		if err := e.Start(); !errors.Is(err, ErrNoDevice) {
			t.Fatalf("Start = %v, want ErrNoDevice", err)
		}
	})

	t.Run("seeds and uploads once", func(t *testing.T) {
		e, dev, _ := newTestEngine(t, testConfig(nil))
		if err := e.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if e.Phase() != PhaseRunning {
			t.Fatalf("Phase() = %s, want running", e.Phase())
		}
		if dev.uploads != 1 {
			t.Fatalf("uploads = %d, want 1", dev.uploads)
		}
		s := e.State()
		a, b := s.Read(grid.GenerationA), s.Read(grid.GenerationB)
		if a.Population() == 0 {
			t.Fatal("seeded grid is empty at alive=0.5")
		}
		if a.Population() != b.Population() {
			t.Fatalf("generations differ after seeding: %d vs %d", a.Population(), b.Population())
		}
		if err := e.Start(); !errors.Is(err, ErrAlreadyStarted) {
			t.Fatalf("second Start = %v, want ErrAlreadyStarted", err)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		dev := &recordingDevice{size: common.GridSize{Width: 4, Height: 4}}
		e, err := NewEngine(testConfig(nil), WithDevice(dev))
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		if err := e.Start(); err == nil {
			t.Fatal("Start with a mis-sized device succeeded")
		}
	})
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	_, err := NewEngine(testConfig(func(c *Config) { c.GridWidth = 0 }))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NewEngine = %v, want ErrInvalidConfig", err)
	}
}

func TestFrameSequencing(t *testing.T) {
	cfg := testConfig(func(c *Config) {
		c.Cadence = "frames"
		c.CadenceFrames = 4
	})
	e, dev, clock := newTestEngine(t, cfg)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	dev.calls = nil

	var stepped []uint64
	for range 12 {
		res, err := e.Frame(clock.Advance(16 * time.Millisecond))
		if err != nil {
			t.Fatalf("Frame: %v", err)
		}
		if res.Stepped {
			stepped = append(stepped, res.Frame)
		}
		if res.Rendered != grid.Generation(res.Step%2) {
			t.Fatalf("frame %d rendered %s at step %d", res.Frame, res.Rendered, res.Step)
		}
	}

	if fmt.Sprint(stepped) != "[4 8 12]" {
		t.Fatalf("stepped on frames %v, want [4 8 12]", stepped)
	}
	if got := e.State().Step(); got != 3 {
		t.Fatalf("step counter = %d, want 3", got)
	}

	// Every frame is begin, optional step, render, never interleaved.
	i := 0
	for frame := 1; frame <= 12; frame++ {
		if dev.calls[i] != "begin" {
			t.Fatalf("frame %d: call %d = %q, want begin", frame, i, dev.calls[i])
		}
		i++
		if frame%4 == 0 {
			if dev.calls[i] != "step" {
				t.Fatalf("frame %d: call %d = %q, want step", frame, i, dev.calls[i])
			}
			i++
		}
		if dev.calls[i] != "render" {
			t.Fatalf("frame %d: call %d = %q, want render", frame, i, dev.calls[i])
		}
		i++
	}
	if i != len(dev.calls) {
		t.Fatalf("%d extra device calls", len(dev.calls)-i)
	}
}

func TestTimeCadence(t *testing.T) {
	cfg := testConfig(func(c *Config) {
		c.Cadence = "time"
		c.CadenceInterval = 50 * time.Millisecond
	})
	e, _, clock := newTestEngine(t, cfg)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	steps := 0
	for frame := 1; frame <= 20; frame++ {
		res, err := e.Frame(clock.Advance(10 * time.Millisecond))
		if err != nil {
			t.Fatalf("Frame: %v", err)
		}
		if res.Stepped != (frame%5 == 0) {
			t.Fatalf("frame %d: stepped = %v", frame, res.Stepped)
		}
		if res.Stepped {
			steps++
		}
	}
	if steps != 4 {
		t.Fatalf("steps = %d, want 4", steps)
	}
}

func TestSuppressedStepDoesNotSwap(t *testing.T) {
	cfg := testConfig(func(c *Config) {
		c.Cadence = "frames"
		c.CadenceFrames = 1
	})
	e, dev, clock := newTestEngine(t, cfg)
	dev.suppress = true
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for range 3 {
		res, err := e.Frame(clock.Advance(time.Millisecond))
		if err != nil {
			t.Fatalf("Frame: %v", err)
		}
		if res.Stepped || res.Step != 0 || res.Rendered != grid.GenerationA {
			t.Fatalf("suppressed frame = %+v", res)
		}
	}
	if len(dev.inv) != 3 {
		t.Fatalf("device saw %d invocations, want 3", len(dev.inv))
	}
}

func TestInvocationCarriesPointerAndElapsed(t *testing.T) {
	cfg := testConfig(func(c *Config) {
		c.Cadence = "frames"
		c.CadenceFrames = 1
	})
	e, dev, clock := newTestEngine(t, cfg)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.Pointer().Move(0, 0, 100, 100)
	e.Pointer().Press(common.MouseButtonPrimary)
	if _, err := e.Frame(clock.Advance(250 * time.Millisecond)); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	inv := dev.inv[0]
	if !inv.Pointer.Painting() || inv.Pointer.X != -1 || inv.Pointer.Y != 1 {
		t.Fatalf("invocation pointer = %+v", inv.Pointer)
	}
	if inv.Elapsed != 250*time.Millisecond {
		t.Fatalf("elapsed = %s, want 250ms", inv.Elapsed)
	}
}

func TestKeys(t *testing.T) {
	cfg := testConfig(func(c *Config) {
		c.Cadence = "frames"
		c.CadenceFrames = 1
	})

	t.Run("pause", func(t *testing.T) {
		e, _, clock := newTestEngine(t, cfg)
		if err := e.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		e.KeyDown(common.KeySpace)
		res, err := e.Frame(clock.Advance(time.Millisecond))
		if err != nil {
			t.Fatalf("Frame: %v", err)
		}
		if !e.Paused() || res.Stepped {
			t.Fatalf("paused = %v, stepped = %v", e.Paused(), res.Stepped)
		}
		e.KeyDown(common.KeyP)
		res, _ = e.Frame(clock.Advance(time.Millisecond))
		if e.Paused() || !res.Stepped {
			t.Fatalf("after resume: paused = %v, stepped = %v", e.Paused(), res.Stepped)
		}
	})

	t.Run("clear", func(t *testing.T) {
		e, dev, clock := newTestEngine(t, cfg)
		if err := e.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		e.KeyDown(common.KeyC)
		if _, err := e.Frame(clock.Advance(time.Millisecond)); err != nil {
			t.Fatalf("Frame: %v", err)
		}
		s := e.State()
		if s.Read(grid.GenerationA).Population() != 0 || s.Read(grid.GenerationB).Population() != 0 {
			t.Fatal("grid not cleared")
		}
		if dev.uploads != 2 {
			t.Fatalf("uploads = %d, want 2", dev.uploads)
		}
	})

	t.Run("reseed", func(t *testing.T) {
		e, dev, clock := newTestEngine(t, cfg)
		if err := e.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		e.State().Clear()
		e.KeyDown(common.KeyR)
		if _, err := e.Frame(clock.Advance(time.Millisecond)); err != nil {
			t.Fatalf("Frame: %v", err)
		}
		if e.State().Read(grid.GenerationA).Population() == 0 {
			t.Fatal("grid empty after reseed")
		}
		if dev.uploads != 2 {
			t.Fatalf("uploads = %d, want 2", dev.uploads)
		}
	})
}

func TestSkippedFrameWhenSurfaceUnavailable(t *testing.T) {
	cfg := testConfig(func(c *Config) {
		c.Cadence = "frames"
		c.CadenceFrames = 1
	})
	e, dev, clock := newTestEngine(t, cfg)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	dev.beginErr = fmt.Errorf("acquire: %w", renderer.ErrSurfaceUnavailable)
	dev.calls = nil

	res, err := e.Frame(clock.Advance(time.Millisecond))
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if !res.Skipped || res.Stepped {
		t.Fatalf("frame = %+v, want skipped", res)
	}
	if len(dev.calls) != 1 {
		t.Fatalf("calls = %v, want only begin", dev.calls)
	}
}

func TestResizeIsAppliedOnNextFrame(t *testing.T) {
	e, dev, clock := newTestEngine(t, testConfig(nil))
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Resize(100, 80)
	e.Resize(640, 480)
	if len(dev.resizes) != 0 {
		t.Fatal("resize applied before the frame")
	}
	if _, err := e.Frame(clock.Advance(time.Millisecond)); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if len(dev.resizes) != 1 || dev.resizes[0] != [2]int{640, 480} {
		t.Fatalf("resizes = %v, want only the latest", dev.resizes)
	}
	if e.State().Size() != (common.GridSize{Width: 8, Height: 8}) {
		t.Fatal("grid resized")
	}
}

func TestRunHeadless(t *testing.T) {
	t.Run("frame limit", func(t *testing.T) {
		var frames []uint64
		e, dev, _ := newTestEngine(t, testConfig(nil),
			WithMaxFrames(5),
			WithFrameCallback(func(r FrameResult) { frames = append(frames, r.Frame) }),
		)
		if err := e.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if fmt.Sprint(frames) != "[1 2 3 4 5]" {
			t.Fatalf("frames = %v", frames)
		}
		if !dev.closed {
			t.Fatal("device not closed")
		}
	})

	t.Run("device error ends the loop", func(t *testing.T) {
		e, dev, _ := newTestEngine(t, testConfig(nil), WithMaxFrames(5))
		boom := errors.New("device lost")
		dev.renderErr = boom
		if err := e.Run(); !errors.Is(err, boom) {
			t.Fatalf("Run = %v, want %v", err, boom)
		}
	})

	t.Run("escape quits", func(t *testing.T) {
		e, _, _ := newTestEngine(t, testConfig(nil))
		e.KeyDown(common.KeyEsc)
		if err := e.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	if PhaseIdle.String() != "idle" || PhaseRunning.String() != "running" {
		t.Fatalf("Phase strings = %q, %q", PhaseIdle, PhaseRunning)
	}
}
