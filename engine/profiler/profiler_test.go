package profiler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestTickReportsRates(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(slog.New(slog.NewTextHandler(&buf, nil)), time.Second)

	start := time.Unix(1000, 0)
	// 60 frames over one second, every 12th frame steps.
	for i := 0; i < 60; i++ {
		now := start.Add(time.Duration(i) * time.Second / 60)
		if _, ok := p.Tick(now, i%12 == 0); ok {
			t.Fatalf("reported early at frame %d", i)
		}
	}
	s, ok := p.Tick(start.Add(time.Second), false)
	if !ok {
		t.Fatal("no report after the interval elapsed")
	}
	if s.FPS < 60 || s.FPS > 62 {
		t.Errorf("FPS = %.2f, want ~61", s.FPS)
	}
	if s.StepsPerSec != 5 {
		t.Errorf("StepsPerSec = %.2f, want 5", s.StepsPerSec)
	}
	out := buf.String()
	for _, key := range []string{"msg=profiler", "fps=", "steps_per_sec=5", "heap_mb="} {
		if !strings.Contains(out, key) {
			t.Errorf("log line %q missing %q", out, key)
		}
	}
}

func TestTickResetsWindow(t *testing.T) {
	p := NewProfiler(nil, 100*time.Millisecond)
	start := time.Unix(0, 0)
	p.Tick(start, true)
	if _, ok := p.Tick(start.Add(100*time.Millisecond), true); !ok {
		t.Fatal("first window not reported")
	}
	s, ok := p.Tick(start.Add(200*time.Millisecond), false)
	if !ok {
		t.Fatal("second window not reported")
	}
	if s.StepsPerSec != 0 || s.FPS != 10 {
		t.Errorf("second window = %+v, want 10 fps and no steps", s)
	}
}

func TestNewProfilerDefaults(t *testing.T) {
	p := NewProfiler(nil, 0)
	if p.updateInterval != time.Second {
		t.Errorf("interval = %v, want 1s", p.updateInterval)
	}
	if p.logger == nil {
		t.Error("nil logger not replaced")
	}
}
