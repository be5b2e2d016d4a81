package automaton

import (
	"testing"
	"time"
)

func TestBurstWindow(t *testing.T) {
	p := BurstWindow(32*time.Millisecond, 500*time.Millisecond)
	tests := []struct {
		at   time.Duration
		want bool
	}{
		{0, true},
		{31 * time.Millisecond, true},
		{32 * time.Millisecond, false},
		{499 * time.Millisecond, false},
		{500 * time.Millisecond, true},
		{531 * time.Millisecond, true},
		{532 * time.Millisecond, false},
		{-480 * time.Millisecond, true},
	}
	for _, tt := range tests {
		if got := p(tt.at); got != tt.want {
			t.Errorf("BurstWindow(32ms, 500ms)(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestBurstWindowDegenerates(t *testing.T) {
	for _, p := range []WritePredicate{
		BurstWindow(0, time.Second),
		BurstWindow(time.Second, 0),
		BurstWindow(time.Second, time.Second),
		Always(),
	} {
		for _, at := range []time.Duration{0, 250 * time.Millisecond, 999 * time.Millisecond} {
			if !p(at) {
				t.Errorf("degenerate predicate returned false at %v", at)
			}
		}
	}
}
