package common

import "testing"

func TestWrap(t *testing.T) {
	tests := []struct {
		v, n, want int
	}{
		{v: 0, n: 8, want: 0},
		{v: 7, n: 8, want: 7},
		{v: 8, n: 8, want: 0},
		{v: -1, n: 8, want: 7},
		{v: -9, n: 8, want: 7},
		{v: 17, n: 8, want: 1},
	}
	for _, tt := range tests {
		if got := Wrap(tt.v, tt.n); got != tt.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tt.v, tt.n, got, tt.want)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		n, size int
		want    uint32
	}{
		{n: 64, size: 8, want: 8},
		{n: 65, size: 8, want: 9},
		{n: 5, size: 8, want: 1},
		{n: 0, size: 8, want: 0},
		{n: 3, size: 0, want: 3},
	}
	for _, tt := range tests {
		if got := CeilDiv(tt.n, tt.size); got != tt.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce[uint64](0, 0, 5, 6); got != 5 {
		t.Errorf("Coalesce = %d, want 5", got)
	}
	if got := Coalesce[string](); got != "" {
		t.Errorf("Coalesce() = %q, want empty", got)
	}
}

func TestSliceToBytes(t *testing.T) {
	b := SliceToBytes([]uint32{1, 0x01020304})
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
	if SliceToBytes([]uint32(nil)) != nil {
		t.Fatal("empty slice should give nil")
	}
}
