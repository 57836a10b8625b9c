package main

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dynamics/dsp/buffer"
)

// TestSplitFrames verifies whole-frame counts pass through and a trailing
// partial frame is reported as an error.
func TestSplitFrames(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		numChans int
		want     int
		wantErr  bool
	}{
		{"mono", 512, 1, 512, false},
		{"stereo", 512, 2, 256, false},
		{"empty", 0, 2, 0, false},
		{"partial stereo frame", 511, 2, 0, true},
		{"partial surround frame", 100, 6, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitFrames(tt.n, tt.numChans)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("splitFrames(%d, %d) = %d, want error", tt.n, tt.numChans, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("splitFrames(%d, %d) failed: %v", tt.n, tt.numChans, err)
			}

			if got != tt.want {
				t.Errorf("splitFrames(%d, %d) = %d, want %d", tt.n, tt.numChans, got, tt.want)
			}
		})
	}
}

// TestInterleaveRoundTrip verifies PCM samples survive a deinterleave and
// interleave cycle unchanged.
func TestInterleaveRoundTrip(t *testing.T) {
	const (
		numChans = 2
		scale    = 1 << 15
	)

	data := []int{0, 16384, -16384, 8192, 32767, -32768, 1, -1}

	pool := buffer.NewPool()
	planes := []*buffer.Buffer{pool.Get(4), pool.Get(4)}

	block := deinterleave(planes, data, numChans, scale)

	if len(block) != numChans || len(block[0]) != 4 {
		t.Fatalf("deinterleave shape = %dx%d, want %dx%d", len(block), len(block[0]), numChans, 4)
	}

	if block[0][0] != 0 || block[1][0] != 0.5 {
		t.Errorf("first frame = (%v, %v), want (0, 0.5)", block[0][0], block[1][0])
	}

	got := make([]int, len(data))
	interleave(got, block, scale)

	for i := range data {
		if got[i] != data[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], data[i])
		}
	}
}

// TestInterleaveClamping verifies out-of-range samples clamp to the legal
// integer range instead of wrapping.
func TestInterleaveClamping(t *testing.T) {
	const scale = 1 << 15

	block := [][]float64{{1.5, -2.0, math.Nextafter(1.0, 2.0)}}

	got := make([]int, 3)
	interleave(got, block, scale)

	want := []int{scale - 1, -scale, scale - 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}
