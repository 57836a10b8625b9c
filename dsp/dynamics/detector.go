package dynamics

import (
	"math"

	"github.com/cwbudde/algo-dynamics/dsp/core"
)

// PeakTrack reduces a multichannel block to one peak magnitude per sample
// index: dst[i] = max over channels of |block[ch][i]|. The result is written
// into dst (grown if needed) and returned. An empty block yields an empty
// track.
//
// PeakTrack is stateless and performs no shape validation; processors
// validate blocks before calling it.
func PeakTrack(dst []float64, block [][]float64) []float64 {
	if len(block) == 0 {
		return dst[:0]
	}

	n := len(block[0])
	dst = core.EnsureLen(dst, n)

	// Single-channel fast path.
	if len(block) == 1 {
		for i, v := range block[0] {
			dst[i] = math.Abs(v)
		}

		return dst
	}

	for i := range dst {
		dst[i] = math.Abs(block[0][i])
	}

	for _, ch := range block[1:] {
		for i, v := range ch {
			if a := math.Abs(v); a > dst[i] {
				dst[i] = a
			}
		}
	}

	return dst
}
