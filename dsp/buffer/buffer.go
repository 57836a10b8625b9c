package buffer

// Buffer owns a reusable plane of samples. The processing loop keeps one
// per channel and resizes it to each chunk's frame count, so the backing
// array is allocated once and reused for the whole stream. Processing
// functions take plain []float64; Samples bridges to them.
type Buffer struct {
	samples []float64
}

// New returns a zero-filled Buffer of the given length. Negative lengths
// yield an empty buffer.
func New(length int) *Buffer {
	if length < 0 {
		length = 0
	}

	return &Buffer{samples: make([]float64, length)}
}

// FromSlice wraps s without copying; the Buffer and the slice share
// backing memory.
func FromSlice(s []float64) *Buffer {
	return &Buffer{samples: s}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 { return b.samples }

// Len returns the current number of samples.
func (b *Buffer) Len() int { return len(b.samples) }

// Cap returns the capacity of the backing array.
func (b *Buffer) Cap() int { return cap(b.samples) }

// Grow ensures capacity for at least n samples without changing the
// length. Existing samples are preserved.
func (b *Buffer) Grow(n int) {
	if n <= cap(b.samples) {
		return
	}

	grown := make([]float64, len(b.samples), n)
	copy(grown, b.samples)
	b.samples = grown
}

// Resize sets the length to n. Samples up to the old length survive;
// anything newly exposed reads as zero, even when the backing array held
// stale data from an earlier, longer use.
func (b *Buffer) Resize(n int) {
	if n < 0 {
		n = 0
	}

	oldLen := len(b.samples)

	if n > cap(b.samples) {
		grown := make([]float64, n)
		copy(grown, b.samples)
		b.samples = grown

		return
	}

	b.samples = b.samples[:n]
	if n > oldLen {
		clear(b.samples[oldLen:])
	}
}

// Zero clears every sample.
func (b *Buffer) Zero() {
	clear(b.samples)
}

// ZeroRange clears samples in [start, end), clamping both bounds to the
// buffer.
func (b *Buffer) ZeroRange(start, end int) {
	if start < 0 {
		start = 0
	}

	if end > len(b.samples) {
		end = len(b.samples)
	}

	if start < end {
		clear(b.samples[start:end])
	}
}

// Copy returns a Buffer with its own backing array holding the same
// samples.
func (b *Buffer) Copy() *Buffer {
	s := make([]float64, len(b.samples))
	copy(s, b.samples)

	return &Buffer{samples: s}
}
