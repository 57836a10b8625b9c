package core

// EnsureLen returns a slice of length n backed by buf when its capacity
// allows, allocating otherwise. Gain tracks and envelope outputs are
// written through this so steady-state streaming stays allocation free.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]float64, n)
}

// Zero clears buf in place.
func Zero(buf []float64) {
	clear(buf)
}

// CopyInto copies as much of src as fits into dst and returns the number
// of elements copied.
func CopyInto(dst, src []float64) int {
	return copy(dst, src)
}
