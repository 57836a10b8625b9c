package core

import "math"

const defaultEpsilon = 1e-12

// MinLinear is the smallest linear amplitude considered distinguishable
// from silence. Level-to-dB conversions in gain computation floor their
// input at this value so that silent material maps to a finite, very low
// level (-200 dB) instead of -Inf.
const MinLinear = 1e-10

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// LinearToDBFloored converts linear amplitude to dB with the input floored
// at MinLinear, so the result is always finite. Use this on signal levels
// and gain-reduction values that may legitimately be zero.
func LinearToDBFloored(linear float64) float64 {
	if linear < MinLinear {
		linear = MinLinear
	}

	return 20 * math.Log10(linear)
}
