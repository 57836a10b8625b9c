package chain

import "math"

// Params holds named numeric parameters for configuring a stage.
type Params map[string]float64

// GetNum safely extracts a parameter, returning def if missing or invalid.
func (p Params) GetNum(key string, def float64) float64 {
	v, ok := p[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}
