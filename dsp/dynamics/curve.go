package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dynamics/dsp/core"
)

const (
	// Parameter validation ranges shared by curve-carrying processors.
	minThresholdDB = -120.0
	maxThresholdDB = 20.0
	minRatio       = 1.0
	maxRatio       = 100.0
	minKneeDB      = 0.0
	maxKneeDB      = 24.0

	// log2Of10Div20 is the conversion factor for dB to log2: log2(10) / 20.
	// Used for converting decibel values to log2 domain.
	log2Of10Div20 = 0.166096404744
)

// CurveFamily selects the static transfer-curve form.
type CurveFamily int

const (
	// FamilyCompressor applies ratio-controlled gain reduction above threshold.
	FamilyCompressor CurveFamily = iota
	// FamilyLimiter caps level at threshold (ratio treated as infinite).
	// The limiter curve is hard-knee by definition.
	FamilyLimiter
)

// KneePolicy selects how the soft-knee region interpolates between
// "no reduction" at the lower knee edge and the hard-knee curve at the
// upper knee edge. The knee region is symmetric around the threshold:
// [threshold - knee/2, threshold + knee/2].
type KneePolicy int

const (
	// KneeQuadratic interpolates the gain-reduction value quadratically
	// across the knee: zero value and slope at the lower edge, hard-knee
	// value and slope at the upper edge. This is the default.
	KneeQuadratic KneePolicy = iota
	// KneeExponentLerp interpolates the compression exponent 1/ratio
	// linearly across the knee, with the power law anchored at the
	// threshold. Continuous at both knee edges; attenuation begins at the
	// threshold rather than the lower knee edge.
	KneeExponentLerp
)

// TransferCurve is the static gain computer: it maps an instantaneous peak
// level to a target linear gain-reduction factor in (0, 1]. It holds no
// per-sample state; derived log2-domain terms are cached and recomputed on
// parameter change.
//
// Levels are floored at core.MinLinear before conversion, so silence maps
// to a finite level far below any admissible threshold and yields gain 1.
type TransferCurve struct {
	family      CurveFamily
	policy      KneePolicy
	thresholdDB float64
	ratio       float64
	kneeDB      float64

	// Cached log2-domain terms
	thresholdLog2    float64
	kneeWidthLog2    float64
	invKneeWidthLog2 float64
	slope            float64 // 1 - 1/ratio; 1 for the limiter family
}

// NewTransferCurve creates a transfer curve of the given family with
// defaults threshold -10 dB, ratio 4:1, knee 3 dB (compressor) / 0 dB
// (limiter), quadratic knee policy.
func NewTransferCurve(family CurveFamily) (*TransferCurve, error) {
	if family != FamilyCompressor && family != FamilyLimiter {
		return nil, fmt.Errorf("invalid curve family: %d", family)
	}

	tc := &TransferCurve{
		family:      family,
		policy:      KneeQuadratic,
		thresholdDB: -10.0,
		ratio:       4.0,
		kneeDB:      3.0,
	}
	if family == FamilyLimiter {
		tc.kneeDB = 0
	}

	tc.recalculate()

	return tc, nil
}

// SetThreshold sets the threshold in dB. Attenuation begins above this level.
func (tc *TransferCurve) SetThreshold(dB float64) error {
	if dB < minThresholdDB || dB > maxThresholdDB || !isFinite(dB) {
		return fmt.Errorf("threshold must be in [%g, %g]: %f", minThresholdDB, maxThresholdDB, dB)
	}

	tc.thresholdDB = dB
	tc.recalculate()

	return nil
}

// SetRatio sets the compression ratio. Ratio 1 means no compression.
// Out-of-range values are rejected, never silently corrected.
func (tc *TransferCurve) SetRatio(ratio float64) error {
	if ratio < minRatio || ratio > maxRatio || !isFinite(ratio) {
		return fmt.Errorf("ratio must be in [%g, %g]: %f", minRatio, maxRatio, ratio)
	}

	tc.ratio = ratio
	tc.recalculate()

	return nil
}

// SetKneeWidth sets the soft-knee width in dB. Zero selects a hard knee.
func (tc *TransferCurve) SetKneeWidth(dB float64) error {
	if dB < minKneeDB || dB > maxKneeDB || !isFinite(dB) {
		return fmt.Errorf("knee width must be in [%g, %g]: %f", minKneeDB, maxKneeDB, dB)
	}

	tc.kneeDB = dB
	tc.recalculate()

	return nil
}

// SetPolicy selects the soft-knee interpolation policy.
func (tc *TransferCurve) SetPolicy(policy KneePolicy) error {
	if policy != KneeQuadratic && policy != KneeExponentLerp {
		return fmt.Errorf("invalid knee policy: %d", policy)
	}

	tc.policy = policy

	return nil
}

// Family returns the curve family.
func (tc *TransferCurve) Family() CurveFamily { return tc.family }

// Policy returns the soft-knee interpolation policy.
func (tc *TransferCurve) Policy() KneePolicy { return tc.policy }

// Threshold returns the threshold in dB.
func (tc *TransferCurve) Threshold() float64 { return tc.thresholdDB }

// Ratio returns the compression ratio.
func (tc *TransferCurve) Ratio() float64 { return tc.ratio }

// KneeWidth returns the knee width in dB.
func (tc *TransferCurve) KneeWidth() float64 { return tc.kneeDB }

// TargetGain maps one instantaneous peak level (linear) to the target
// gain-reduction factor in (0, 1].
func (tc *TransferCurve) TargetGain(peak float64) float64 {
	if peak < core.MinLinear {
		peak = core.MinLinear
	}

	overshoot := mathLog2(peak) - tc.thresholdLog2

	if tc.family == FamilyLimiter {
		if overshoot <= 0 {
			return 1.0
		}

		// Full reduction: output held at threshold.
		return mathPower2(-overshoot)
	}

	// Ratio 1:1 is the identity curve.
	if tc.slope == 0 {
		return 1.0
	}

	if tc.kneeDB <= 0 {
		if overshoot <= 0 {
			return 1.0
		}

		return mathPower2(-overshoot * tc.slope)
	}

	halfWidth := tc.kneeWidthLog2 * 0.5
	if overshoot < -halfWidth {
		return 1.0
	}

	if overshoot > halfWidth {
		return mathPower2(-overshoot * tc.slope)
	}

	var gainLog2 float64

	switch tc.policy {
	case KneeExponentLerp:
		// Exponent interpolated linearly across the knee, anchored at the
		// threshold. Inside [kneeStart, threshold] the raw formula would
		// boost, so the reduction is clamped at zero.
		gainLog2 = -tc.slope * (overshoot + halfWidth) * overshoot * tc.invKneeWidthLog2
		if gainLog2 > 0 {
			gainLog2 = 0
		}
	default: // KneeQuadratic
		// Effective overshoot (o + w/2)^2 / (2w): zero value and slope at
		// the lower edge, hard-knee value and slope at the upper edge.
		scratch := overshoot + halfWidth
		gainLog2 = -tc.slope * scratch * scratch * 0.5 * tc.invKneeWidthLog2
	}

	return mathPower2(gainLog2)
}

// TargetTrack fills dst with the target gain reduction for each peak value.
// dst is grown as needed and returned.
func (tc *TransferCurve) TargetTrack(dst, peaks []float64) []float64 {
	dst = core.EnsureLen(dst, len(peaks))
	for i, p := range peaks {
		dst[i] = tc.TargetGain(p)
	}

	return dst
}

// recalculate refreshes the cached log2-domain terms.
func (tc *TransferCurve) recalculate() {
	tc.thresholdLog2 = tc.thresholdDB * log2Of10Div20

	tc.kneeWidthLog2 = tc.kneeDB * log2Of10Div20
	if tc.kneeDB > 0 {
		tc.invKneeWidthLog2 = 1.0 / tc.kneeWidthLog2
	} else {
		tc.invKneeWidthLog2 = 0
	}

	if tc.family == FamilyLimiter {
		tc.slope = 1.0
	} else {
		tc.slope = 1.0 - 1.0/tc.ratio
	}
}

func isFinite(v float64) bool {
	return !(math.IsNaN(v) || math.IsInf(v, 0))
}
