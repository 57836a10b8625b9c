package dynamics

import "fmt"

const (
	// Default compressor parameters
	defaultCompressorThresholdDB = -10.0
	defaultCompressorRatio       = 4.0
	defaultCompressorKneeDB      = 3.0
	defaultCompressorAttackMs    = 1.0
	defaultCompressorReleaseMs   = 100.0
	defaultCompressorMakeupDB    = 0.0

	// Makeup gain validation range
	minMakeupGainDB = -24.0
	maxMakeupGainDB = 24.0
)

// Compressor attenuates signal above a threshold along a ratio-controlled
// transfer curve, with attack/release-smoothed gain applied identically to
// every channel (gain linking) and a fixed post-compression makeup gain.
//
// One instance owns one envelope state and one parameter set; it is
// reusable indefinitely and not thread-safe. Feed consecutive blocks of a
// stream through the same instance to keep the gain continuous across
// block boundaries.
type Compressor struct {
	core *processorCore

	makeupGainDB  float64
	makeupGainLin float64
}

// NewCompressor creates a compressor with defaults of -10 dB threshold,
// 4:1 ratio, 3 dB knee, 1 ms attack, 100 ms release, and no makeup gain.
// Sample rate must be positive and finite.
func NewCompressor(sampleRate float64) (*Compressor, error) {
	core, err := newProcessorCore(sampleRate, FamilyCompressor)
	if err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}

	c := &Compressor{
		core:          core,
		makeupGainDB:  defaultCompressorMakeupDB,
		makeupGainLin: 1.0,
	}

	err = c.core.curve.SetThreshold(defaultCompressorThresholdDB)
	if err == nil {
		err = c.core.curve.SetRatio(defaultCompressorRatio)
	}
	if err == nil {
		err = c.core.curve.SetKneeWidth(defaultCompressorKneeDB)
	}
	if err == nil {
		err = c.core.envelope.SetAttack(defaultCompressorAttackMs)
	}
	if err == nil {
		err = c.core.envelope.SetRelease(defaultCompressorReleaseMs)
	}
	if err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}

	return c, nil
}

// SetThreshold sets the compression threshold in dB.
// Signals above this level are attenuated.
func (c *Compressor) SetThreshold(dB float64) error {
	return c.core.curve.SetThreshold(dB)
}

// SetRatio sets the compression ratio in [1, 100]. Ratio 1 disables
// compression entirely.
func (c *Compressor) SetRatio(ratio float64) error {
	return c.core.curve.SetRatio(ratio)
}

// SetKneeWidth sets the soft-knee width in dB, in [0, 24]. Zero selects a
// hard knee.
func (c *Compressor) SetKneeWidth(dB float64) error {
	return c.core.curve.SetKneeWidth(dB)
}

// SetKneePolicy selects the soft-knee interpolation policy.
func (c *Compressor) SetKneePolicy(policy KneePolicy) error {
	return c.core.curve.SetPolicy(policy)
}

// SetAttack sets the attack time in milliseconds, in [0, 1000].
func (c *Compressor) SetAttack(ms float64) error {
	return c.core.envelope.SetAttack(ms)
}

// SetRelease sets the release time in milliseconds, in [0, 5000].
func (c *Compressor) SetRelease(ms float64) error {
	return c.core.envelope.SetRelease(ms)
}

// SetMakeupGain sets the fixed post-compression gain in dB, in [-24, 24].
func (c *Compressor) SetMakeupGain(dB float64) error {
	if dB < minMakeupGainDB || dB > maxMakeupGainDB || !isFinite(dB) {
		return fmt.Errorf("makeup gain must be in [%g, %g]: %f", minMakeupGainDB, maxMakeupGainDB, dB)
	}

	c.makeupGainDB = dB
	c.makeupGainLin = mathPower10(dB / 20.0)

	return nil
}

// SetSampleRate updates the sample rate and recalculates time constants.
func (c *Compressor) SetSampleRate(sampleRate float64) error {
	return c.core.envelope.SetSampleRate(sampleRate)
}

// Threshold returns the threshold in dB.
func (c *Compressor) Threshold() float64 { return c.core.curve.Threshold() }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.core.curve.Ratio() }

// KneeWidth returns the knee width in dB.
func (c *Compressor) KneeWidth() float64 { return c.core.curve.KneeWidth() }

// KneePolicy returns the soft-knee interpolation policy.
func (c *Compressor) KneePolicy() KneePolicy { return c.core.curve.Policy() }

// Attack returns the attack time in milliseconds.
func (c *Compressor) Attack() float64 { return c.core.envelope.Attack() }

// Release returns the release time in milliseconds.
func (c *Compressor) Release() float64 { return c.core.envelope.Release() }

// MakeupGain returns the makeup gain in dB.
func (c *Compressor) MakeupGain() float64 { return c.makeupGainDB }

// SampleRate returns the sample rate in Hz.
func (c *Compressor) SampleRate() float64 { return c.core.envelope.SampleRate() }

// ProcessInPlace compresses block in place. The block must have at least
// one channel and equal per-channel lengths; ErrInvalidInput otherwise.
func (c *Compressor) ProcessInPlace(block [][]float64) error {
	return c.core.processInPlace(block, c.makeupGainLin)
}

// Process compresses src into dst, leaving src untouched. dst channels are
// grown as needed; the result has the shape of src.
func (c *Compressor) Process(dst, src [][]float64) ([][]float64, error) {
	dst = copyBlock(dst, src)

	err := c.ProcessInPlace(dst)
	if err != nil {
		return nil, err
	}

	return dst, nil
}

// ProcessSeeded compresses block in place using seed as the previous
// smoothed gain value instead of the instance-owned envelope state, which
// is left untouched. It returns the final smoothed value to carry into the
// next block. This is the explicit, reentrant streaming form.
func (c *Compressor) ProcessSeeded(block [][]float64, seed float64) (float64, error) {
	return c.core.processSeeded(block, c.makeupGainLin, seed)
}

// GainReduction copies the most recent smoothed gain-reduction track
// (linear, makeup-free) into dst and returns it.
// Returns ErrNotProcessed before the first processing call.
func (c *Compressor) GainReduction(dst []float64) ([]float64, error) {
	return c.core.gainReduction(dst)
}

// GainReductionDB returns the most recent gain-reduction track in dB.
// Returns ErrNotProcessed before the first processing call.
func (c *Compressor) GainReductionDB(dst []float64) ([]float64, error) {
	return c.core.gainReductionDB(dst)
}

// LastGainReduction returns the smoothed gain at the final sample of the
// last processed block. Returns ErrNotProcessed before the first call.
func (c *Compressor) LastGainReduction() (float64, error) {
	return c.core.lastGainReduction()
}

// Metrics returns a metering snapshot. Safe to call from a goroutine other
// than the one processing.
func (c *Compressor) Metrics() Metrics { return c.core.metrics() }

// Reset clears envelope state and metering; the next block starts cold.
func (c *Compressor) Reset() { c.core.reset() }

// copyBlock grows dst to the shape of src and copies src into it.
func copyBlock(dst, src [][]float64) [][]float64 {
	if cap(dst) < len(src) {
		grown := make([][]float64, len(src))
		copy(grown, dst[:cap(dst)])
		dst = grown
	} else {
		dst = dst[:len(src)]
	}

	for ch, samples := range src {
		if cap(dst[ch]) < len(samples) {
			dst[ch] = make([]float64, len(samples))
		} else {
			dst[ch] = dst[ch][:len(samples)]
		}

		copy(dst[ch], samples)
	}

	return dst
}
