package dynamics

import "fmt"

const (
	// Default limiter parameters
	defaultLimiterThresholdDB = -1.0
	defaultLimiterAttackMs    = 0.1
	defaultLimiterReleaseMs   = 1.0
)

// Limiter hard-caps peak level at the threshold: the transfer curve is the
// limiter form (ratio treated as infinite, hard knee), conventionally run
// with much shorter attack/release times than a compressor and without
// makeup gain.
//
// Like Compressor, one instance owns one envelope state, is reusable
// indefinitely, and is not thread-safe.
type Limiter struct {
	core *processorCore
}

// NewLimiter creates a limiter with defaults of -1 dB threshold, 0.1 ms
// attack, and 1 ms release. Sample rate must be positive and finite.
func NewLimiter(sampleRate float64) (*Limiter, error) {
	core, err := newProcessorCore(sampleRate, FamilyLimiter)
	if err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}

	l := &Limiter{core: core}

	err = l.core.curve.SetThreshold(defaultLimiterThresholdDB)
	if err == nil {
		err = l.core.envelope.SetAttack(defaultLimiterAttackMs)
	}
	if err == nil {
		err = l.core.envelope.SetRelease(defaultLimiterReleaseMs)
	}
	if err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}

	return l, nil
}

// SetThreshold sets the limiting ceiling in dB.
func (l *Limiter) SetThreshold(dB float64) error {
	return l.core.curve.SetThreshold(dB)
}

// SetAttack sets the attack time in milliseconds, in [0, 1000].
func (l *Limiter) SetAttack(ms float64) error {
	return l.core.envelope.SetAttack(ms)
}

// SetRelease sets the release time in milliseconds, in [0, 5000].
func (l *Limiter) SetRelease(ms float64) error {
	return l.core.envelope.SetRelease(ms)
}

// SetSampleRate updates the sample rate and recalculates time constants.
func (l *Limiter) SetSampleRate(sampleRate float64) error {
	return l.core.envelope.SetSampleRate(sampleRate)
}

// Threshold returns the ceiling in dB.
func (l *Limiter) Threshold() float64 { return l.core.curve.Threshold() }

// Attack returns the attack time in milliseconds.
func (l *Limiter) Attack() float64 { return l.core.envelope.Attack() }

// Release returns the release time in milliseconds.
func (l *Limiter) Release() float64 { return l.core.envelope.Release() }

// SampleRate returns the sample rate in Hz.
func (l *Limiter) SampleRate() float64 { return l.core.envelope.SampleRate() }

// ProcessInPlace limits block in place. The block must have at least one
// channel and equal per-channel lengths; ErrInvalidInput otherwise.
func (l *Limiter) ProcessInPlace(block [][]float64) error {
	return l.core.processInPlace(block, 1.0)
}

// Process limits src into dst, leaving src untouched.
func (l *Limiter) Process(dst, src [][]float64) ([][]float64, error) {
	dst = copyBlock(dst, src)

	err := l.ProcessInPlace(dst)
	if err != nil {
		return nil, err
	}

	return dst, nil
}

// ProcessSeeded limits block in place using an explicit envelope seed,
// leaving instance state untouched. See Compressor.ProcessSeeded.
func (l *Limiter) ProcessSeeded(block [][]float64, seed float64) (float64, error) {
	return l.core.processSeeded(block, 1.0, seed)
}

// GainReduction copies the most recent smoothed gain-reduction track into
// dst. Returns ErrNotProcessed before the first processing call.
func (l *Limiter) GainReduction(dst []float64) ([]float64, error) {
	return l.core.gainReduction(dst)
}

// GainReductionDB returns the most recent gain-reduction track in dB.
// Returns ErrNotProcessed before the first processing call.
func (l *Limiter) GainReductionDB(dst []float64) ([]float64, error) {
	return l.core.gainReductionDB(dst)
}

// LastGainReduction returns the smoothed gain at the final sample of the
// last processed block. Returns ErrNotProcessed before the first call.
func (l *Limiter) LastGainReduction() (float64, error) {
	return l.core.lastGainReduction()
}

// Metrics returns a metering snapshot. Safe to call from a goroutine other
// than the one processing.
func (l *Limiter) Metrics() Metrics { return l.core.metrics() }

// Reset clears envelope state and metering; the next block starts cold.
func (l *Limiter) Reset() { l.core.reset() }
