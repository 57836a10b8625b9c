package dynamics

import (
	"fmt"

	"github.com/cwbudde/algo-dynamics/dsp/core"
)

const (
	minEnvelopeAttackMs  = 0.0
	maxEnvelopeAttackMs  = 1000.0
	minEnvelopeReleaseMs = 0.0
	maxEnvelopeReleaseMs = 5000.0
)

// EnvelopeFollower smooths a target gain-reduction track with an asymmetric
// one-pole filter: a faster pole when reduction deepens (attack) and a
// slower pole when it recovers (release). It is strictly causal; sample i
// depends only on samples <= i.
//
// The follower carries its last smoothed value across calls to Smooth, so a
// sequence of blocks fed through one instance behaves as one continuous
// stream. SmoothSeeded is the stateless alternative for callers that manage
// the carried value themselves.
type EnvelopeFollower struct {
	sampleRate float64
	attackMs   float64
	releaseMs  float64

	attackCoeff  float64
	releaseCoeff float64

	state  float64
	primed bool
}

// NewEnvelopeFollower creates an envelope follower with defaults of
// 1 ms attack and 100 ms release. Sample rate must be positive and finite.
func NewEnvelopeFollower(sampleRate float64) (*EnvelopeFollower, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}

	e := &EnvelopeFollower{
		sampleRate: sampleRate,
		attackMs:   1.0,
		releaseMs:  100.0,
		state:      1.0,
	}
	e.updateTimeConstants()

	return e, nil
}

// SetAttack sets the attack time in milliseconds. Zero disables smoothing of
// deepening reduction (the target is taken immediately).
func (e *EnvelopeFollower) SetAttack(ms float64) error {
	if ms < minEnvelopeAttackMs || ms > maxEnvelopeAttackMs || !isFinite(ms) {
		return fmt.Errorf("attack must be in [%g, %g]: %f", minEnvelopeAttackMs, maxEnvelopeAttackMs, ms)
	}

	e.attackMs = ms
	e.updateTimeConstants()

	return nil
}

// SetRelease sets the release time in milliseconds. Zero disables smoothing
// of recovering reduction.
func (e *EnvelopeFollower) SetRelease(ms float64) error {
	if ms < minEnvelopeReleaseMs || ms > maxEnvelopeReleaseMs || !isFinite(ms) {
		return fmt.Errorf("release must be in [%g, %g]: %f", minEnvelopeReleaseMs, maxEnvelopeReleaseMs, ms)
	}

	e.releaseMs = ms
	e.updateTimeConstants()

	return nil
}

// SetSampleRate updates the sample rate and recalculates both coefficients.
func (e *EnvelopeFollower) SetSampleRate(sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}

	e.sampleRate = sampleRate
	e.updateTimeConstants()

	return nil
}

// Attack returns the attack time in milliseconds.
func (e *EnvelopeFollower) Attack() float64 { return e.attackMs }

// Release returns the release time in milliseconds.
func (e *EnvelopeFollower) Release() float64 { return e.releaseMs }

// SampleRate returns the sample rate in Hz.
func (e *EnvelopeFollower) SampleRate() float64 { return e.sampleRate }

// AttackCoeff returns the attack pole coefficient in [0, 1).
func (e *EnvelopeFollower) AttackCoeff() float64 { return e.attackCoeff }

// ReleaseCoeff returns the release pole coefficient in [0, 1).
func (e *EnvelopeFollower) ReleaseCoeff() float64 { return e.releaseCoeff }

// State returns the carried smoothed value and whether any sample has been
// smoothed since construction or the last Reset.
func (e *EnvelopeFollower) State() (float64, bool) {
	return e.state, e.primed
}

// SeedState restores a previously captured smoothed value, e.g. when
// resuming a stream on a fresh instance. The value must lie in [0, 1];
// use 1 for "no reduction".
func (e *EnvelopeFollower) SeedState(v float64) error {
	if v < 0 || v > 1 || !isFinite(v) {
		return fmt.Errorf("envelope state must be in [0, 1]: %f", v)
	}

	e.state = v
	e.primed = true

	return nil
}

// Reset clears the carried state; the next Smooth call starts cold.
func (e *EnvelopeFollower) Reset() {
	e.state = 1.0
	e.primed = false
}

// Smooth filters the target gain-reduction track into dst (grown as needed)
// and returns it, updating the carried state to the final smoothed value.
//
// The first call of a cold instance starts with smoothed[0] = target[0];
// every later call seeds from the carried state, which gives block-boundary
// continuity automatically.
func (e *EnvelopeFollower) Smooth(dst, target []float64) []float64 {
	dst = core.EnsureLen(dst, len(target))
	if len(target) == 0 {
		return dst
	}

	prev := e.state
	start := 0

	if !e.primed {
		prev = target[0]
		dst[0] = prev
		start = 1
		e.primed = true
	}

	prev = e.smoothInto(dst[start:], target[start:], prev)
	e.state = core.FlushDenormals(prev)

	return dst
}

// SmoothSeeded filters target into dst using seed as the previous sample's
// smoothed value and returns the track plus the new final value. Instance
// state is not read or written; this is the explicit, reentrant streaming
// form.
func (e *EnvelopeFollower) SmoothSeeded(dst, target []float64, seed float64) ([]float64, float64) {
	dst = core.EnsureLen(dst, len(target))
	if len(target) == 0 {
		return dst, seed
	}

	final := e.smoothInto(dst, target, seed)

	return dst, final
}

// smoothInto runs the asymmetric one-pole recurrence over target with the
// given previous value, writing into dst and returning the final value.
func (e *EnvelopeFollower) smoothInto(dst, target []float64, prev float64) float64 {
	for i, t := range target {
		if t < prev {
			// Reduction deepening: attack pole.
			prev = e.attackCoeff*prev + (1-e.attackCoeff)*t
		} else {
			// Reduction recovering or stable: release pole.
			prev = e.releaseCoeff*prev + (1-e.releaseCoeff)*t
		}

		dst[i] = prev
	}

	return prev
}

// updateTimeConstants derives the pole coefficients from the time constants.
// The time is truncated to whole samples; a sub-sample time yields
// coefficient 0, i.e. no smoothing.
func (e *EnvelopeFollower) updateTimeConstants() {
	e.attackCoeff = poleCoeff(e.attackMs, e.sampleRate)
	e.releaseCoeff = poleCoeff(e.releaseMs, e.sampleRate)
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}

func poleCoeff(ms, sampleRate float64) float64 {
	n := int(ms * sampleRate / 1000.0)
	if n <= 0 {
		return 0
	}

	return mathExp(-1.0 / float64(n))
}
