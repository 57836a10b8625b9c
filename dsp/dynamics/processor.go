package dynamics

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-dynamics/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Metrics is a snapshot of processor metering since the last reset.
type Metrics struct {
	LastGain       float64 // Smoothed gain at the final sample of the last block
	MinGain        float64 // Minimum smoothed gain observed (deepest reduction)
	MaxReductionDB float64 // MinGain expressed in dB
	Blocks         uint64  // Number of blocks processed
}

// processorCore orchestrates the per-block pipeline shared by Compressor and
// Limiter: peak detection, static gain computation, envelope smoothing, and
// gain application. The curve family is plain data; there is no dispatch.
//
// The smoothed gain-reduction track is retained (makeup-free) for metering.
// Meter scalars are published with atomic stores so a control goroutine may
// poll them while the owning goroutine processes; everything else is
// single-owner.
type processorCore struct {
	curve    *TransferCurve
	envelope *EnvelopeFollower

	peaks  []float64
	target []float64
	gain   []float64

	processed bool

	lastGainBits atomic.Uint64
	minGainBits  atomic.Uint64
	blocks       atomic.Uint64
}

func newProcessorCore(sampleRate float64, family CurveFamily) (*processorCore, error) {
	curve, err := NewTransferCurve(family)
	if err != nil {
		return nil, err
	}

	env, err := NewEnvelopeFollower(sampleRate)
	if err != nil {
		return nil, err
	}

	p := &processorCore{curve: curve, envelope: env}
	p.resetMeters()

	return p, nil
}

// validateBlock enforces the rank-2 shape contract: at least one channel,
// all channels of equal length. A zero-sample block is valid.
func validateBlock(block [][]float64) error {
	if len(block) == 0 {
		return fmt.Errorf("%w: block must have at least one channel", ErrInvalidInput)
	}

	n := len(block[0])
	for ch, samples := range block[1:] {
		if len(samples) != n {
			return fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrInvalidInput, ch+1, len(samples), n)
		}
	}

	return nil
}

// processInPlace runs the full pipeline on block using instance-owned
// envelope state. makeupLin scales the output after gain application; the
// retained metering track stays makeup-free.
func (p *processorCore) processInPlace(block [][]float64, makeupLin float64) error {
	err := validateBlock(block)
	if err != nil {
		return err
	}

	p.peaks = PeakTrack(p.peaks, block)
	p.target = p.curve.TargetTrack(p.target, p.peaks)
	p.gain = p.envelope.Smooth(p.gain, p.target)

	p.apply(block, makeupLin)
	p.publishMeters()
	p.processed = true

	return nil
}

// processSeeded runs the pipeline with an explicit envelope seed, leaving
// the instance-owned envelope state untouched. Returns the final smoothed
// value for the caller to carry into the next block.
func (p *processorCore) processSeeded(block [][]float64, makeupLin, seed float64) (float64, error) {
	err := validateBlock(block)
	if err != nil {
		return seed, err
	}

	if seed < 0 || seed > 1 || !isFinite(seed) {
		return seed, fmt.Errorf("envelope seed must be in [0, 1]: %f", seed)
	}

	p.peaks = PeakTrack(p.peaks, block)
	p.target = p.curve.TargetTrack(p.target, p.peaks)

	var final float64
	p.gain, final = p.envelope.SmoothSeeded(p.gain, p.target, seed)

	p.apply(block, makeupLin)
	p.publishMeters()
	p.processed = true

	return final, nil
}

func (p *processorCore) apply(block [][]float64, makeupLin float64) {
	for _, ch := range block {
		vecmath.MulBlockInPlace(ch, p.gain)

		if makeupLin != 1.0 {
			vecmath.ScaleBlockInPlace(ch, makeupLin)
		}
	}
}

// gainReduction copies the retained linear gain-reduction track into dst.
func (p *processorCore) gainReduction(dst []float64) ([]float64, error) {
	if !p.processed {
		return nil, ErrNotProcessed
	}

	dst = core.EnsureLen(dst, len(p.gain))
	core.CopyInto(dst, p.gain)

	return dst, nil
}

// gainReductionDB converts the retained track to dB (20*log10) into dst.
func (p *processorCore) gainReductionDB(dst []float64) ([]float64, error) {
	if !p.processed {
		return nil, ErrNotProcessed
	}

	dst = core.EnsureLen(dst, len(p.gain))
	for i, g := range p.gain {
		dst[i] = core.LinearToDBFloored(g)
	}

	return dst, nil
}

func (p *processorCore) lastGainReduction() (float64, error) {
	if !p.processed {
		return 0, ErrNotProcessed
	}

	return math.Float64frombits(p.lastGainBits.Load()), nil
}

func (p *processorCore) metrics() Metrics {
	minGain := math.Float64frombits(p.minGainBits.Load())

	return Metrics{
		LastGain:       math.Float64frombits(p.lastGainBits.Load()),
		MinGain:        minGain,
		MaxReductionDB: core.LinearToDBFloored(minGain),
		Blocks:         p.blocks.Load(),
	}
}

func (p *processorCore) reset() {
	p.envelope.Reset()
	p.processed = false
	p.resetMeters()
}

func (p *processorCore) resetMeters() {
	one := math.Float64bits(1.0)
	p.lastGainBits.Store(one)
	p.minGainBits.Store(one)
	p.blocks.Store(0)
}

func (p *processorCore) publishMeters() {
	if len(p.gain) > 0 {
		p.lastGainBits.Store(math.Float64bits(p.gain[len(p.gain)-1]))

		minGain := math.Float64frombits(p.minGainBits.Load())
		for _, g := range p.gain {
			if g < minGain {
				minGain = g
			}
		}

		p.minGainBits.Store(math.Float64bits(minGain))
	}

	p.blocks.Add(1)
}
