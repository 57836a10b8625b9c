// Package reduction measures what a dynamics-processing run did to a
// signal: input and output peak levels and the deepest gain reduction
// applied, accumulated block by block over a stream.
package reduction

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dynamics/dsp/core"
)

// Meter accumulates peak and reduction statistics over successive blocks.
// Like the processors it observes, a meter is single-owner.
type Meter struct {
	sampleRate float64
	channels   int

	inputPeak      float64
	outputPeak     float64
	maxReduction   float64 // deepest gain reduction in dB, <= 0
	maxReductionAt uint64  // absolute sample index of the deepest reduction
	samples        uint64
	blocks         uint64
}

// Metrics is a snapshot of the accumulated measurement. Peak and reduction
// levels are in dB full scale; times are seconds from the start of the
// measured stream.
type Metrics struct {
	InputPeakDB    float64
	OutputPeakDB   float64
	MaxReductionDB float64
	MaxReductionAt float64
	Duration       float64
	Blocks         uint64
}

// NewMeter creates a gain-reduction meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	m := &Meter{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
	}
	m.Reset()

	return m
}

// SampleRate returns the configured sample rate in Hz.
func (m *Meter) SampleRate() float64 { return m.sampleRate }

// Channels returns the configured channel count.
func (m *Meter) Channels() int { return m.channels }

// Process accumulates one block. Input and output carry the signal before
// and after processing; reductionDB is the per-sample gain-reduction track
// in dB (values <= 0) and may be nil when only peaks are of interest.
func (m *Meter) Process(input, output [][]float64, reductionDB []float64) error {
	if len(input) != m.channels || len(output) != m.channels {
		return fmt.Errorf("reduction: expected %d channels, got input %d, output %d",
			m.channels, len(input), len(output))
	}

	for ch := range input {
		if len(input[ch]) != len(output[ch]) {
			return fmt.Errorf("reduction: channel %d length mismatch: input %d, output %d",
				ch, len(input[ch]), len(output[ch]))
		}

		if p := vecmath.MaxAbs(input[ch]); p > m.inputPeak {
			m.inputPeak = p
		}

		if p := vecmath.MaxAbs(output[ch]); p > m.outputPeak {
			m.outputPeak = p
		}
	}

	for i, dB := range reductionDB {
		if dB < m.maxReduction {
			m.maxReduction = dB
			m.maxReductionAt = m.samples + uint64(i)
		}
	}

	m.samples += uint64(len(input[0]))
	m.blocks++

	return nil
}

// Metrics returns the accumulated measurement. Peak levels are converted
// to dB full scale; silence reports the floor value, never -Inf.
// MaxReductionAt is 0 when no reduction has been observed.
func (m *Meter) Metrics() Metrics {
	return Metrics{
		InputPeakDB:    core.LinearToDBFloored(m.inputPeak),
		OutputPeakDB:   core.LinearToDBFloored(m.outputPeak),
		MaxReductionDB: m.maxReduction,
		MaxReductionAt: float64(m.maxReductionAt) / m.sampleRate,
		Duration:       float64(m.samples) / m.sampleRate,
		Blocks:         m.blocks,
	}
}

// Reset clears the accumulated statistics.
func (m *Meter) Reset() {
	m.inputPeak = 0
	m.outputPeak = 0
	m.maxReduction = 0
	m.maxReductionAt = 0
	m.samples = 0
	m.blocks = 0
}
