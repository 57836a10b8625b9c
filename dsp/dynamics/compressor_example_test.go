package dynamics_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dynamics/dsp/dynamics"
)

// ExampleCompressor demonstrates basic block processing.
func ExampleCompressor() {
	comp, err := dynamics.NewCompressor(48000)
	if err != nil {
		panic(err)
	}

	// One stereo block.
	block := [][]float64{
		make([]float64, 256),
		make([]float64, 256),
	}
	for i := range block[0] {
		s := 0.8 * math.Sin(2*math.Pi*440*float64(i)/48000)
		block[0][i] = s
		block[1][i] = s
	}

	if err := comp.ProcessInPlace(block); err != nil {
		panic(err)
	}

	fmt.Printf("Threshold: %.1f dB\n", comp.Threshold())
	fmt.Printf("Ratio: %.1f:1\n", comp.Ratio())
	fmt.Printf("Blocks processed: %d\n", comp.Metrics().Blocks)
	// Output:
	// Threshold: -10.0 dB
	// Ratio: 4.0:1
	// Blocks processed: 1
}

// ExampleCompressor_streaming demonstrates chunked processing: the envelope
// state carries across blocks automatically, so consecutive calls on one
// instance behave like one continuous stream.
func ExampleCompressor_streaming() {
	comp, _ := dynamics.NewCompressor(44100)

	_ = comp.SetThreshold(-12.0)
	_ = comp.SetRatio(4.0)
	_ = comp.SetAttack(1.0)
	_ = comp.SetRelease(100.0)

	signal := make([]float64, 1024)
	for i := range signal {
		signal[i] = 0.9 * math.Sin(2*math.Pi*220*float64(i)/44100)
	}

	// Feed the stream in 256-sample chunks.
	const chunk = 256
	for start := 0; start < len(signal); start += chunk {
		block := [][]float64{signal[start : start+chunk]}
		if err := comp.ProcessInPlace(block); err != nil {
			panic(err)
		}
	}

	fmt.Printf("Chunks processed: %d\n", comp.Metrics().Blocks)
	// Output:
	// Chunks processed: 4
}

// ExampleCompressor_metering demonstrates reading the gain-reduction track.
func ExampleCompressor_metering() {
	comp, _ := dynamics.NewCompressor(48000)

	_ = comp.SetThreshold(-20.0)
	_ = comp.SetKneeWidth(0)
	_ = comp.SetAttack(0) // instantaneous, for a deterministic meter value

	block := [][]float64{make([]float64, 64)}
	for i := range block[0] {
		block[0][i] = 1.0
	}

	if err := comp.ProcessInPlace(block); err != nil {
		panic(err)
	}

	db, err := comp.GainReductionDB(nil)
	if err != nil {
		panic(err)
	}

	// 0 dBFS input, -20 dB threshold, 4:1 ratio: 15 dB of reduction.
	fmt.Printf("Reduction at final sample: %.1f dB\n", db[len(db)-1])
	// Output:
	// Reduction at final sample: -15.0 dB
}
