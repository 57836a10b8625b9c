package reduction_test

import (
	"fmt"

	"github.com/cwbudde/algo-dynamics/dsp/dynamics"
	"github.com/cwbudde/algo-dynamics/measure/reduction"
)

// ExampleMeter demonstrates metering a compressor run.
func ExampleMeter() {
	comp, _ := dynamics.NewCompressor(48000)
	_ = comp.SetThreshold(-20.0)
	_ = comp.SetKneeWidth(0)
	_ = comp.SetAttack(0)

	meter := reduction.NewMeter(reduction.WithChannels(1))

	input := [][]float64{make([]float64, 64)}
	for i := range input[0] {
		input[0][i] = 1.0
	}

	output, err := comp.Process(nil, input)
	if err != nil {
		panic(err)
	}

	reductionDB, err := comp.GainReductionDB(nil)
	if err != nil {
		panic(err)
	}

	if err := meter.Process(input, output, reductionDB); err != nil {
		panic(err)
	}

	m := meter.Metrics()
	fmt.Printf("Input peak: %.1f dB\n", m.InputPeakDB)
	fmt.Printf("Max reduction: %.1f dB\n", m.MaxReductionDB)
	fmt.Printf("Blocks: %d\n", m.Blocks)
	// Output:
	// Input peak: 0.0 dB
	// Max reduction: -15.0 dB
	// Blocks: 1
}
