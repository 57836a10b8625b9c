package chain_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dynamics/dsp/chain"
	"github.com/cwbudde/algo-dynamics/dsp/dynamics"
)

// ExampleChain demonstrates a mastering-style chain: a gentle compressor
// followed by a safety limiter, configured by name.
func ExampleChain() {
	comp, _ := dynamics.NewCompressor(48000)
	lim, _ := dynamics.NewLimiter(48000)

	c := chain.NewChain()
	c.Append("glue", comp)
	c.Append("safety", lim)

	stage, _ := c.Stage("glue")
	if err := chain.Configure(stage, chain.Params{
		"threshold": -18.0,
		"ratio":     2.0,
		"makeup":    3.0,
	}); err != nil {
		panic(err)
	}

	block := [][]float64{make([]float64, 512)}
	for i := range block[0] {
		block[0][i] = 0.7 * math.Sin(2*math.Pi*110*float64(i)/48000)
	}

	if err := c.Process(block); err != nil {
		panic(err)
	}

	fmt.Printf("Stages: %d\n", c.Len())
	fmt.Printf("Compressor threshold: %.1f dB\n", comp.Threshold())
	// Output:
	// Stages: 2
	// Compressor threshold: -18.0 dB
}
