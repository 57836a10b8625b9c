// Package chain runs dynamics processors as a sequential effect chain with
// named-parameter configuration, e.g. a mastering compressor feeding a
// peak limiter.
package chain

import "fmt"

// Processor is the per-block contract a chain stage must satisfy.
// Both dynamics.Compressor and dynamics.Limiter implement it.
type Processor interface {
	ProcessInPlace(block [][]float64) error
	Reset()
}

// Stage is one named processor in a chain.
type Stage struct {
	Name string
	Proc Processor
}

// Chain applies its stages to each block in order. Like the processors it
// holds, a chain is single-owner and not thread-safe.
type Chain struct {
	stages []Stage
}

// NewChain returns an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Append adds a stage at the end of the chain.
func (c *Chain) Append(name string, proc Processor) {
	c.stages = append(c.stages, Stage{Name: name, Proc: proc})
}

// Process runs the block through every stage in order. On failure the
// returned error names the stage; the block may be partially processed.
func (c *Chain) Process(block [][]float64) error {
	for _, stage := range c.stages {
		err := stage.Proc.ProcessInPlace(block)
		if err != nil {
			return fmt.Errorf("chain: stage %q: %w", stage.Name, err)
		}
	}

	return nil
}

// Reset resets every stage.
func (c *Chain) Reset() {
	for _, stage := range c.stages {
		stage.Proc.Reset()
	}
}

// Stage returns the stage with the given name.
func (c *Chain) Stage(name string) (Stage, bool) {
	for _, stage := range c.stages {
		if stage.Name == name {
			return stage, true
		}
	}

	return Stage{}, false
}

// Len returns the number of stages.
func (c *Chain) Len() int {
	return len(c.stages)
}
