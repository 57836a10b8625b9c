package chain

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-dynamics/dsp/dynamics"
)

// failingProc always fails, to exercise error propagation.
type failingProc struct{ err error }

func (f *failingProc) ProcessInPlace(block [][]float64) error { return f.err }
func (f *failingProc) Reset()                                 {}

// countingProc records calls, to verify ordering and reset fan-out.
type countingProc struct {
	processed int
	resets    int
	order     *[]string
	name      string
}

func (p *countingProc) ProcessInPlace(block [][]float64) error {
	p.processed++
	if p.order != nil {
		*p.order = append(*p.order, p.name)
	}

	return nil
}

func (p *countingProc) Reset() { p.resets++ }

// TestChainProcessOrder verifies stages run in append order.
func TestChainProcessOrder(t *testing.T) {
	var order []string

	c := NewChain()
	c.Append("first", &countingProc{order: &order, name: "first"})
	c.Append("second", &countingProc{order: &order, name: "second"})
	c.Append("third", &countingProc{order: &order, name: "third"})

	block := [][]float64{make([]float64, 16)}
	if err := c.Process(block); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("ran %d stages, want %d", len(order), len(want))
	}

	for i, name := range want {
		if order[i] != name {
			t.Errorf("stage %d ran %q, want %q", i, order[i], name)
		}
	}
}

// TestChainProcessError verifies a failing stage stops the chain and the
// error names the stage while preserving the cause for errors.Is.
func TestChainProcessError(t *testing.T) {
	after := &countingProc{}

	c := NewChain()
	c.Append("ok", &countingProc{})
	c.Append("broken", &failingProc{err: dynamics.ErrInvalidInput})
	c.Append("after", after)

	err := c.Process([][]float64{make([]float64, 8)})
	if err == nil {
		t.Fatal("expected error from failing stage")
	}

	if !errors.Is(err, dynamics.ErrInvalidInput) {
		t.Errorf("error should wrap the cause, got %v", err)
	}

	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should name the stage, got %q", err.Error())
	}

	if after.processed != 0 {
		t.Errorf("stage after the failure ran %d times, want 0", after.processed)
	}
}

// TestChainEquivalence verifies that a chain of two processors produces the
// same output as running them manually in sequence.
func TestChainEquivalence(t *testing.T) {
	makeSignal := func() [][]float64 {
		sig := make([]float64, 512)
		for i := range sig {
			sig[i] = 0.9 * math.Sin(2*math.Pi*330*float64(i)/48000)
		}

		return [][]float64{sig}
	}

	newPair := func() (*dynamics.Compressor, *dynamics.Limiter) {
		comp, err := dynamics.NewCompressor(48000)
		if err != nil {
			t.Fatalf("NewCompressor failed: %v", err)
		}

		lim, err := dynamics.NewLimiter(48000)
		if err != nil {
			t.Fatalf("NewLimiter failed: %v", err)
		}

		return comp, lim
	}

	comp1, lim1 := newPair()
	manual := makeSignal()

	if err := comp1.ProcessInPlace(manual); err != nil {
		t.Fatalf("compressor failed: %v", err)
	}

	if err := lim1.ProcessInPlace(manual); err != nil {
		t.Fatalf("limiter failed: %v", err)
	}

	comp2, lim2 := newPair()
	c := NewChain()
	c.Append("comp", comp2)
	c.Append("limit", lim2)

	chained := makeSignal()
	if err := c.Process(chained); err != nil {
		t.Fatalf("chain failed: %v", err)
	}

	for i := range manual[0] {
		if manual[0][i] != chained[0][i] {
			t.Fatalf("sample %d differs: manual=%v chained=%v", i, manual[0][i], chained[0][i])
		}
	}
}

// TestChainReset verifies Reset reaches every stage.
func TestChainReset(t *testing.T) {
	a := &countingProc{}
	b := &countingProc{}

	c := NewChain()
	c.Append("a", a)
	c.Append("b", b)
	c.Reset()

	if a.resets != 1 || b.resets != 1 {
		t.Errorf("resets = %d, %d, want 1, 1", a.resets, b.resets)
	}
}

// TestChainStageLookup verifies Stage finds stages by name.
func TestChainStageLookup(t *testing.T) {
	proc := &countingProc{}

	c := NewChain()
	c.Append("comp", proc)

	stage, ok := c.Stage("comp")
	if !ok {
		t.Fatal("Stage should find an appended stage")
	}

	if stage.Proc != Processor(proc) {
		t.Error("Stage returned the wrong processor")
	}

	if _, ok := c.Stage("missing"); ok {
		t.Error("Stage should not find an absent name")
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

// TestChainEmpty verifies an empty chain passes blocks through untouched.
func TestChainEmpty(t *testing.T) {
	c := NewChain()

	block := [][]float64{{0.5, -0.25, 0.75}}
	if err := c.Process(block); err != nil {
		t.Fatalf("empty chain failed: %v", err)
	}

	want := []float64{0.5, -0.25, 0.75}
	for i, v := range want {
		if block[0][i] != v {
			t.Errorf("sample %d = %v, want %v", i, block[0][i], v)
		}
	}
}
