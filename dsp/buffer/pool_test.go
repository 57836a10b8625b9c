package buffer

import "testing"

// TestPoolGetReturnsZeroed verifies fresh buffers come out at the
// requested length with every sample cleared.
func TestPoolGetReturnsZeroed(t *testing.T) {
	p := NewPool()

	b := p.Get(8)
	if b.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", b.Len())
	}

	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("Samples()[%d] = %v, want 0", i, v)
		}
	}

	p.Put(b)
}

// TestPoolReuseIsZeroed verifies a recycled buffer never leaks samples
// from its previous use.
func TestPoolReuseIsZeroed(t *testing.T) {
	p := NewPool()

	b := p.Get(4)
	b.Samples()[0] = 42
	b.Samples()[1] = 43
	p.Put(b)

	b2 := p.Get(4)
	for i, v := range b2.Samples() {
		if v != 0 {
			t.Fatalf("reused Samples()[%d] = %v, want 0", i, v)
		}
	}

	p.Put(b2)
}

// TestPoolPutNilSafe verifies returning nil is a no-op.
func TestPoolPutNilSafe(_ *testing.T) {
	p := NewPool()
	p.Put(nil)
}
