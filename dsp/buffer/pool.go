package buffer

import "sync"

// Pool recycles Buffers through a sync.Pool so per-chunk plane staging in
// a processing loop does not churn the garbage collector.
type Pool struct {
	pool sync.Pool
}

// NewPool returns an empty pool; Buffers are created on demand.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any { return &Buffer{} },
		},
	}
}

// Get returns a zeroed Buffer of the requested length. Return it with Put
// when the chunk is done.
func (p *Pool) Get(length int) *Buffer {
	b := p.pool.Get().(*Buffer)
	b.Resize(length)
	b.Zero()

	return b
}

// Put hands b back for reuse. The caller must drop all references to it;
// nil is ignored.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}

	p.pool.Put(b)
}
