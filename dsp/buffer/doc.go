// Package buffer provides a reusable float64 buffer type and pool for
// allocation-friendly audio processing. The dynamics processors accept
// raw []float64 planes; Buffer is an optional convenience that helps
// callers stage per-channel blocks and reuse them across a stream.
package buffer
