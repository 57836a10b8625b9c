// Package dynamics implements single-band audio dynamics processing:
// a compressor and a peak limiter built from three composable pieces.
//
// Per processed block the signal flows one direction:
//
//	signal → peak track → target gain-reduction track → smoothed track → signal × gain
//
// PeakTrack reduces a multichannel block to one peak magnitude per sample.
// TransferCurve maps instantaneous level to a target linear gain-reduction
// factor (hard or soft knee, compressor or limiter form). EnvelopeFollower
// smooths the target track with asymmetric attack/release one-pole filters
// and carries its state across block boundaries, so feeding consecutive
// blocks through one processor instance is equivalent to processing the
// concatenated signal in one call.
//
// Processors are not thread-safe; one goroutine owns an instance. Metering
// snapshots are published atomically and may be polled from a second
// goroutine. For reentrant multi-stream use over a shared parameter set,
// use the explicit-seed forms (ProcessSeeded, SmoothSeeded).
package dynamics
