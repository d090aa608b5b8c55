// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trigger

// Decoder is the contract every trigger wheel pattern implements: missing-
// tooth, dual-wheel, basic distributor, and non-360 dual (see
// trigger/decoders). The source firmware selects the active decoder by
// assigning six function pointers at configuration time; here that
// becomes an ordinary Go interface, which a caller holds as a single value
// and dispatches through with no per-edge cost beyond the interface's one
// indirect call, i.e. the tag-match the specification calls for.
//
// Setup must not depend on any state left over from a previous
// configuration: callers always get a fresh, zeroed decoder value before
// calling Setup, so decoders only need to initialize the fields their
// pattern actually uses.
//
// Primary and Secondary run in interrupt context: they must not allocate,
// block, or take longer than the edge-to-edge budget at MaxRPM. Both
// receive every edge's timestamp and apply the edge filter themselves:
// they consult and update the decoder's own filter thresholds and drop an
// edge that arrives too soon (see trigger/decoders).
type Decoder interface {
	// Setup initializes tooth geometry, filter thresholds, and stall timeout
	// from configuration. Called once at boot and whenever configuration
	// changes.
	Setup()

	// Primary processes one accepted edge of the crank signal.
	Primary(curTime uint32)

	// Secondary processes one accepted edge of the cam signal. Decoders with
	// no secondary input (basic distributor) make this a no-op.
	Secondary(curTime uint32)

	// GetRPM returns the current RPM estimate, or 0 when not synced or on
	// insufficient data.
	GetRPM() uint16

	// GetCrankAngle returns degrees after top-dead-center, in
	// [0, CrankAngleMax).
	GetCrankAngle(now uint32) int32

	// SetEndTeeth recomputes every channel's ignition end-tooth index from
	// its configured end angle. Called from mainline after spark advance is
	// recomputed.
	SetEndTeeth()
}
