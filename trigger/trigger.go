// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package trigger decodes crank/cam trigger wheel pulses into RPM, crank
// angle after top-dead-center, and per-cylinder ignition end-tooth indices.
//
// It is the real-time core of an engine management controller: edge
// timestamps arrive from one or more toothed wheels (mounted on the
// crankshaft and/or camshaft) and are turned into a continuously refined
// synchronization state. Concrete wheel patterns (missing-tooth, dual-wheel,
// basic distributor, non-360 dual) live in the trigger/decoders
// subpackage and all implement the Decoder interface defined here.
//
// trigger never allocates after Setup and never blocks: Primary and
// Secondary are meant to be called from the same goroutine that delivers
// hardware edges, one at a time, to completion, exactly like an interrupt
// service routine. Mainline code — anything computing RPM, crank angle or
// reading the tooth log — calls the read methods from any other goroutine;
// multi-field reads are taken under a CriticalSection so they never observe
// a torn update.
package trigger // import "periph.io/x/periph/trigger"

import "time"

// MaxRPM is the hard ceiling on any RPM value this package will report. A
// computed RPM at or above this is treated as a transient spike and the
// previous RPM is returned instead.
const MaxRPM = 9000

// UsInMinute converts a revolution time in microseconds to RPM: RPM =
// UsInMinute / revolutionTimeUs.
const UsInMinute = 60000000

// MinCyclesForEndCompare is the number of revolutions since boot, at or
// below which the per-tooth ignition patcher will not pre-stage a schedule's
// endCompare: the schedule's own timer target is still spinning up and
// staging it early would set a stale timer deadline.
const MinCyclesForEndCompare = 6

// Edge is the polarity of a hardware pulse.
type Edge uint8

// Recognized edge polarities.
const (
	EdgeRising Edge = iota
	EdgeFalling
	EdgeBoth
)

// TriggerSpeed records whether a wheel turns at crankshaft or camshaft
// speed: one revolution per 360 degrees of the combustion cycle, or one per
// 720.
type TriggerSpeed uint8

// Recognized trigger speeds.
const (
	CrankSpeed TriggerSpeed = iota
	CamSpeed
)

// FilterLevel is the configured edge-filter aggressiveness, a fraction of
// the most recently accepted gap.
type FilterLevel uint8

// Recognized filter levels.
const (
	FilterOff FilterLevel = iota
	Filter25
	Filter50
	Filter75
)

// SecondaryPattern selects which cam-wheel pattern the secondary ISR
// recognizes.
type SecondaryPattern uint8

// Recognized secondary patterns.
const (
	SecondarySingle SecondaryPattern = iota
	Secondary4Minus1
	SecondaryPoll
)

// Now is a monotonic microsecond clock in the same units the decoders'
// timestamps use. It wraps at 2^32 like the platform's micros() counter;
// the decoder package only ever subtracts two timestamps taken close
// together so wraparound is harmless in unsigned arithmetic. The decoders
// do not call it themselves: Primary, Secondary and GetCrankAngle take
// their timestamps as arguments. It is a variable, not a direct call to
// time.Now, so tests can substitute a synthetic clock.
var Now func() uint32 = monotonicMicros

var bootTime = time.Now()

func monotonicMicros() uint32 {
	return uint32(time.Since(bootTime).Microseconds())
}
