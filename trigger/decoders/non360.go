// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package decoders

import "periph.io/x/periph/trigger"

// Non360Dual is the non-360 variant of DualWheel: the wheel's tooth angle
// is scaled by Config.TrigAngMul, for wheels whose physical tooth spacing
// does not divide evenly into a 360 (or 720) degree pattern.
//
// The specification's source material leaves the non-360 primary and
// secondary handlers as empty stubs that rely on sharing the dual-wheel
// handlers at a level above the module (spec.md §9, second Open
// Question); this type makes that sharing explicit by embedding DualWheel
// and only overriding Setup and GetCrankAngle, the two operations that
// actually differ.
type Non360Dual struct {
	DualWheel
}

var _ trigger.Decoder = (*Non360Dual)(nil)

// Setup implements trigger.Decoder. TriggerToothAngle is scaled by
// Cfg.TrigAngMul, per spec.md §4.10: triggerToothAngle = (360 *
// TrigAngMul) / P.
func (n *Non360Dual) Setup() {
	n.DualWheel.Setup()
	if n.Cfg.TriggerTeeth != 0 {
		degreesPerPattern := uint32(360)
		if n.Cfg.TrigSpeed == trigger.CamSpeed {
			degreesPerPattern = 720
		}
		mul := n.Cfg.TrigAngMul
		if mul == 0 {
			mul = 1
		}
		n.State.TriggerToothAngle = uint16(degreesPerPattern * uint32(mul) / uint32(n.Cfg.TriggerTeeth))
	}
}

// GetCrankAngle implements trigger.Decoder. It reconstructs angle exactly
// as DualWheel does but divides the tooth-count contribution by
// TrigAngMul before adding the angle offset, undoing the multiplier
// Setup folded into TriggerToothAngle.
func (n *Non360Dual) GetCrankAngle(now uint32) int32 {
	mul := n.Cfg.TrigAngMul
	if mul == 0 {
		mul = 1
	}
	snap := n.State.Snapshot()

	var toothDeg int32
	if snap.ToothCurrentCount > 0 {
		toothDeg = int32(snap.ToothCurrentCount-1) * int32(n.State.TriggerToothAngle) / int32(mul)
	}
	base := toothDeg + int32(n.State.TriggerAngleOffset)
	if n.Cfg.Sequential && snap.RevolutionOne && n.Cfg.TrigSpeed == trigger.CrankSpeed {
		base += 360
	}

	var gap uint32
	n.State.CS.Enter(func() {
		gap = n.State.ToothLastToothTime - n.State.ToothLastMinusOneToothTime
	})
	interval := uint32(n.State.PatternTeeth) * gap
	elapsed := now - snap.ToothLastToothTime
	base += int32(trigger.LinearInterpolator(elapsed, interval))

	return normalizeAngle(base, int32(n.Cfg.crankAngleMax()))
}
