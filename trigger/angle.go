// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trigger

// AngleInterpolator converts an elapsed time since the last tooth into a
// fraction-of-a-tooth angle, given the time a full revolution is currently
// taking. It stands in for the external timeToAngle/fastDegreesToUS
// crank-math helpers the specification places out of scope for this
// module: this package only needs *a* monotonic, zero-at-zero mapping from
// elapsed microseconds to degrees, not the fixed-point table the real
// firmware uses to avoid a hardware divide.
type AngleInterpolator func(elapsedUs, intervalRevUs uint32) uint16

// LinearInterpolator is the default AngleInterpolator: degrees elapsed is
// elapsedUs*360/intervalRevUs, wrapped modulo 360 into [0,360). It uses a 64-bit
// intermediate to avoid overflow and a single integer division, matching
// the "no floating point on the hot path" discipline; it is not the
// fixed-point table the original firmware substitutes to dodge a hardware
// divide, since Go's target here always has one.
func LinearInterpolator(elapsedUs, intervalRevUs uint32) uint16 {
	if intervalRevUs == 0 {
		return 0
	}
	deg := (uint64(elapsedUs) * 360) / uint64(intervalRevUs)
	return uint16(deg % 360)
}

// CrankAngleParams bundles the decoder-variant-specific constants needed to
// reconstruct crank angle, so GetCrankAngle has one signature shared by
// every decoder in trigger/decoders.
type CrankAngleParams struct {
	ToothAngle       uint16 // degrees per logical tooth (already divided by any angle multiplier)
	AngleOffset      uint16 // triggerAngleOffset
	CrankAngleMax    uint16 // 360 or 720 depending on sequential configuration
	Sequential       bool
	Speed            TriggerSpeed
	IntervalRevUs    uint32 // current estimate of time for one full revolution, for interpolation
	Interpolate      AngleInterpolator
}

// GetCrankAngle reconstructs the current crank angle after top-dead-center
// from the last seen tooth, interpolating the fraction of a tooth elapsed
// since then.
func GetCrankAngle(s *State, now uint32, p CrankAngleParams) int32 {
	snap := s.Snapshot()
	interp := p.Interpolate
	if interp == nil {
		interp = LinearInterpolator
	}

	var base int32
	if snap.ToothCurrentCount > 0 {
		base = int32(snap.ToothCurrentCount-1)*int32(p.ToothAngle) + int32(p.AngleOffset)
	} else {
		base = int32(p.AngleOffset)
	}
	if p.Sequential && snap.RevolutionOne && p.Speed == CrankSpeed {
		base += 360
	}

	elapsed := now - snap.ToothLastToothTime
	base += int32(interp(elapsed, p.IntervalRevUs))

	return normalizeAngle(base, int32(p.CrankAngleMax))
}

func normalizeAngle(angle, max int32) int32 {
	if max <= 0 {
		return 0
	}
	angle %= max
	if angle < 0 {
		angle += max
	}
	return angle
}
