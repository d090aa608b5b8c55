// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trigger

// StdGetRPM computes RPM from the time between the two most recent
// sightings of tooth #1, i.e. one full pattern revolution. It is smooth but
// lags by up to one revolution, so it is unsuitable during cranking when
// only a fraction of a revolution has elapsed.
//
// degreesOver is 360 for a single-revolution pattern or 720 for a pattern
// that spans two crank revolutions (sequential missing-tooth on a
// cam-speed wheel); crankRPM is the configured cranking-RPM threshold and
// previousRPM is the last value this function returned, used both as the
// "not yet past first revolution" guard and as the sanity-clamp fallback.
func StdGetRPM(s *State, degreesOver uint16, crankRPM, previousRPM uint16) uint16 {
	if !s.HasSync && !s.HalfSync {
		return 0
	}
	if previousRPM < crankRPM && s.StartRevolutions == 0 {
		return 0
	}
	snap := s.Snapshot()
	if snap.ToothOneTime == 0 || snap.ToothOneMinusOneTime == 0 {
		return 0
	}
	revTime := snap.ToothOneTime - snap.ToothOneMinusOneTime
	if degreesOver == 720 {
		// A cam-speed pattern repeats once per two crank revolutions, so
		// the raw tooth-one-to-tooth-one interval already covers both;
		// doubling it here (rather than the tooth count) keeps the
		// 60e6/revTime division giving crank RPM, not twice crank RPM.
		revTime *= 2
	}
	if revTime == 0 {
		return previousRPM
	}
	rpm := UsInMinute / uint64(revTime)
	if rpm >= MaxRPM {
		return previousRPM
	}
	return uint16(rpm)
}

// CrankingGetRPM computes RPM from the single most recent tooth-to-tooth
// gap, extrapolated across totalTeeth. It is volatile but available the
// instant two teeth have been seen, which is what makes it usable while
// cranking. It only becomes valid once StartRevolutions has reached
// stgCycles, the configured number of stage-cranking revolutions.
func CrankingGetRPM(s *State, totalTeeth uint16, degreesOver uint16, stgCycles uint16, previousRPM uint16) uint16 {
	if s.StartRevolutions < stgCycles {
		return 0
	}
	if !s.HasSync && !s.HalfSync {
		return 0
	}
	var gap uint32
	s.CS.Enter(func() {
		gap = s.ToothLastToothTime - s.ToothLastMinusOneToothTime
	})
	if gap == 0 {
		return previousRPM
	}
	revTime := uint64(gap) * uint64(totalTeeth)
	if degreesOver == 720 {
		revTime *= 2
	}
	if revTime == 0 {
		return previousRPM
	}
	rpm := UsInMinute / revTime
	if rpm >= MaxRPM {
		return previousRPM
	}
	return uint16(rpm)
}
