// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package decoders

// accept applies the edge filter: an edge is rejected (returns false) if
// the gap since the last accepted edge is smaller than the current filter
// threshold. A zero threshold (filter off, or cold start with no prior
// timestamp) always accepts.
func accept(curGap, filterTime uint32) bool {
	if filterTime == 0 {
		return true
	}
	return curGap >= filterTime
}

// expFilterVVT applies a one-pole exponential filter, shift-based so it
// never touches a float: newVal is weighted in by 1/2^shift per sample.
// shift of 0 disables filtering (passes newVal through unchanged).
func expFilterVVT(prev, newVal uint16, shift uint8) uint16 {
	if shift == 0 {
		return newVal
	}
	pi, ni := int32(prev), int32(newVal)
	return uint16(pi + ((ni - pi) >> shift))
}

// foldEndTooth implements the missing-tooth end-tooth calculator's folding
// rules (spec.md §4.7): tempEnd is reduced modulo period into (0, period],
// then any position landing in the missing-tooth gap (A, patternTeeth] is
// pulled back to the last real tooth A, and anything beyond A+extraPeriod
// (the same rule applied to a second revolution, when period spans two)
// is clamped there too.
func foldEndTooth(tempEnd int32, period, patternTeeth, a, extraPeriod uint16) uint16 {
	if period == 0 {
		return a
	}
	p := int32(period)
	for tempEnd > p {
		tempEnd -= p
	}
	for tempEnd <= 0 {
		tempEnd += p
	}
	if tempEnd > int32(a) && tempEnd <= int32(patternTeeth) {
		tempEnd = int32(a)
	}
	if tempEnd > int32(a)+int32(extraPeriod) {
		tempEnd = int32(a) + int32(extraPeriod)
	}
	return uint16(tempEnd)
}

// normalizeAngle reduces angle into [0, max).
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

// gapMultiplierNumDen returns k expressed as a numerator/denominator pair
// so the missing-tooth gap-ratio test can be done with a single integer
// multiply/divide: 1.5x for a single missing tooth (3/2), or Mx (M/1) for
// two or more.
func gapMultiplierNumDen(missingTeeth uint8) (num, den uint32) {
	if missingTeeth <= 1 {
		return 3, 2
	}
	return uint32(missingTeeth), 1
}
