// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trigger

// filterFraction returns curGap scaled by the configured filter level,
// computed with a single integer multiply/shift so the hot path never
// touches a float, per the "no floating point" discipline: 25% is
// curGap>>2, 50% is curGap>>1, 75% is (curGap*3)>>2.
func filterFraction(level FilterLevel, curGap uint32) uint32 {
	switch level {
	case Filter25:
		return curGap >> 2
	case Filter50:
		return curGap >> 1
	case Filter75:
		return (curGap * 3) >> 2
	default:
		return 0
	}
}

// SetFilter recomputes the primary edge-filter threshold from the most
// recently accepted gap and the configured filter level. A level of
// FilterOff, or any unrecognized value, disables filtering (threshold 0).
//
// SetFilter applies only across the even-spaced section of a pattern; the
// missing-tooth decoders reset TriggerFilterTime to 0 immediately after
// recognizing the gap so the first post-gap tooth, whose interval is
// 1.5x-3x nominal, is never rejected by a now-stale threshold.
func SetFilter(level FilterLevel, curGap uint32) uint32 {
	return filterFraction(level, curGap)
}

// SetSecFilter is SetFilter for the secondary (cam) channel; secondary
// filter fractions are chosen per secondary pattern rather than from a
// single configured level (see trigger/decoders).
func SetSecFilter(curGap uint32, numerator, denominator uint32) uint32 {
	if denominator == 0 {
		return 0
	}
	return (curGap * numerator) / denominator
}
