// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package decoders implements the trigger-wheel pattern variants: a
// missing-tooth wheel (with an optional cam secondary), an evenly spaced
// dual wheel (crank + cam reference), a basic one-tooth-per-cylinder
// distributor, and a non-360 variant of the dual wheel. Each type
// satisfies trigger.Decoder.
package decoders

import "periph.io/x/periph/trigger"

// Config bundles every configuration-page value the specification lists as
// external input (configPage2/4/6/10) that a trigger.Decoder needs from
// Setup onward. It is produced by trigger/config for callers that load it
// from YAML, or can be built by hand for tests.
type Config struct {
	NCylinders          uint8
	TriggerTeeth        uint16 // P: logical positions on the wheel
	TriggerMissingTeeth uint8  // M: consecutive missing teeth (1 or 2)
	TriggerAngle        uint16 // triggerAngleOffset: crank angle of tooth #1
	TrigSpeed           trigger.TriggerSpeed
	TrigPatternSec      trigger.SecondaryPattern
	PollLevelPolarity   bool
	TriggerFilter       trigger.FilterLevel
	StgCycles           uint16
	CrankRPM            uint16 // cranking-RPM threshold used by StdGetRPM's guard
	PerToothIgn         bool
	IgnCranklock        bool
	UseResync           bool
	Sequential          bool // sequential (per-cylinder) vs wasted-spark/batch scheduling

	VVTEnabled     bool
	VVTClosedLoop  bool
	VVTCL0DutyAng  uint16
	AngleFilterVVT uint8 // exponential filter shift amount, 0-7

	TrigAngMul uint16 // non-360 dual wheel angle multiplier

	EndAngle [trigger.IgnChannels]uint16 // per-channel ignition end angle, degrees ATDC
}

// crankAngleMax returns 720 for sequential scheduling (the full combustion
// cycle must be disambiguated) and 360 otherwise.
func (c Config) crankAngleMax() uint16 {
	if c.Sequential {
		return 720
	}
	return 360
}
