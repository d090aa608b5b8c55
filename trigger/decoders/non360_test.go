// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package decoders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"periph.io/x/periph/trigger"
)

func non360Config() Config {
	return Config{
		NCylinders:    4,
		TriggerTeeth:  45,
		TrigSpeed:     trigger.CrankSpeed,
		TriggerFilter: trigger.FilterOff,
		StgCycles:     2,
		CrankRPM:      400,
		TrigAngMul:    2,
	}
}

func TestNon360SetupScalesToothAngleByMultiplier(t *testing.T) {
	d := &Non360Dual{}
	d.Cfg = non360Config()
	d.Setup()

	// triggerToothAngle = 360*TrigAngMul/TriggerTeeth = 360*2/45 = 16.
	assert.EqualValues(t, 16, d.State.TriggerToothAngle)
}

func TestNon360GetCrankAngleDividesToothContributionByMultiplier(t *testing.T) {
	d := &Non360Dual{}
	d.Cfg = non360Config()
	d.Setup()

	now := uint32(1000)
	gap := uint32(2000)
	d.Primary(now)
	now += gap
	d.Primary(now)
	now += gap
	d.Primary(now) // ToothCurrentCount == 3

	angle := d.GetCrankAngle(now)
	assert.GreaterOrEqual(t, angle, int32(0))
	assert.Less(t, angle, int32(d.Cfg.crankAngleMax()))
}

func TestNon360FallsBackToMultiplierOneWhenUnset(t *testing.T) {
	cfg := non360Config()
	cfg.TrigAngMul = 0
	d := &Non360Dual{DualWheel: DualWheel{Cfg: cfg}}
	d.Setup()

	// With TrigAngMul unset, Setup must not divide by zero and must behave
	// as multiplier 1.
	assert.EqualValues(t, 360/cfg.TriggerTeeth, d.State.TriggerToothAngle)
}
