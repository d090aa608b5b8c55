// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdGetRPMNoSync(t *testing.T) {
	s := &State{}
	assert.Equal(t, uint16(0), StdGetRPM(s, 360, 400, 0))
}

func TestStdGetRPMGuardsBeforeFirstRevolution(t *testing.T) {
	s := &State{HasSync: true}
	// previousRPM below cranking threshold and no revolutions yet: must
	// return 0 rather than trust a spike reading.
	assert.Equal(t, uint16(0), StdGetRPM(s, 360, 400, 100))
}

func TestStdGetRPMMissingToothOneTimestamps(t *testing.T) {
	s := &State{HasSync: true, StartRevolutions: 1}
	assert.Equal(t, uint16(0), StdGetRPM(s, 360, 400, 500))
}

func TestStdGetRPM36Minus1At333RPM(t *testing.T) {
	s := &State{HasSync: true, StartRevolutions: 1}
	// 36 teeth * 5000us = 180000us per revolution -> 333 RPM.
	s.ToothOneMinusOneTime = 0
	s.ToothOneTime = 180000
	s.ToothOneMinusOneTime = 0
	// Need both non-zero; simulate second revolution.
	s.ToothOneMinusOneTime = 1
	s.ToothOneTime = 180001
	got := StdGetRPM(s, 360, 400, 500)
	assert.InDelta(t, 333, int(got), 1)
}

func TestStdGetRPM720DoublesRevolutionTime(t *testing.T) {
	s := &State{HasSync: true, StartRevolutions: 1}
	s.ToothOneMinusOneTime = 1
	s.ToothOneTime = 360001
	got360 := StdGetRPM(s, 360, 400, 500)

	// A cam-speed (720-degree) pattern cycles once per two crank
	// revolutions, so the same crank RPM shows up as half the raw
	// tooth-one interval of the 360-degree case.
	s2 := &State{HasSync: true, StartRevolutions: 1}
	s2.ToothOneMinusOneTime = 1
	s2.ToothOneTime = 180001
	got720 := StdGetRPM(s2, 720, 400, 500)

	assert.Equal(t, got360, got720, "720-degree pattern RPM should match the equivalent 360-degree crank speed")
}

func TestStdGetRPMClampsSpike(t *testing.T) {
	s := &State{HasSync: true, StartRevolutions: 1}
	s.ToothOneMinusOneTime = 1
	s.ToothOneTime = 2 // 1us revolution time -> absurd RPM
	got := StdGetRPM(s, 360, 400, 1234)
	assert.Equal(t, uint16(1234), got, "spike should fall back to previous RPM")
}

func TestCrankingGetRPMBeforeStgCycles(t *testing.T) {
	s := &State{HasSync: true, StartRevolutions: 0}
	assert.Equal(t, uint16(0), CrankingGetRPM(s, 36, 360, 2, 0))
}

func TestCrankingGetRPMTwoTooth(t *testing.T) {
	s := &State{HasSync: true, StartRevolutions: 2}
	s.ToothLastMinusOneToothTime = 0
	s.ToothLastToothTime = 5000
	// 36 teeth at 5000us gap -> 180000us/rev -> ~333 RPM.
	got := CrankingGetRPM(s, 36, 360, 2, 0)
	assert.InDelta(t, 333, int(got), 1)
}
