// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trigger

import "testing"

func TestLinearInterpolator(t *testing.T) {
	if got := LinearInterpolator(0, 36000); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
	if got := LinearInterpolator(18000, 36000); got != 180 {
		t.Errorf("got %d, want 180", got)
	}
	if got := LinearInterpolator(100, 0); got != 0 {
		t.Errorf("division guard: got %d, want 0", got)
	}
}

func TestGetCrankAngleBasic(t *testing.T) {
	s := &State{}
	s.ToothCurrentCount = 10
	s.ToothLastToothTime = 1000
	p := CrankAngleParams{
		ToothAngle:    10,
		CrankAngleMax: 360,
		IntervalRevUs: 36000,
	}
	// base = (10-1)*10 = 90 degrees, no elapsed time yet.
	if got := GetCrankAngle(s, 1000, p); got != 90 {
		t.Errorf("GetCrankAngle() = %d, want 90", got)
	}
}

func TestGetCrankAngleSequentialSecondRevolution(t *testing.T) {
	s := &State{}
	s.ToothCurrentCount = 1
	s.ToothLastToothTime = 0
	s.RevolutionOne = true
	p := CrankAngleParams{
		ToothAngle:    10,
		CrankAngleMax: 720,
		Sequential:    true,
		Speed:         CrankSpeed,
		IntervalRevUs: 36000,
	}
	if got := GetCrankAngle(s, 0, p); got != 360 {
		t.Errorf("GetCrankAngle() = %d, want 360", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	if got := normalizeAngle(400, 360); got != 40 {
		t.Errorf("normalizeAngle(400,360) = %d, want 40", got)
	}
	if got := normalizeAngle(-10, 360); got != 350 {
		t.Errorf("normalizeAngle(-10,360) = %d, want 350", got)
	}
}
