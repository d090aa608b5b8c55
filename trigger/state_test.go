// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trigger

import "testing"

func TestFlags(t *testing.T) {
	var f Flags
	if f.Has(FlagValidTrigger) {
		t.Fatal("zero value should have no flags set")
	}
	f.Set(FlagValidTrigger)
	f.Set(FlagToothAngCorrect)
	if !f.Has(FlagValidTrigger) || !f.Has(FlagToothAngCorrect) {
		t.Fatal("expected both flags set")
	}
	f.Clear(FlagValidTrigger)
	if f.Has(FlagValidTrigger) {
		t.Fatal("expected FlagValidTrigger cleared")
	}
	if !f.Has(FlagToothAngCorrect) {
		t.Fatal("clearing one flag should not affect the other")
	}
}

func TestStateSnapshotIsTornFree(t *testing.T) {
	s := &State{}
	s.ToothCurrentCount = 5
	s.ToothLastToothTime = 1000
	s.HasSync = true
	snap := s.Snapshot()
	if snap.ToothCurrentCount != 5 || snap.ToothLastToothTime != 1000 || !snap.HasSync {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestStateResetClearsISRFields(t *testing.T) {
	s := &State{}
	s.ToothCurrentCount = 12
	s.HasSync = true
	s.SyncLossCounter = 3
	s.IgnitionEndTooth[0] = 7
	s.Reset()
	if s.ToothCurrentCount != 0 || s.HasSync || s.SyncLossCounter != 0 || s.IgnitionEndTooth[0] != 0 {
		t.Fatalf("Reset left state %+v", s)
	}
}

func TestStateResetIdempotent(t *testing.T) {
	s := &State{}
	s.ToothCurrentCount = 4
	s.Reset()
	first := *s
	s.Reset()
	if *s != first {
		t.Fatalf("Reset is not idempotent: %+v vs %+v", *s, first)
	}
}
