// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package decoders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func distributorConfig() Config {
	return Config{
		NCylinders: 4,
		StgCycles:  2,
		CrankRPM:   400,
	}
}

type fakeCoilEnder struct {
	ended []int
}

func (f *fakeCoilEnder) EndCharge(channel int) { f.ended = append(f.ended, channel) }

func TestBasicDistributorSetupComputesToothAngle(t *testing.T) {
	d := &BasicDistributor{Cfg: distributorConfig()}
	d.Setup()
	assert.EqualValues(t, 180, d.State.TriggerToothAngle) // 720/4
	assert.EqualValues(t, 4, d.State.PatternTeeth)
}

func TestBasicDistributorDeclaresSyncOnSecondTooth(t *testing.T) {
	d := &BasicDistributor{Cfg: distributorConfig()}
	d.Setup()

	d.Primary(1000)
	assert.False(t, d.State.HasSync, "the first tooth alone cannot establish sync")

	d.Primary(8500)
	assert.True(t, d.State.HasSync, "sync is declared once a second tooth has been seen")
}

func TestBasicDistributorWrapsAtNCylinders(t *testing.T) {
	d := &BasicDistributor{Cfg: distributorConfig()}
	d.Setup()

	now := uint32(1000)
	d.Primary(now)
	now += 7500
	d.Primary(now) // sync declared, ToothCurrentCount reset to 1

	for i := 0; i < 3; i++ {
		now += 7500
		d.Primary(now)
	}
	assert.EqualValues(t, 4, d.State.ToothCurrentCount)

	now += 7500
	d.Primary(now)
	assert.EqualValues(t, 1, d.State.ToothCurrentCount, "a full pass over N teeth wraps back to tooth 1")
}

func TestBasicDistributorEffectiveToothFoldsUpperHalf(t *testing.T) {
	d := &BasicDistributor{Cfg: distributorConfig()}
	d.Setup()
	d.State.PatternTeeth = 4
	d.State.ToothCurrentCount = 3
	assert.EqualValues(t, 1, d.EffectiveTooth(), "tooth 3 of 4 folds into the lower half as tooth 1")

	d.State.ToothCurrentCount = 2
	assert.EqualValues(t, 2, d.EffectiveTooth(), "tooth 2 of 4 is already in the lower half")
}

func TestBasicDistributorIgnCranklockEndsChargesWhileCranking(t *testing.T) {
	cfg := distributorConfig()
	cfg.IgnCranklock = true
	coils := &fakeCoilEnder{}
	d := &BasicDistributor{Cfg: cfg, Coils: coils}
	d.Setup()
	d.SetCranking(true)

	d.Primary(1000)
	assert.Len(t, coils.ended, int(cfg.NCylinders))
}

func TestBasicDistributorIgnCranklockInactiveWhenRunning(t *testing.T) {
	cfg := distributorConfig()
	cfg.IgnCranklock = true
	coils := &fakeCoilEnder{}
	d := &BasicDistributor{Cfg: cfg, Coils: coils}
	d.Setup()
	d.SetCranking(false)

	d.Primary(1000)
	assert.Empty(t, coils.ended)
}

func TestBasicDistributorStallTimeFloor(t *testing.T) {
	d := &BasicDistributor{Cfg: distributorConfig()}
	d.Setup()
	assert.EqualValues(t, minDistributorStallTime, d.State.MaxStallTime)

	now := uint32(1000)
	d.Primary(now)
	now += 7500
	d.Primary(now)
	// revolutionTime = gap*N = 7500*4 = 30000; 2x that is 60000, below the
	// 366667us floor, so the floor must still hold.
	assert.EqualValues(t, uint32(minDistributorStallTime), d.State.MaxStallTime)
}

func TestBasicDistributorGetRPM(t *testing.T) {
	d := &BasicDistributor{Cfg: distributorConfig()}
	d.Setup()

	assert.EqualValues(t, 0, d.GetRPM())

	now := uint32(1000)
	gap := uint32(7500)
	for i := 0; i < 5; i++ {
		d.Primary(now)
		now += gap
		d.Primary(now)
		now += gap + 1 // ensure a wrap edge
	}

	rpm := d.GetRPM()
	assert.Greater(t, rpm, uint16(0))
}

// TestBasicDistributorGetRPM_S5 is spec.md's S5 scenario: 4 evenly spaced
// cam edges at 7500us. After the second edge hasSync is true and GetRPM
// must report 1000 RPM: 60e6/(4x7500) gives the naive 2000 RPM a 360-degree
// pattern would imply, halved for the 720-degree (two-crank-revolution)
// span a cam-speed wheel actually covers.
func TestBasicDistributorGetRPM_S5(t *testing.T) {
	cfg := distributorConfig()
	cfg.StgCycles = 1
	d := &BasicDistributor{Cfg: cfg}
	d.Setup()

	d.Primary(1000)
	d.Primary(8500)
	assert.True(t, d.State.HasSync)
	assert.EqualValues(t, 1000, d.GetRPM())
}
