// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package decoders

import (
	"periph.io/x/periph/trigger"
	"periph.io/x/periph/trigger/toothlog"
)

// DualWheel decodes a crank wheel with Config.TriggerTeeth evenly spaced
// teeth and no missing-tooth gap, synchronized by a once-per-revolution
// cam reference on the secondary input. See spec.md §4.8.
type DualWheel struct {
	Cfg Config
	Log *toothlog.Logger

	State trigger.State
	rpm   uint16
}

var _ trigger.Decoder = (*DualWheel)(nil)

// Setup implements trigger.Decoder.
func (d *DualWheel) Setup() {
	d.State.Reset()

	degreesPerPattern := uint16(360)
	if d.Cfg.TrigSpeed == trigger.CamSpeed {
		degreesPerPattern = 720
	}
	if d.Cfg.TriggerTeeth != 0 {
		d.State.TriggerToothAngle = degreesPerPattern / d.Cfg.TriggerTeeth
	}
	d.State.TriggerAngleOffset = d.Cfg.TriggerAngle
	d.State.TriggerActualTeeth = d.Cfg.TriggerTeeth
	d.State.PatternTeeth = d.Cfg.TriggerTeeth

	revAt50 := uint32(trigger.UsInMinute / 50)
	if d.Cfg.TrigSpeed == trigger.CamSpeed {
		revAt50 *= 2
	}
	d.State.MaxStallTime = revAt50

	if d.Cfg.Sequential {
		d.State.DecoderFlags.Set(trigger.FlagIsSequential)
	}
	d.rpm = 0
}

// Primary implements trigger.Decoder. See spec.md §4.8.
func (d *DualWheel) Primary(curTime uint32) {
	d.State.CS.Enter(func() {
		last := d.State.ToothLastToothTime
		var curGap uint32
		if last != 0 {
			curGap = curTime - last
			if !accept(curGap, d.State.TriggerFilterTime) {
				return
			}
		}

		d.State.ToothCurrentCount++
		d.State.DecoderFlags.Set(trigger.FlagValidTrigger)

		if d.State.HasSync && d.State.ToothCurrentCount > d.State.PatternTeeth {
			d.State.ToothCurrentCount = 1
			d.State.RevolutionOne = !d.State.RevolutionOne
			d.State.ToothOneMinusOneTime = d.State.ToothOneTime
			d.State.ToothOneTime = curTime
			if d.Cfg.TrigSpeed == trigger.CamSpeed {
				d.State.StartRevolutions += 2
			} else {
				d.State.StartRevolutions++
			}
		}

		if last != 0 {
			d.State.TriggerFilterTime = trigger.SetFilter(d.Cfg.TriggerFilter, curGap)
		}
		d.State.ToothLastMinusOneToothTime = last
		d.State.ToothLastToothTime = curTime

		if d.Log != nil {
			d.Log.LogTooth(curGap)
		}
	})
}

// Secondary implements trigger.Decoder. See spec.md §4.8.
func (d *DualWheel) Secondary(curTime uint32) {
	d.State.CS.Enter(func() {
		last := d.State.ToothLastSecToothTime
		var curGap uint32
		if last != 0 {
			curGap = curTime - last
		}
		if last != 0 && !accept(curGap, d.State.TriggerSecFilterTime) {
			d.State.TriggerSecFilterTime = d.currentRevTimeLocked() / 2
			return
		}

		if !d.State.HasSync || d.State.StartRevolutions <= d.Cfg.StgCycles {
			d.State.ToothCurrentCount = d.State.PatternTeeth
			d.backdateFor10RPMLocked()
			d.State.TriggerFilterTime = 0
			d.State.HasSync = true
		} else if d.State.ToothCurrentCount != d.State.PatternTeeth && d.State.StartRevolutions > 2 {
			d.State.SyncLossCounter++
			if d.Cfg.UseResync {
				d.State.ToothCurrentCount = d.State.PatternTeeth
			}
		}

		d.State.RevolutionOne = true
		d.State.TriggerSecFilterTime = trigger.SetSecFilter(curGap, 1, 4)
		d.State.ToothLastMinusOneSecToothTime = last
		d.State.ToothLastSecToothTime = curTime
	})
}

// currentRevTimeLocked estimates the time for one full primary revolution
// from the most recent tooth-to-tooth gap. Must be called with State.CS
// held.
func (d *DualWheel) currentRevTimeLocked() uint32 {
	gap := d.State.ToothLastToothTime - d.State.ToothLastMinusOneToothTime
	return gap * uint32(d.State.PatternTeeth)
}

// backdateFor10RPMLocked sets ToothLastMinusOneToothTime so that a
// cranking RPM estimate computed immediately after a hard resync reads
// exactly 10 RPM, a safe floor rather than an undefined spike. Must be
// called with State.CS held.
func (d *DualWheel) backdateFor10RPMLocked() {
	if d.State.PatternTeeth == 0 {
		return
	}
	revTimeFor10RPM := uint32(trigger.UsInMinute / 10)
	gap := revTimeFor10RPM / uint32(d.State.PatternTeeth)
	d.State.ToothLastMinusOneToothTime = d.State.ToothLastToothTime - gap
}

// GetRPM implements trigger.Decoder.
func (d *DualWheel) GetRPM() uint16 {
	degreesOver := uint16(360)
	if d.Cfg.TrigSpeed == trigger.CamSpeed {
		degreesOver = 720
	}
	if d.rpm < d.Cfg.CrankRPM {
		d.rpm = trigger.CrankingGetRPM(&d.State, d.Cfg.TriggerTeeth, degreesOver, d.Cfg.StgCycles, d.rpm)
	} else {
		d.rpm = trigger.StdGetRPM(&d.State, degreesOver, d.Cfg.CrankRPM, d.rpm)
	}
	return d.rpm
}

// GetCrankAngle implements trigger.Decoder.
func (d *DualWheel) GetCrankAngle(now uint32) int32 {
	var gap uint32
	d.State.CS.Enter(func() {
		gap = d.State.ToothLastToothTime - d.State.ToothLastMinusOneToothTime
	})
	params := trigger.CrankAngleParams{
		ToothAngle:    d.State.TriggerToothAngle,
		AngleOffset:   d.State.TriggerAngleOffset,
		CrankAngleMax: d.Cfg.crankAngleMax(),
		Sequential:    d.Cfg.Sequential,
		Speed:         d.Cfg.TrigSpeed,
		IntervalRevUs: uint32(d.State.PatternTeeth) * gap,
	}
	return trigger.GetCrankAngle(&d.State, now, params)
}

// EffectiveTooth mirrors MissingTooth.EffectiveTooth for the dual-wheel
// geometry, where there is no missing-tooth gap to fold around.
func (d *DualWheel) EffectiveTooth() uint16 {
	if d.Cfg.Sequential && d.Cfg.TrigSpeed == trigger.CrankSpeed && d.State.RevolutionOne {
		return d.State.PatternTeeth + d.State.ToothCurrentCount
	}
	return d.State.ToothCurrentCount
}

// SetEndTeeth implements trigger.Decoder. There is no missing-tooth slot
// to avoid, so the fold is the general-purpose reduction-into-period
// rule of spec.md §4.7 with A == PatternTeeth.
func (d *DualWheel) SetEndTeeth() {
	period := d.State.PatternTeeth
	var extra uint16
	if d.Cfg.Sequential && d.Cfg.TrigSpeed == trigger.CrankSpeed {
		period = d.State.PatternTeeth * 2
		extra = d.State.PatternTeeth
	}
	for n := 0; n < trigger.IgnChannels; n++ {
		if d.State.TriggerToothAngle == 0 {
			continue
		}
		tempEnd := (int32(d.Cfg.EndAngle[n])-int32(d.Cfg.TriggerAngle))/int32(d.State.TriggerToothAngle) - 1
		d.State.IgnitionEndTooth[n] = foldEndTooth(tempEnd, period, d.State.PatternTeeth, d.State.PatternTeeth, extra)
	}
}
