// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package decoders

import (
	"periph.io/x/periph/trigger"
	"periph.io/x/periph/trigger/toothlog"
)

// minDistributorStallTime is the 366667 microsecond floor on MaxStallTime
// from spec.md §4.9; the dynamic stall time (twice the last 720-degree
// cycle time) never drops below it.
const minDistributorStallTime = 366667

// CoilEnder ends a running ignition coil charge immediately. It is the
// hook BasicDistributor uses for ignCranklock, which locks spark timing
// to the mechanical distributor reference while cranking.
type CoilEnder interface {
	EndCharge(channel int)
}

// BasicDistributor decodes a single wheel mounted on the camshaft with
// one tooth per cylinder, evenly spaced (tooth angle 720/NCylinders).
// There is no secondary input and no real synchronization reference:
// "sync" is declared the moment two teeth have been seen. See spec.md
// §4.9.
type BasicDistributor struct {
	Cfg Config
	Log *toothlog.Logger
	// Coils, if non-nil, is invoked to end all running ignition charges
	// immediately on every tooth while Cfg.IgnCranklock is set and the
	// engine is cranking.
	Coils CoilEnder

	State trigger.State
	rpm   uint16

	cranking bool
}

var _ trigger.Decoder = (*BasicDistributor)(nil)

// SetCranking records whether the engine is currently cranking, for the
// ignCranklock coil-end behavior.
func (b *BasicDistributor) SetCranking(cranking bool) { b.cranking = cranking }

// Setup implements trigger.Decoder.
func (b *BasicDistributor) Setup() {
	b.State.Reset()
	n := uint16(b.Cfg.NCylinders)
	b.State.PatternTeeth = n
	b.State.TriggerActualTeeth = n
	if n != 0 {
		b.State.TriggerToothAngle = 720 / n
	}
	b.State.TriggerAngleOffset = b.Cfg.TriggerAngle
	b.State.MaxStallTime = minDistributorStallTime
	if b.Cfg.Sequential {
		b.State.DecoderFlags.Set(trigger.FlagIsSequential)
	}
	b.rpm = 0
	b.cranking = false
}

// Primary implements trigger.Decoder. See spec.md §4.9.
func (b *BasicDistributor) Primary(curTime uint32) {
	b.State.CS.Enter(func() {
		last := b.State.ToothLastToothTime
		var curGap uint32
		if last != 0 {
			curGap = curTime - last
			if !accept(curGap, b.State.TriggerFilterTime) {
				return
			}
		}

		n := b.State.PatternTeeth
		if b.State.ToothCurrentCount == n || !b.State.HasSync {
			b.State.ToothCurrentCount = 1
			if last != 0 {
				if !b.State.HasSync {
					b.State.HasSync = true
				}
				b.State.StartRevolutions++
				b.State.ToothOneMinusOneTime = b.State.ToothOneTime
				b.State.ToothOneTime = curTime
			}
		} else {
			b.State.ToothCurrentCount++
			if b.State.HasSync && b.State.ToothCurrentCount > n {
				b.State.HasSync = false
				b.State.SyncLossCounter++
			}
		}
		b.State.DecoderFlags.Set(trigger.FlagValidTrigger)

		if last != 0 {
			b.State.TriggerFilterTime = trigger.SetFilter(b.Cfg.TriggerFilter, curGap)
			revTime := curGap * uint32(n)
			stall := revTime * 2
			if stall < minDistributorStallTime {
				stall = minDistributorStallTime
			}
			b.State.MaxStallTime = stall
		}
		b.State.ToothLastMinusOneToothTime = last
		b.State.ToothLastToothTime = curTime

		if b.Log != nil {
			b.Log.LogTooth(curGap)
		}

		if b.Cfg.IgnCranklock && b.cranking && b.Coils != nil {
			for ch := 1; ch <= int(b.Cfg.NCylinders); ch++ {
				b.Coils.EndCharge(ch)
			}
		}
	})
}

// Secondary implements trigger.Decoder. The basic distributor has no
// secondary input.
func (b *BasicDistributor) Secondary(uint32) {}

// EffectiveTooth folds the tooth index into the lower half of the wheel
// for per-tooth ignition, per spec.md §4.9.
func (b *BasicDistributor) EffectiveTooth() uint16 {
	half := b.State.PatternTeeth / 2
	if half > 0 && b.State.ToothCurrentCount > half {
		return b.State.ToothCurrentCount - half
	}
	return b.State.ToothCurrentCount
}

// GetRPM implements trigger.Decoder.
func (b *BasicDistributor) GetRPM() uint16 {
	if b.rpm < b.Cfg.CrankRPM {
		b.rpm = trigger.CrankingGetRPM(&b.State, b.State.PatternTeeth, 720, b.Cfg.StgCycles, b.rpm)
	} else {
		b.rpm = trigger.StdGetRPM(&b.State, 720, b.Cfg.CrankRPM, b.rpm)
	}
	return b.rpm
}

// GetCrankAngle implements trigger.Decoder.
func (b *BasicDistributor) GetCrankAngle(now uint32) int32 {
	var gap uint32
	b.State.CS.Enter(func() {
		gap = b.State.ToothLastToothTime - b.State.ToothLastMinusOneToothTime
	})
	params := trigger.CrankAngleParams{
		ToothAngle:    b.State.TriggerToothAngle,
		AngleOffset:   b.State.TriggerAngleOffset,
		CrankAngleMax: 720,
		Sequential:    b.Cfg.Sequential,
		Speed:         trigger.CamSpeed,
		IntervalRevUs: uint32(b.State.PatternTeeth) * gap,
	}
	return trigger.GetCrankAngle(&b.State, now, params)
}

// SetEndTeeth implements trigger.Decoder. With one tooth per cylinder and
// no missing-tooth gap, the end tooth is (endAngle-TriggerAngle)/
// TriggerToothAngle - 1, the same formula the missing-tooth calculator
// uses, reduced into (0, NCylinders].
func (b *BasicDistributor) SetEndTeeth() {
	if b.State.TriggerToothAngle == 0 {
		return
	}
	n := b.State.PatternTeeth
	for ch := 0; ch < trigger.IgnChannels; ch++ {
		tempEnd := (int32(b.Cfg.EndAngle[ch])-int32(b.Cfg.TriggerAngle))/int32(b.State.TriggerToothAngle) - 1
		b.State.IgnitionEndTooth[ch] = foldEndTooth(tempEnd, n, n, n, 0)
	}
}
