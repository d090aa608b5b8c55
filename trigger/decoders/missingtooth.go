// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package decoders

import (
	"periph.io/x/periph/trigger"
	"periph.io/x/periph/trigger/toothlog"
)

// MissingTooth decodes a wheel of Config.TriggerTeeth logical positions
// with Config.TriggerMissingTeeth (1 or 2) consecutive teeth physically
// absent, acting as the once-per-pattern angular reference. It supports an
// optional cam secondary in one of three patterns (4-1, single, or
// poll-level) and the VVT phase measurement that rides on it.
type MissingTooth struct {
	Cfg Config
	// Log, if non-nil, receives tooth-interval or composite diagnostic
	// entries as Primary/Secondary run.
	Log *toothlog.Logger

	State trigger.State

	a uint16 // TriggerActualTeeth: Cfg.TriggerTeeth - Cfg.TriggerMissingTeeth

	rpm            uint16
	secondaryLevel bool
	vvt1Angle      uint16
	vvt2Angle      uint16
}

var _ trigger.Decoder = (*MissingTooth)(nil)

// SetSecondaryLevel records the instantaneous level of the secondary
// (cam) input for poll-mode decoding. It has no effect for any other
// Config.TrigPatternSec.
func (m *MissingTooth) SetSecondaryLevel(high bool) {
	m.secondaryLevel = high
}

// VVT1Angle returns the most recently filtered phase angle between the
// primary cam reference and the crank reference, in half-degree units.
func (m *MissingTooth) VVT1Angle() uint16 { return m.vvt1Angle }

// VVT2Angle is VVT1Angle for a second camshaft, fed through Tertiary.
func (m *MissingTooth) VVT2Angle() uint16 { return m.vvt2Angle }

func (m *MissingTooth) crankAngleMax() uint16 { return m.Cfg.crankAngleMax() }

// Setup implements trigger.Decoder.
func (m *MissingTooth) Setup() {
	m.State.Reset()
	m.a = m.Cfg.TriggerTeeth - uint16(m.Cfg.TriggerMissingTeeth)

	degreesPerPattern := uint16(360)
	if m.Cfg.TrigSpeed == trigger.CamSpeed {
		degreesPerPattern = 720
	}
	if m.Cfg.TriggerTeeth != 0 {
		m.State.TriggerToothAngle = degreesPerPattern / m.Cfg.TriggerTeeth
	}
	m.State.TriggerAngleOffset = m.Cfg.TriggerAngle
	m.State.TriggerActualTeeth = m.a
	m.State.PatternTeeth = m.Cfg.TriggerTeeth
	m.State.TriggerFilterTime = 0
	m.State.TriggerSecFilterTime = 0

	// Stall floor: one full pattern revolution at 50 RPM. A cam-mounted
	// wheel takes two crank revolutions per pattern, so its floor is
	// doubled.
	revAt50 := uint32(trigger.UsInMinute / 50)
	if m.Cfg.TrigSpeed == trigger.CamSpeed {
		revAt50 *= 2
	}
	m.State.MaxStallTime = revAt50

	if m.Cfg.Sequential {
		m.State.DecoderFlags.Set(trigger.FlagIsSequential)
	}

	m.rpm = 0
	m.vvt1Angle = 0
	m.vvt2Angle = 0
}

// Primary implements trigger.Decoder. See spec.md §4.5.
func (m *MissingTooth) Primary(curTime uint32) {
	m.State.CS.Enter(func() {
		last := m.State.ToothLastToothTime
		var curGap uint32
		if last != 0 {
			curGap = curTime - last
			if !accept(curGap, m.State.TriggerFilterTime) {
				return
			}
		}

		m.State.ToothCurrentCount++
		m.State.DecoderFlags.Set(trigger.FlagValidTrigger)

		lastMinusOne := m.State.ToothLastMinusOneToothTime
		isGap := false
		if last != 0 && lastMinusOne != 0 {
			num, den := gapMultiplierNumDen(m.Cfg.TriggerMissingTeeth)
			targetGap := uint64(last-lastMinusOne) * uint64(num) / uint64(den)
			attempt := !m.State.HasSync || m.rpm < 2000 || m.State.ToothCurrentCount >= (3*m.a)/4
			if attempt && (uint64(curGap) > targetGap || m.State.ToothCurrentCount > m.a) {
				isGap = true
			}
		}

		if isGap {
			if m.State.ToothCurrentCount < m.a && m.State.HasSync {
				m.State.HasSync = false
				m.State.HalfSync = false
				m.State.SyncLossCounter++
			} else {
				if m.State.HasSync || m.State.HalfSync {
					if m.Cfg.TrigSpeed == trigger.CamSpeed {
						m.State.StartRevolutions += 2
					} else {
						m.State.StartRevolutions++
					}
				} else {
					m.State.StartRevolutions = 0
				}
				m.State.ToothCurrentCount = 1

				if m.Cfg.TrigPatternSec == trigger.SecondaryPoll {
					m.State.RevolutionOne = m.secondaryLevel == m.Cfg.PollLevelPolarity
				} else {
					m.State.RevolutionOne = !m.State.RevolutionOne
				}

				m.State.ToothOneMinusOneTime = m.State.ToothOneTime
				m.State.ToothOneTime = curTime

				if m.Cfg.Sequential {
					full := m.State.SecondaryToothCount > 0 ||
						m.Cfg.TrigSpeed == trigger.CamSpeed ||
						m.Cfg.TrigPatternSec == trigger.SecondaryPoll
					if full {
						m.State.HasSync = true
						m.State.HalfSync = false
					} else {
						m.State.HalfSync = true
					}
				} else {
					m.State.HasSync = true
					m.State.HalfSync = false
				}

				m.State.TriggerFilterTime = 0
				m.State.DecoderFlags.Clear(trigger.FlagToothAngCorrect)
			}
		} else {
			if last != 0 {
				m.State.TriggerFilterTime = trigger.SetFilter(m.Cfg.TriggerFilter, curGap)
			}
			m.State.DecoderFlags.Set(trigger.FlagToothAngCorrect)
		}

		m.State.ToothLastMinusOneToothTime = last
		m.State.ToothLastToothTime = curTime

		if m.Log != nil {
			m.Log.LogTooth(curGap)
		}
	})
}

// Secondary implements trigger.Decoder. See spec.md §4.6.
func (m *MissingTooth) Secondary(curTime uint32) {
	m.State.CS.Enter(func() {
		switch m.Cfg.TrigPatternSec {
		case trigger.SecondaryPoll:
			// No edges consumed; RevolutionOne is derived from
			// SetSecondaryLevel at the primary's tooth-1.
			return

		case trigger.Secondary4Minus1:
			last := m.State.ToothLastSecToothTime
			lastMinusOne := m.State.ToothLastMinusOneSecToothTime
			var curGap uint32
			if last != 0 {
				curGap = curTime - last
				if !accept(curGap, m.State.TriggerSecFilterTime) {
					return
				}
			}
			isGap := false
			if last != 0 && lastMinusOne != 0 {
				num, den := gapMultiplierNumDen(1)
				targetGap := uint64(last-lastMinusOne) * uint64(num) / uint64(den)
				if uint64(curGap) > targetGap {
					isGap = true
				}
			}
			if isGap {
				m.State.SecondaryToothCount = 1
				m.State.RevolutionOne = true
				m.State.TriggerSecFilterTime = 0
			} else {
				m.State.SecondaryToothCount++
				m.State.TriggerSecFilterTime = trigger.SetSecFilter(curGap, 1, 4)
			}
			m.State.ToothLastMinusOneSecToothTime = last
			m.State.ToothLastSecToothTime = curTime

		case trigger.SecondarySingle:
			last := m.State.ToothLastSecToothTime
			var curGap uint32
			if last != 0 {
				curGap = curTime - last
				if !accept(curGap, m.State.TriggerSecFilterTime) {
					return
				}
			}
			m.State.RevolutionOne = true
			m.State.SecondaryToothCount++
			m.State.TriggerSecFilterTime = trigger.SetSecFilter(curGap, 1, 2)
			m.State.ToothLastMinusOneSecToothTime = last
			m.State.ToothLastSecToothTime = curTime
		}

		m.handleVVT1Locked(curTime)
	})
}

// Tertiary processes an edge from a second camshaft reference, updating
// VVT2Angle the way Secondary updates VVT1Angle for the primary cam.
func (m *MissingTooth) Tertiary(curTime uint32) {
	m.State.CS.Enter(func() {
		if !m.Cfg.VVTEnabled {
			return
		}
		angle := m.angleAtLocked(curTime)
		angle = ((angle % 360) + 360) % 360
		angle -= int32(m.Cfg.TriggerAngle)
		if angle < 0 {
			angle = 0
		}
		m.vvt2Angle = expFilterVVT(m.vvt2Angle, uint16(angle<<1), m.Cfg.AngleFilterVVT)
	})
}

// handleVVT1Locked samples the current crank angle and folds it into
// vvt1Angle. Must be called with State.CS already held.
func (m *MissingTooth) handleVVT1Locked(curTime uint32) {
	if !m.Cfg.VVTEnabled || !m.State.RevolutionOne {
		return
	}
	angle := m.angleAtLocked(curTime)
	angle = ((angle % 360) + 360) % 360
	angle -= int32(m.Cfg.TriggerAngle)
	if m.Cfg.VVTClosedLoop {
		angle -= int32(m.Cfg.VVTCL0DutyAng)
	}
	if angle < 0 {
		angle = 0
	}
	m.vvt1Angle = expFilterVVT(m.vvt1Angle, uint16(angle<<1), m.Cfg.AngleFilterVVT)
}

// angleAtLocked computes the crank angle directly from State fields,
// without going through trigger.GetCrankAngle's own locking, since this is
// called from within a section that already holds State.CS.
func (m *MissingTooth) angleAtLocked(now uint32) int32 {
	var base int32
	if m.State.ToothCurrentCount > 0 {
		base = int32(m.State.ToothCurrentCount-1)*int32(m.State.TriggerToothAngle) + int32(m.State.TriggerAngleOffset)
	} else {
		base = int32(m.State.TriggerAngleOffset)
	}
	if m.Cfg.Sequential && m.State.RevolutionOne && m.Cfg.TrigSpeed == trigger.CrankSpeed {
		base += 360
	}
	gap := m.State.ToothLastToothTime - m.State.ToothLastMinusOneToothTime
	interval := uint32(m.State.PatternTeeth) * gap
	elapsed := now - m.State.ToothLastToothTime
	base += int32(trigger.LinearInterpolator(elapsed, interval))
	return normalizeAngle(base, int32(m.crankAngleMax()))
}

// GetRPM implements trigger.Decoder. It uses the volatile two-tooth
// estimator while the previous estimate is below Cfg.CrankRPM (that
// estimator reports 0 until StgCycles revolutions have completed) and the
// smoother full-revolution estimator once at or above it.
func (m *MissingTooth) GetRPM() uint16 {
	degreesOver := uint16(360)
	if m.Cfg.TrigSpeed == trigger.CamSpeed {
		degreesOver = 720
	}
	if m.rpm < m.Cfg.CrankRPM {
		m.rpm = trigger.CrankingGetRPM(&m.State, m.Cfg.TriggerTeeth, degreesOver, m.Cfg.StgCycles, m.rpm)
	} else {
		m.rpm = trigger.StdGetRPM(&m.State, degreesOver, m.Cfg.CrankRPM, m.rpm)
	}
	return m.rpm
}

// GetCrankAngle implements trigger.Decoder.
func (m *MissingTooth) GetCrankAngle(now uint32) int32 {
	var gap uint32
	m.State.CS.Enter(func() {
		gap = m.State.ToothLastToothTime - m.State.ToothLastMinusOneToothTime
	})
	params := trigger.CrankAngleParams{
		ToothAngle:    m.State.TriggerToothAngle,
		AngleOffset:   m.State.TriggerAngleOffset,
		CrankAngleMax: m.crankAngleMax(),
		Sequential:    m.Cfg.Sequential,
		Speed:         m.Cfg.TrigSpeed,
		IntervalRevUs: uint32(m.State.PatternTeeth) * gap,
	}
	return trigger.GetCrankAngle(&m.State, now, params)
}

// EffectiveTooth returns the tooth index the per-tooth ignition patcher
// should compare against: ToothCurrentCount on the first engine
// revolution, or PatternTeeth+ToothCurrentCount on the second when running
// sequential scheduling on a crank-speed wheel (spec.md §4.5 step 6).
func (m *MissingTooth) EffectiveTooth() uint16 {
	if m.Cfg.Sequential && m.Cfg.TrigSpeed == trigger.CrankSpeed && m.State.RevolutionOne {
		return m.State.PatternTeeth + m.State.ToothCurrentCount
	}
	return m.State.ToothCurrentCount
}

// SetEndTeeth implements trigger.Decoder. See spec.md §4.7.
func (m *MissingTooth) SetEndTeeth() {
	period := m.State.PatternTeeth
	var extra uint16
	if m.Cfg.Sequential && m.Cfg.TrigSpeed == trigger.CrankSpeed {
		period = m.State.PatternTeeth * 2
		extra = m.State.PatternTeeth
	}
	for n := 0; n < trigger.IgnChannels; n++ {
		if m.State.TriggerToothAngle == 0 {
			continue
		}
		tempEnd := (int32(m.Cfg.EndAngle[n])-int32(m.Cfg.TriggerAngle))/int32(m.State.TriggerToothAngle) - 1
		m.State.IgnitionEndTooth[n] = foldEndTooth(tempEnd, period, m.State.PatternTeeth, m.a, extra)
	}
}
