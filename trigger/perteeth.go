// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trigger

// ScheduleStatus mirrors the ignition scheduler's per-channel state
// machine, just enough of it for the per-tooth patcher to decide whether a
// live timer-compare write is safe or whether it must stage endCompare for
// later instead. The full scheduler is out of scope for this module (see
// spec.md §1); this is the minimal read/write surface it exposes back to
// the decoder.
type ScheduleStatus uint8

// Recognized schedule states.
const (
	ScheduleOff ScheduleStatus = iota
	SchedulePending
	ScheduleRunning
)

// IgnitionSchedule is the live state of one ignition channel's timer
// schedule, as owned by the external scheduler and mutated here only
// through the fields the decoder is allowed to touch.
type IgnitionSchedule struct {
	Status                  ScheduleStatus
	EndCompare              uint32
	EndScheduleSetByDecoder bool
}

// CompareSink receives live timer-compare writes, standing in for the
// platform's SET_COMPARE(IGN{N}_COMPARE, ...) macro.
type CompareSink interface {
	SetCompare(channel int, ticks uint32)
}

// DegreesToTicks converts a number of crank degrees still to run into timer
// ticks for CompareSink.SetCompare, standing in for the external
// degreesToUS/µsToTimerTicks helpers the specification places out of
// scope. usPerDegree is the caller's current estimate (typically derived
// from the latest tooth-to-tooth gap); ticksPerUs converts microseconds to
// timer ticks for the target's compare timer.
func DegreesToTicks(degrees int32, usPerDegree uint32, ticksPerUs uint32) uint32 {
	if degrees < 0 {
		degrees = 0
	}
	return uint32(degrees) * usPerDegree * ticksPerUs
}

// CheckPerToothTiming updates or pre-stages the live ignition timer compare
// for every channel whose end-tooth index matches currentTooth.
//
// It is only active when not in a fixed-cranking override and RPM > 0. For
// a channel whose schedule is RUNNING, it writes the timer-compare register
// directly to fire at the channel's remaining angle from crankAngle. For a
// channel whose schedule has not started yet, once the engine has turned
// over more than MinCyclesForEndCompare revolutions, it pre-stages
// EndCompare and sets EndScheduleSetByDecoder so the scheduler honors it
// the moment the schedule starts; the revolution gate avoids writing a
// stale timer target while the engine is still spinning up.
func CheckPerToothTiming(s *State, currentTooth uint16, crankAngle int32, rpm uint16, fixedCrankingOverride bool, now uint32, usPerDegree, ticksPerUs uint32, channelEndAngle [IgnChannels]int32, schedules []*IgnitionSchedule, sink CompareSink) {
	if fixedCrankingOverride || rpm == 0 {
		return
	}
	for n := 0; n < IgnChannels && n < len(schedules); n++ {
		if s.IgnitionEndTooth[n] != currentTooth {
			continue
		}
		sched := schedules[n]
		if sched == nil {
			continue
		}
		remaining := channelEndAngle[n] - crankAngle
		ticks := DegreesToTicks(remaining, usPerDegree, ticksPerUs)
		switch {
		case sched.Status == ScheduleRunning:
			if sink != nil {
				sink.SetCompare(n+1, now+ticks)
			}
		case s.StartRevolutions > MinCyclesForEndCompare:
			sched.EndCompare = now + ticks
			sched.EndScheduleSetByDecoder = true
		}
	}
}
