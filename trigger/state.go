// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trigger

import "sync"

// Flag is one bit of decoderFlags.
type Flag uint8

// Recognized decoder flags.
const (
	// FlagValidTrigger is set on every accepted primary edge and is the
	// signal to the ignition scheduler that a fresh tooth has arrived.
	FlagValidTrigger Flag = 1 << iota
	// FlagIsSequential marks sequential (per-cylinder) fuel/spark scheduling,
	// as opposed to wasted-spark/batch.
	FlagIsSequential
	// FlagHasFixedCranking disables per-tooth ignition while cranking.
	FlagHasFixedCranking
	// FlagToothAngCorrect is cleared on the tooth immediately following the
	// missing-tooth gap, since that interval spans 2x/3x the nominal tooth
	// angle and does not represent one tooth's worth of rotation.
	FlagToothAngCorrect
	// FlagSecondDeriv reserved for decoders that track gap acceleration.
	FlagSecondDeriv
)

// Flags is a small bitset of decoder flags.
type Flags uint8

// Has reports whether all bits in f are set.
func (d Flags) Has(f Flag) bool { return d&Flags(f) == Flags(f) }

// Set sets the bits in f.
func (d *Flags) Set(f Flag) { *d |= Flags(f) }

// Clear clears the bits in f.
func (d *Flags) Clear(f Flag) { *d &^= Flags(f) }

// CriticalSection serializes access to State between the edge-delivering
// goroutine (standing in for interrupt context) and mainline readers.
//
// On real hardware this is interrupt masking around a multi-word volatile
// read; in this reimplementation it is a mutex. Primary and Secondary hold
// it for the duration of one edge, exactly as an ISR runs to completion;
// mainline readers take a short-lived lock only to snapshot fields before
// doing any arithmetic, mirroring host/sysfs.Pin's use of sync.Mutex to
// guard state shared with its edge-listening goroutine.
type CriticalSection struct {
	mu sync.Mutex
}

// Enter masks "interrupts" for the duration of fn.
func (c *CriticalSection) Enter(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// State is the shared decoder state described in the specification's data
// model: tooth counters, timestamps, sync flags, and the per-channel
// end-tooth table. All fields are read and written only while holding the
// owning Decoder's CriticalSection, except for fields explicitly documented
// as mainline-only configuration.
type State struct {
	// --- ISR-writable (written only from Primary/Secondary) ---

	ToothCurrentCount uint16 // index of the last seen primary tooth, 1-based
	ToothSystemCount  uint8  // raw physical tooth count, for logical != physical

	ToothLastToothTime           uint32
	ToothLastMinusOneToothTime   uint32
	ToothLastSecToothTime        uint32
	ToothLastMinusOneSecToothTime uint32

	ToothOneTime          uint32
	ToothOneMinusOneTime  uint32

	SecondaryToothCount uint16

	RevolutionOne bool
	HasSync       bool
	HalfSync      bool

	SyncLossCounter  uint16
	StartRevolutions uint16

	DecoderFlags Flags

	// --- mainline-writable (written only by Setup, or under explicit
	// critical-section discipline while the engine is known stopped) ---

	TriggerFilterTime    uint32
	TriggerSecFilterTime uint32
	TriggerToothAngle    uint16
	TriggerAngleOffset   uint16
	TriggerActualTeeth   uint16
	PatternTeeth         uint16
	MaxStallTime         uint32

	IgnitionEndTooth [IgnChannels]uint16

	CS CriticalSection
}

// IgnChannels is the number of ignition channels this module tracks
// end-tooth indices for.
const IgnChannels = 8

// Snapshot is a torn-free copy of the fields needed to compute RPM or crank
// angle from mainline.
type Snapshot struct {
	ToothCurrentCount    uint16
	ToothLastToothTime   uint32
	ToothLastMinusOneToothTime uint32
	ToothOneTime         uint32
	ToothOneMinusOneTime uint32
	RevolutionOne        bool
	HasSync              bool
	HalfSync             bool
}

// Snapshot copies the fields needed for RPM/angle computation under the
// critical section, so the caller can do its arithmetic without holding the
// lock.
func (s *State) Snapshot() Snapshot {
	var out Snapshot
	s.CS.Enter(func() {
		out = Snapshot{
			ToothCurrentCount:          s.ToothCurrentCount,
			ToothLastToothTime:         s.ToothLastToothTime,
			ToothLastMinusOneToothTime: s.ToothLastMinusOneToothTime,
			ToothOneTime:               s.ToothOneTime,
			ToothOneMinusOneTime:       s.ToothOneMinusOneTime,
			RevolutionOne:              s.RevolutionOne,
			HasSync:                    s.HasSync,
			HalfSync:                   s.HalfSync,
		}
	})
	return out
}

// Reset clears every ISR-writable field, as happens on a fresh Setup() or
// when the external stall detector re-invokes Setup after a stall.
func (s *State) Reset() {
	s.ToothCurrentCount = 0
	s.ToothSystemCount = 0
	s.ToothLastToothTime = 0
	s.ToothLastMinusOneToothTime = 0
	s.ToothLastSecToothTime = 0
	s.ToothLastMinusOneSecToothTime = 0
	s.ToothOneTime = 0
	s.ToothOneMinusOneTime = 0
	s.SecondaryToothCount = 0
	s.RevolutionOne = false
	s.HasSync = false
	s.HalfSync = false
	s.SyncLossCounter = 0
	s.StartRevolutions = 0
	s.DecoderFlags = 0
	s.IgnitionEndTooth = [IgnChannels]uint16{}
}
