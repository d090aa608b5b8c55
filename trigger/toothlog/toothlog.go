// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package toothlog implements the decoder's two mutually exclusive
// diagnostic ring buffers: a plain tooth-interval log, and a bit-packed
// composite log of instantaneous input levels. Both are fixed-capacity
// arrays, never growable slices, matching the "no dynamic allocation"
// requirement of the decoder they serve.
package toothlog

// Size is the ring-buffer capacity, TOOTH_LOG_SIZE in the specification.
const Size = 256

// CompositeFlag is one bit of a composite log entry, bit-compatible with
// the wider controller's telemetry spec.
type CompositeFlag uint8

// Recognized composite flags.
const (
	FlagPriLevel CompositeFlag = 1 << iota
	FlagSecLevel
	FlagIsCamEdge
	FlagSyncAtTime
)

// Mode selects which of the two mutually exclusive logging disciplines is
// active.
type Mode uint8

// Recognized modes.
const (
	ModeOff Mode = iota
	ModeToothLog
	ModeComposite
)

// Logger is a ring-buffered capture of tooth intervals or composite edge
// snapshots. It never blocks and never allocates: once Size-1 entries have
// been written, it sets Ready and stops recording until the telemetry
// reader calls Clear.
type Logger struct {
	Mode Mode

	toothHistory     [Size]uint32
	compositeHistory [Size]uint8
	compositeTime    [Size]uint32

	index uint16
	Ready bool
}

// LogTooth records curGap, the most recently accepted primary gap in
// microseconds, into the next slot. A no-op outside ModeToothLog or once
// Ready.
func (l *Logger) LogTooth(curGap uint32) {
	if l.Mode != ModeToothLog || l.Ready {
		return
	}
	l.toothHistory[l.index] = curGap
	l.advance()
}

// LogComposite records the absolute timestamp now, together with a
// bit-packed sample of the instantaneous primary/secondary levels, whether
// this edge is a cam edge, and whether sync was held at the time.
//
// Per the specification's Open Question on loggerSecondaryISR, composite
// entries are always logged on secondary edges when composite logging is
// on, regardless of whether the secondary handler itself would otherwise
// gate the entry — the upstream ValidTrigger clear-then-set makes that
// gating a no-op in practice, and this package reproduces that observed
// behavior rather than the apparently unintended alternative.
func (l *Logger) LogComposite(now uint32, priLevel, secLevel, isCamEdge, syncAtTime bool) {
	if l.Mode != ModeComposite || l.Ready {
		return
	}
	var flags CompositeFlag
	if priLevel {
		flags |= FlagPriLevel
	}
	if secLevel {
		flags |= FlagSecLevel
	}
	if isCamEdge {
		flags |= FlagIsCamEdge
	}
	if syncAtTime {
		flags |= FlagSyncAtTime
	}
	l.compositeTime[l.index] = now
	l.compositeHistory[l.index] = uint8(flags)
	l.advance()
}

func (l *Logger) advance() {
	l.index++
	if int(l.index) >= Size-1 {
		l.Ready = true
	}
}

// Clear resets the ring buffer and clears Ready, allowing recording to
// resume. It does not change Mode.
func (l *Logger) Clear() {
	l.index = 0
	l.Ready = false
}

// ToothHistory returns the recorded tooth intervals up to the current
// write index.
func (l *Logger) ToothHistory() []uint32 {
	return l.toothHistory[:l.index]
}

// CompositeEntry is one decoded composite log record.
type CompositeEntry struct {
	Time  uint32
	Flags CompositeFlag
}

// CompositeHistory returns the recorded composite entries up to the
// current write index.
func (l *Logger) CompositeHistory() []CompositeEntry {
	out := make([]CompositeEntry, l.index)
	for i := range out {
		out[i] = CompositeEntry{Time: l.compositeTime[i], Flags: CompositeFlag(l.compositeHistory[i])}
	}
	return out
}

// Index reports the current write position.
func (l *Logger) Index() uint16 { return l.index }
