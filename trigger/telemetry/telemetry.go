// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package telemetry carries the decoder's structured logging and its
// read-only status snapshot, standing in for the specification's external
// telemetry collaborator (currentStatus, tooth-log/composite-log dump).
package telemetry

import (
	"os"

	"github.com/rs/zerolog"

	"periph.io/x/periph/trigger"
	"periph.io/x/periph/trigger/toothlog"
)

// Log is the package-wide structured logger, console-formatted exactly as
// itohio-EasyRobot/pkg/logger configures its own default logger.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// LogSyncLoss records a sync-loss event at Warn, since a running engine
// just lost its angular reference. The decoders in trigger/decoders do not
// call it themselves.
func LogSyncLoss(decoder string, toothCurrentCount uint16, syncLossCounter uint16) {
	Log.Warn().
		Str("decoder", decoder).
		Uint16("tooth", toothCurrentCount).
		Uint16("syncLossCounter", syncLossCounter).
		Msg("trigger sync lost")
}

// LogStall records a stall-timeout event at Warn.
func LogStall(decoder string, maxStallTimeUs uint32) {
	Log.Warn().
		Str("decoder", decoder).
		Uint32("maxStallTimeUs", maxStallTimeUs).
		Msg("trigger stalled")
}

// LogNoiseRejected records an edge filter rejection at Debug: routine, not
// worth a line at default verbosity.
func LogNoiseRejected(decoder string, curGap, filterTime uint32) {
	Log.Debug().
		Str("decoder", decoder).
		Uint32("curGap", curGap).
		Uint32("filterTime", filterTime).
		Msg("edge rejected by filter")
}

// LogToothLogFull records the tooth/composite logger reaching capacity at
// Debug: expected once per readout cycle in any reasonably polled setup.
func LogToothLogFull(mode toothlog.Mode, index uint16) {
	Log.Debug().
		Uint8("mode", uint8(mode)).
		Uint16("index", index).
		Msg("tooth log full")
}

// Report is a read-only copy of the decoder's current status, analogous to
// the specification's currentStatus struct, plus the tooth/composite log
// contents recorded so far and the logger's Ready flag.
type Report struct {
	RPM              uint16
	CrankAngle       int32
	HasSync          bool
	HalfSync         bool
	SyncLossCounter  uint16
	StartRevolutions uint16
	VVT1Angle        uint16
	VVT2Angle        uint16

	ToothLogReady  bool
	ToothHistory   []uint32
	CompositeReady bool
	Composite      []toothlog.CompositeEntry
}

// Snapshot builds a Report from a decoder's current computed RPM/angle, its
// trigger.State snapshot, VVT angles, and an optional tooth logger. It
// takes already-computed primitives rather than a trigger/decoders.Decoder
// directly, avoiding an import cycle between the two packages.
func Snapshot(rpm uint16, crankAngle int32, snap trigger.Snapshot, syncLossCounter, startRevolutions, vvt1Angle, vvt2Angle uint16, log *toothlog.Logger) Report {
	r := Report{
		RPM:              rpm,
		CrankAngle:       crankAngle,
		HasSync:          snap.HasSync,
		HalfSync:         snap.HalfSync,
		SyncLossCounter:  syncLossCounter,
		StartRevolutions: startRevolutions,
		VVT1Angle:        vvt1Angle,
		VVT2Angle:        vvt2Angle,
	}
	if log == nil {
		return r
	}
	switch log.Mode {
	case toothlog.ModeToothLog:
		r.ToothLogReady = log.Ready
		r.ToothHistory = log.ToothHistory()
	case toothlog.ModeComposite:
		r.CompositeReady = log.Ready
		r.Composite = log.CompositeHistory()
	}
	return r
}
