// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"periph.io/x/periph/trigger"
	"periph.io/x/periph/trigger/toothlog"
)

func TestSnapshotWithoutLogger(t *testing.T) {
	snap := trigger.Snapshot{HasSync: true}
	r := Snapshot(1500, 90, snap, 2, 10, 30, 0, nil)

	assert.EqualValues(t, 1500, r.RPM)
	assert.EqualValues(t, 90, r.CrankAngle)
	assert.True(t, r.HasSync)
	assert.False(t, r.ToothLogReady)
	assert.Nil(t, r.ToothHistory)
}

func TestSnapshotToothLogMode(t *testing.T) {
	log := &toothlog.Logger{Mode: toothlog.ModeToothLog}
	log.LogTooth(5000)
	log.LogTooth(5010)

	snap := trigger.Snapshot{HasSync: true}
	r := Snapshot(800, 45, snap, 0, 1, 0, 0, log)

	assert.Len(t, r.ToothHistory, 2)
	assert.False(t, r.CompositeReady)
}

func TestSnapshotCompositeMode(t *testing.T) {
	log := &toothlog.Logger{Mode: toothlog.ModeComposite}
	log.LogComposite(1000, true, false, true, true)

	snap := trigger.Snapshot{HasSync: false}
	r := Snapshot(0, 0, snap, 1, 0, 0, 0, log)

	assert.Len(t, r.Composite, 1)
	assert.Equal(t, uint32(1000), r.Composite[0].Time)
	assert.Nil(t, r.ToothHistory)
}
