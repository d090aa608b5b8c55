// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periph.io/x/periph/trigger"
)

const sampleYAML = `
decoder: missingTooth
nCylinders: 4
triggerTeeth: 36
triggerMissingTeeth: 1
triggerAngle: 90deg
trigSpeed: crank
trigPatternSec: single
triggerFilter: "50"
stgCycles: 3
crankRPM: 400
sequential: true
vvtEnabled: true
vvtCl0DutyAng: 10deg
angleFilterVvt: 2
endAngles: ["0deg", "180deg"]
`

func TestParseResolvesKnownFields(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, KindMissingTooth, doc.Decoder)

	cfg, err := doc.Resolve()
	require.NoError(t, err)

	assert.EqualValues(t, 4, cfg.NCylinders)
	assert.EqualValues(t, 36, cfg.TriggerTeeth)
	assert.EqualValues(t, 1, cfg.TriggerMissingTeeth)
	assert.EqualValues(t, 90, cfg.TriggerAngle)
	assert.Equal(t, trigger.CrankSpeed, cfg.TrigSpeed)
	assert.Equal(t, trigger.SecondarySingle, cfg.TrigPatternSec)
	assert.Equal(t, trigger.Filter50, cfg.TriggerFilter)
	assert.True(t, cfg.Sequential)
	assert.EqualValues(t, 10, cfg.VVTCL0DutyAng)
	assert.EqualValues(t, 0, cfg.EndAngle[0])
	assert.EqualValues(t, 180, cfg.EndAngle[1])
}

func TestResolveRejectsUnknownTrigSpeed(t *testing.T) {
	doc := Document{TrigSpeed: "sideways"}
	_, err := doc.Resolve()
	require.Error(t, err)
}

func TestResolveRejectsTooManyEndAngles(t *testing.T) {
	doc := Document{}
	for i := 0; i <= trigger.IgnChannels; i++ {
		doc.EndAngles = append(doc.EndAngles, "0deg")
	}
	_, err := doc.Resolve()
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/engine.yaml")
	require.Error(t, err)
}
