// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the trigger decoder's configuration from a YAML
// document, standing in for the configPage2/4/6/10 configuration-storage
// collaborator the decoder itself treats as externally supplied.
//
// Angle fields are accepted as human-readable strings (e.g. "45deg") via
// periph.io/x/periph/conn/physic and, with the rest, lowered to the raw integer
// fields trigger/decoders.Config carries on the hot path; none of that
// conversion happens anywhere near Primary/Secondary.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/trigger"
	"periph.io/x/periph/trigger/decoders"
)

// Document is the YAML-decodable shape of a trigger configuration file.
// Field names follow the configPage naming the specification inherited,
// lowerCamelCased for YAML convention.
type Document struct {
	Decoder string `yaml:"decoder"` // "missingTooth", "dualWheel", "basicDistributor", "non360Dual"

	NCylinders          uint8  `yaml:"nCylinders"`
	TriggerTeeth        uint16 `yaml:"triggerTeeth"`
	TriggerMissingTeeth uint8  `yaml:"triggerMissingTeeth"`
	TriggerAngle        string `yaml:"triggerAngle"` // e.g. "45deg"
	TrigSpeed           string `yaml:"trigSpeed"`     // "crank" or "cam"
	TrigPatternSec      string `yaml:"trigPatternSec"`
	PollLevelPolarity   bool   `yaml:"pollLevelPolarity"`
	TriggerFilter       string `yaml:"triggerFilter"` // "off", "25", "50", "75"
	StgCycles           uint16 `yaml:"stgCycles"`
	CrankRPM            uint16 `yaml:"crankRPM"`
	PerToothIgn         bool   `yaml:"perToothIgn"`
	IgnCranklock        bool   `yaml:"ignCranklock"`
	UseResync           bool   `yaml:"useResync"`
	Sequential          bool   `yaml:"sequential"`

	VVTEnabled     bool   `yaml:"vvtEnabled"`
	VVTClosedLoop  bool   `yaml:"vvtClosedLoop"`
	VVTCL0DutyAng  string `yaml:"vvtCl0DutyAng"`
	AngleFilterVVT uint8  `yaml:"angleFilterVvt"`

	TrigAngMul uint16 `yaml:"trigAngMul"`

	EndAngles []string `yaml:"endAngles"` // per ignition channel, degrees ATDC
}

// Load reads and parses a Document from path.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("trigger/config: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a Document from r.
func Parse(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("trigger/config: decode: %w", err)
	}
	return doc, nil
}

// Decoders recognized by Document.Decoder.
const (
	KindMissingTooth     = "missingTooth"
	KindDualWheel        = "dualWheel"
	KindBasicDistributor = "basicDistributor"
	KindNon360Dual       = "non360Dual"
)

// Resolve converts the parsed Document into the trigger/decoders.Config
// value every decoder variant's Setup consumes.
func (d Document) Resolve() (decoders.Config, error) {
	var cfg decoders.Config

	angle, err := parseAngle(d.TriggerAngle)
	if err != nil {
		return cfg, fmt.Errorf("trigger/config: triggerAngle: %w", err)
	}
	vvtDuty, err := parseAngle(d.VVTCL0DutyAng)
	if err != nil {
		return cfg, fmt.Errorf("trigger/config: vvtCl0DutyAng: %w", err)
	}
	speed, err := parseSpeed(d.TrigSpeed)
	if err != nil {
		return cfg, err
	}
	secPattern, err := parseSecPattern(d.TrigPatternSec)
	if err != nil {
		return cfg, err
	}
	filter, err := parseFilter(d.TriggerFilter)
	if err != nil {
		return cfg, err
	}

	cfg = decoders.Config{
		NCylinders:          d.NCylinders,
		TriggerTeeth:        d.TriggerTeeth,
		TriggerMissingTeeth: d.TriggerMissingTeeth,
		TriggerAngle:        angle,
		TrigSpeed:           speed,
		TrigPatternSec:      secPattern,
		PollLevelPolarity:   d.PollLevelPolarity,
		TriggerFilter:       filter,
		StgCycles:           d.StgCycles,
		CrankRPM:            d.CrankRPM,
		PerToothIgn:         d.PerToothIgn,
		IgnCranklock:        d.IgnCranklock,
		UseResync:           d.UseResync,
		Sequential:          d.Sequential,
		VVTEnabled:          d.VVTEnabled,
		VVTClosedLoop:       d.VVTClosedLoop,
		VVTCL0DutyAng:       vvtDuty,
		AngleFilterVVT:      d.AngleFilterVVT,
		TrigAngMul:          d.TrigAngMul,
	}

	if len(d.EndAngles) > trigger.IgnChannels {
		return cfg, fmt.Errorf("trigger/config: endAngles has %d entries, max %d", len(d.EndAngles), trigger.IgnChannels)
	}
	for i, raw := range d.EndAngles {
		a, err := parseAngle(raw)
		if err != nil {
			return cfg, fmt.Errorf("trigger/config: endAngles[%d]: %w", i, err)
		}
		cfg.EndAngle[i] = a
	}

	return cfg, nil
}

func parseAngle(s string) (uint16, error) {
	if s == "" {
		return 0, nil
	}
	var a physic.Angle
	if err := a.Set(s); err != nil {
		return 0, err
	}
	return uint16(a / physic.Degree), nil
}

func parseSpeed(s string) (trigger.TriggerSpeed, error) {
	switch s {
	case "", "crank":
		return trigger.CrankSpeed, nil
	case "cam":
		return trigger.CamSpeed, nil
	default:
		return 0, fmt.Errorf("trigger/config: trigSpeed: unknown value %q", s)
	}
}

func parseSecPattern(s string) (trigger.SecondaryPattern, error) {
	switch s {
	case "", "single":
		return trigger.SecondarySingle, nil
	case "4-1":
		return trigger.Secondary4Minus1, nil
	case "poll":
		return trigger.SecondaryPoll, nil
	default:
		return 0, fmt.Errorf("trigger/config: trigPatternSec: unknown value %q", s)
	}
}

func parseFilter(s string) (trigger.FilterLevel, error) {
	switch s {
	case "", "off":
		return trigger.FilterOff, nil
	case "25":
		return trigger.Filter25, nil
	case "50":
		return trigger.Filter50, nil
	case "75":
		return trigger.Filter75, nil
	default:
		return 0, fmt.Errorf("trigger/config: triggerFilter: unknown value %q", s)
	}
}
