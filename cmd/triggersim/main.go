// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// trigger-sim hosts the trigger decoder for manual exploration: it can
// replay a recorded or synthetic edge stream through any decoder variant,
// or drive real GPIO pins through a minimal sysfs edge reader. It
// schedules no ignition or injection and wires up no CompareSink; it
// prints the decoder's RPM and crank angle.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"periph.io/x/periph/trigger"
	triggerconfig "periph.io/x/periph/trigger/config"
	"periph.io/x/periph/trigger/decoders"
	"periph.io/x/periph/trigger/hostio"
	"periph.io/x/periph/trigger/telemetry"
	"periph.io/x/periph/trigger/toothlog"
)

var rootCmd = &cobra.Command{
	Use:   "trigger-sim",
	Short: "Exercises the crank/cam trigger decoder core",
}

func main() {
	rootCmd.AddCommand(runCmd, liveCmd)
	if err := rootCmd.Execute(); err != nil {
		telemetry.Log.Fatal().Err(err).Msg("trigger-sim")
	}
}

var (
	runConfigPath string
	runEdgesPath  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replays a CSV-recorded or synthetic edge stream through a decoder",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := triggerconfig.Load(runConfigPath)
		if err != nil {
			return err
		}
		cfg, err := doc.Resolve()
		if err != nil {
			return err
		}
		dec, _, err := newDecoder(doc.Decoder, cfg)
		if err != nil {
			return err
		}
		dec.Setup()

		var edges []edge
		if runEdgesPath != "" {
			edges, err = loadEdges(runEdgesPath)
			if err != nil {
				return err
			}
		} else {
			edges = syntheticEdges(1000, 5000, 200)
		}

		for _, e := range edges {
			if e.secondary {
				dec.Secondary(e.timeUs)
			} else {
				dec.Primary(e.timeUs)
			}
		}
		dec.SetEndTeeth()

		now := edges[len(edges)-1].timeUs
		rpm := dec.GetRPM()
		angle := dec.GetCrankAngle(now)
		fmt.Printf("rpm=%d angle=%d\n", rpm, angle)
		return nil
	},
}

var (
	liveConfigPath       string
	livePrimaryGPIO      int
	liveSecondaryGPIO    int
	liveHasSecondaryGPIO bool
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Drives the decoder from real GPIO pins via sysfs edge interrupts",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := triggerconfig.Load(liveConfigPath)
		if err != nil {
			return err
		}
		cfg, err := doc.Resolve()
		if err != nil {
			return err
		}
		dec, _, err := newDecoder(doc.Decoder, cfg)
		if err != nil {
			return err
		}
		dec.Setup()

		pri, err := hostio.Open(livePrimaryGPIO)
		if err != nil {
			return fmt.Errorf("trigger-sim live: primary pin: %w", err)
		}
		defer pri.Close()

		var sec *hostio.Pin
		if liveHasSecondaryGPIO {
			sec, err = hostio.Open(liveSecondaryGPIO)
			if err != nil {
				return fmt.Errorf("trigger-sim live: secondary pin: %w", err)
			}
			defer sec.Close()
		}

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		done := make(chan struct{})
		go func() {
			for pri.WaitForEdge(-1) {
				dec.Primary(nowMicros())
			}
			close(done)
		}()
		if sec != nil {
			go func() {
				for sec.WaitForEdge(-1) {
					dec.Secondary(nowMicros())
				}
			}()
		}

		for {
			select {
			case <-ticker.C:
				dec.SetEndTeeth()
				fmt.Printf("rpm=%d angle=%d\n", dec.GetRPM(), dec.GetCrankAngle(nowMicros()))
			case <-done:
				return nil
			}
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to a trigger/config YAML file")
	runCmd.Flags().StringVar(&runEdgesPath, "edges", "", "path to a CSV edge stream (timeUs,isSecondary); omit for a synthetic stream")
	runCmd.MarkFlagRequired("config")

	liveCmd.Flags().StringVar(&liveConfigPath, "config", "", "path to a trigger/config YAML file")
	liveCmd.Flags().IntVar(&livePrimaryGPIO, "primary-gpio", 0, "sysfs GPIO number for the primary (crank) signal")
	liveCmd.Flags().IntVar(&liveSecondaryGPIO, "secondary-gpio", 0, "sysfs GPIO number for the secondary (cam) signal, if any")
	liveCmd.MarkFlagRequired("config")
	liveCmd.MarkFlagRequired("primary-gpio")
	liveCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		liveHasSecondaryGPIO = cmd.Flags().Changed("secondary-gpio")
		return nil
	}
}

// newDecoder constructs the named decoder variant, wiring a fresh
// toothlog.Logger for diagnostics.
func newDecoder(kind string, cfg decoders.Config) (trigger.Decoder, *toothlog.Logger, error) {
	log := &toothlog.Logger{Mode: toothlog.ModeOff}
	switch kind {
	case triggerconfig.KindMissingTooth, "":
		return &decoders.MissingTooth{Cfg: cfg, Log: log}, log, nil
	case triggerconfig.KindDualWheel:
		return &decoders.DualWheel{Cfg: cfg, Log: log}, log, nil
	case triggerconfig.KindBasicDistributor:
		return &decoders.BasicDistributor{Cfg: cfg, Log: log}, log, nil
	case triggerconfig.KindNon360Dual:
		d := &decoders.Non360Dual{}
		d.Cfg = cfg
		d.Log = log
		return d, log, nil
	default:
		return nil, nil, fmt.Errorf("trigger-sim: unknown decoder kind %q", kind)
	}
}

type edge struct {
	timeUs    uint32
	secondary bool
}

// loadEdges reads a two-column CSV (timeUs,isSecondary) edge stream.
func loadEdges(path string) ([]edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trigger-sim: open edges: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	var edges []edge
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trigger-sim: parse edges: %w", err)
		}
		if len(rec) < 1 {
			continue
		}
		t, err := strconv.ParseUint(rec[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("trigger-sim: parse edges: %w", err)
		}
		sec := len(rec) > 1 && rec[1] == "1"
		edges = append(edges, edge{timeUs: uint32(t), secondary: sec})
	}
	return edges, nil
}

// nowMicros is the live subcommand's wall-clock timebase, truncated to
// the uint32 microsecond counter trigger.Decoder expects.
func nowMicros() uint32 {
	return uint32(time.Now().UnixNano() / 1000)
}

// syntheticEdges generates n evenly spaced primary edges, for quick manual
// exploration without a recorded stream.
func syntheticEdges(start, gapUs uint32, n int) []edge {
	edges := make([]edge, 0, n)
	now := start
	for i := 0; i < n; i++ {
		edges = append(edges, edge{timeUs: now})
		now += gapUs
	}
	return edges
}
