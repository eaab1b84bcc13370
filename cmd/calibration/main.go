// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Calibration samples the first accelerometer while the device rests and
// suggests the NORMALIZATION_FACTOR that maps 1g onto a unit vector.
//
// Run:
//
//	go run ./cmd/calibration --samples 200
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/autorotate/internal/app"
	"github.com/relabs-tech/autorotate/internal/cli"
	"github.com/relabs-tech/autorotate/internal/sensors"
)

func main() {
	var (
		samples   int
		interval  time.Duration
		outputDir string
		source    string
		noPrompt  bool
	)
	cmd := &cobra.Command{
		Use:          "calibration",
		Short:        "Measure the raw magnitude of gravity",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	common := cli.AddCommonFlags(cmd)
	cmd.Flags().IntVarP(&samples, "samples", "n", 100, "number of samples to average")
	cmd.Flags().DurationVar(&interval, "interval", 20*time.Millisecond, "delay between samples")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "write the result as JSON into this directory")
	cmd.Flags().StringVar(&source, "sensor-source", "", "override SENSOR_SOURCE")
	cmd.Flags().BoolVar(&noPrompt, "yes", false, "start sampling without waiting for Enter")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := common.Setup()
		if err != nil {
			return err
		}
		if source != "" {
			cfg.SensorSource = source
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		src, err := app.BuildSource(cfg, sensors.OSFileSystem{})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !noPrompt {
			fmt.Fprintln(out, "Lay the device still on any side and press Enter.")
			if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
				return fmt.Errorf("read confirmation: %w", err)
			}
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		_, err = app.RunCalibration(ctx, src, nil, app.CalibrationOptions{
			Samples:   samples,
			Interval:  interval,
			OutputDir: outputDir,
		}, out)
		return err
	}

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "calibration: %v\n", err)
		os.Exit(1)
	}
}
