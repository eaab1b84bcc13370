// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
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
		count    int
		interval time.Duration
		source   string
	)
	cmd := &cobra.Command{
		Use:          "sensor_debug",
		Short:        "Show the accelerometer files, readings and how they classify",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	common := cli.AddCommonFlags(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of reports, 0 runs until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "delay between reports")
	cmd.Flags().StringVar(&source, "sensor-source", "", "override SENSOR_SOURCE")

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

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return app.RunSensorDebug(ctx, cfg, src, nil, interval, count, cmd.OutOrStdout())
	}

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "sensor_debug: %v\n", err)
		os.Exit(1)
	}
}
