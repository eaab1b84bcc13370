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

	"github.com/spf13/cobra"

	"github.com/relabs-tech/autorotate/internal/app"
	"github.com/relabs-tech/autorotate/internal/cli"
)

func main() {
	cmd := &cobra.Command{
		Use:   "autorotate",
		Short: "Rotate the display to follow the accelerometer",
		Long: `autorotate polls the IIO accelerometers, classifies the device
orientation and rotates the sway output whenever it changes. With
--keyboard, built-in keyboards are disabled unless the display is upright.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	common := cli.AddCommonFlags(cmd)
	rotation := cli.AddRotationFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := common.Setup()
		if err != nil {
			return err
		}
		if err := rotation.Apply(cmd, cfg); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return app.RunRotator(ctx, cfg, app.RunOptions{DryRun: rotation.DryRun}, app.Deps{})
	}

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "autorotate: %v\n", err)
		os.Exit(1)
	}
}
