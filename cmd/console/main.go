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
		Use:          "console",
		Short:        "Print the classification of a simulated tablet",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	common := cli.AddCommonFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := common.Setup()
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return app.RunMockConsole(ctx, cfg, nil, nil, cmd.OutOrStdout(), 0)
	}

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}
