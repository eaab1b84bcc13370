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
	var (
		broker string
		port   int
	)
	cmd := &cobra.Command{
		Use:          "web",
		Short:        "Serve the latest orientation over HTTP and websocket",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	common := cli.AddCommonFlags(cmd)
	cmd.Flags().StringVar(&broker, "mqtt-broker", "tcp://localhost:1883", "MQTT broker to subscribe to")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (default WEB_SERVER_PORT)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := common.Setup()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("mqtt-broker") || cfg.MQTTBroker == "" {
			cfg.MQTTBroker = broker
		}
		if cmd.Flags().Changed("port") {
			cfg.WebServerPort = port
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return app.RunWeb(ctx, cfg)
	}

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "web: %v\n", err)
		os.Exit(1)
	}
}
