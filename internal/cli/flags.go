// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package cli holds the flag wiring shared by the commands under cmd/.
package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/autorotate/internal/config"
	"github.com/relabs-tech/autorotate/internal/logging"
)

// CommonFlags are accepted by every command.
type CommonFlags struct {
	ConfigPath string
	LogLevel   string
}

// AddCommonFlags registers --config and --log-level on cmd.
func AddCommonFlags(cmd *cobra.Command) *CommonFlags {
	f := &CommonFlags{}
	cmd.PersistentFlags().StringVar(&f.ConfigPath, "config", "", "path to a KEY=VALUE or .toml configuration file")
	cmd.PersistentFlags().StringVar(&f.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	return f
}

// Setup installs the logger and loads the global configuration. Later
// flag overrides mutate the returned value before anything reads it.
func (f *CommonFlags) Setup() (*config.Config, error) {
	logging.ConfigureRuntime()
	if f.LogLevel != "" {
		lvl, ok := logging.ParseLevel(f.LogLevel)
		if !ok {
			return nil, fmt.Errorf("unknown log level %q", f.LogLevel)
		}
		logging.SetLevel(lvl)
	}

	if err := config.InitGlobal(f.ConfigPath); err != nil {
		return nil, err
	}
	cfg := config.Get()
	if f.ConfigPath != "" {
		log.Debug().Str("path", f.ConfigPath).Msg("configuration loaded")
	}
	return cfg, nil
}

// RotationFlags mirror the rotation settings of the config file.
type RotationFlags struct {
	OneShot             bool
	SleepMS             uint64
	Display             string
	Touchscreens        []string
	Threshold           float32
	NormalizationFactor float32
	Keyboard            bool

	SensorSource string
	MQTTBroker   string
	DryRun       bool
}

// AddRotationFlags registers the daemon flags on cmd with the built-in
// defaults as their default values.
func AddRotationFlags(cmd *cobra.Command) *RotationFlags {
	def := config.Default()
	f := &RotationFlags{}
	fs := cmd.Flags()
	fs.BoolVarP(&f.OneShot, "oneshot", "o", false, "apply the current orientation once and exit")
	fs.Uint64VarP(&f.SleepMS, "sleep", "s", uint64(def.Sleep/time.Millisecond), "delay between polls in milliseconds")
	fs.StringVarP(&f.Display, "display", "d", def.Display, "compositor output to rotate")
	fs.StringArrayVar(&f.Touchscreens, "touchscreen", nil, "touchscreen to map to the display (repeatable, currently ignored)")
	fs.Float32VarP(&f.Threshold, "threshold", "t", def.Threshold, "squared distance below which an orientation matches")
	fs.Float32Var(&f.NormalizationFactor, "normalization-factor", def.NormalizationFactor, "raw accelerometer value of 1g")
	fs.BoolVar(&f.Keyboard, "keyboard", false, "disable keyboards unless the display is upright")

	fs.StringVar(&f.SensorSource, "sensor-source", def.SensorSource, "accelerometer source (iio, mpu9250, mock)")
	fs.StringVar(&f.MQTTBroker, "mqtt-broker", "", "publish applied orientations to this MQTT broker")
	fs.BoolVar(&f.DryRun, "dry-run", false, "log rotations instead of applying them")
	return f
}

// Apply copies every explicitly set flag onto cfg and revalidates it.
func (f *RotationFlags) Apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("oneshot") {
		cfg.OneShot = f.OneShot
	}
	if fs.Changed("sleep") {
		cfg.Sleep = time.Duration(f.SleepMS) * time.Millisecond
	}
	if fs.Changed("display") {
		cfg.Display = f.Display
	}
	if fs.Changed("touchscreen") {
		cfg.Touchscreens = f.Touchscreens
	}
	if fs.Changed("threshold") {
		cfg.Threshold = f.Threshold
	}
	if fs.Changed("normalization-factor") {
		cfg.NormalizationFactor = f.NormalizationFactor
	}
	if fs.Changed("keyboard") {
		cfg.Keyboard = f.Keyboard
	}
	if fs.Changed("sensor-source") {
		cfg.SensorSource = f.SensorSource
	}
	if fs.Changed("mqtt-broker") {
		cfg.MQTTBroker = f.MQTTBroker
	}
	return cfg.Validate()
}
