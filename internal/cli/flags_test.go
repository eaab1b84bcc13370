// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/autorotate/internal/config"
)

func parse(t *testing.T, args ...string) (*cobra.Command, *RotationFlags) {
	t.Helper()
	cmd := &cobra.Command{Use: "autorotate"}
	f := AddRotationFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, f
}

func TestFlagDefaultsMatchConfigDefaults(t *testing.T) {
	_, f := parse(t)
	def := config.Default()
	assert.Equal(t, uint64(1000), f.SleepMS)
	assert.Equal(t, def.Display, f.Display)
	assert.Equal(t, def.Threshold, f.Threshold)
	assert.Equal(t, def.NormalizationFactor, f.NormalizationFactor)
	assert.False(t, f.OneShot)
	assert.False(t, f.Keyboard)
}

func TestApplyExplicitFlags(t *testing.T) {
	cmd, f := parse(t,
		"-o", "-s", "250", "-d", "DSI-1", "-t", "0.3",
		"--normalization-factor", "16384", "--keyboard",
		"--touchscreen", "wacom", "--touchscreen", "elan",
		"--sensor-source", "mock", "--mqtt-broker", "tcp://localhost:1883",
	)
	cfg := config.Default()
	require.NoError(t, f.Apply(cmd, cfg))

	assert.True(t, cfg.OneShot)
	assert.Equal(t, 250*time.Millisecond, cfg.Sleep)
	assert.Equal(t, "DSI-1", cfg.Display)
	assert.Equal(t, float32(0.3), cfg.Threshold)
	assert.Equal(t, float32(16384), cfg.NormalizationFactor)
	assert.True(t, cfg.Keyboard)
	assert.Equal(t, []string{"wacom", "elan"}, cfg.Touchscreens)
	assert.Equal(t, config.SourceMock, cfg.SensorSource)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
}

func TestApplyKeepsFileValuesForUnsetFlags(t *testing.T) {
	cmd, f := parse(t, "--keyboard")
	cfg := config.Default()
	cfg.Display = "HDMI-A-1"
	cfg.Sleep = 300 * time.Millisecond
	cfg.Threshold = 0.05

	require.NoError(t, f.Apply(cmd, cfg))
	assert.Equal(t, "HDMI-A-1", cfg.Display)
	assert.Equal(t, 300*time.Millisecond, cfg.Sleep)
	assert.Equal(t, float32(0.05), cfg.Threshold)
	assert.True(t, cfg.Keyboard)
}

func TestApplyRejectsInvalidValues(t *testing.T) {
	cmd, f := parse(t, "--threshold=-0.1")
	err := f.Apply(cmd, config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "THRESHOLD must not be negative")

	cmd, f = parse(t, "--sensor-source", "gyro")
	require.Error(t, f.Apply(cmd, config.Default()))
}

func TestApplyZeroSleep(t *testing.T) {
	cmd, f := parse(t, "-s", "0")
	cfg := config.Default()
	require.NoError(t, f.Apply(cmd, cfg))
	assert.Zero(t, cfg.Sleep)
}

func TestBadFlagValue(t *testing.T) {
	cmd := &cobra.Command{Use: "autorotate"}
	AddRotationFlags(cmd)
	assert.Error(t, cmd.ParseFlags([]string{"--threshold", "near"}))
}
