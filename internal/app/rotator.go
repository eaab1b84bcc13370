// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/autorotate/internal/backend"
	"github.com/relabs-tech/autorotate/internal/config"
	"github.com/relabs-tech/autorotate/internal/display"
	"github.com/relabs-tech/autorotate/internal/rotator"
	"github.com/relabs-tech/autorotate/internal/sensors"
	"github.com/relabs-tech/autorotate/internal/timeutil"
	"github.com/relabs-tech/autorotate/internal/tools"
)

// Deps are the host facilities the daemon talks to. Zero fields fall back
// to the real system.
type Deps struct {
	FS        sensors.FileSystem
	Processes backend.ProcessLister
	Runner    tools.CommandRunner
	Clock     timeutil.Clock
	// Observers are notified in addition to the MQTT publisher.
	Observers []rotator.Observer
}

func (d Deps) withDefaults() Deps {
	if d.FS == nil {
		d.FS = sensors.OSFileSystem{}
	}
	if d.Processes == nil {
		d.Processes = backend.SystemProcesses
	}
	if d.Runner == nil {
		d.Runner = tools.ExecRunner{}
	}
	if d.Clock == nil {
		d.Clock = timeutil.RealClock{}
	}
	return d
}

// RunOptions are per-invocation switches that do not belong in the config file.
type RunOptions struct {
	// DryRun logs rotations instead of running swaymsg and skips backend detection.
	DryRun bool
}

// BuildSource returns the accelerometer source selected by cfg.SensorSource.
func BuildSource(cfg *config.Config, fsys sensors.FileSystem) (sensors.Source, error) {
	switch cfg.SensorSource {
	case config.SourceIIO, "":
		return sensors.NewIIOSource(fsys, cfg.SensorPattern), nil
	case config.SourceMPU9250:
		return sensors.NewMPU9250Source(sensors.MPU9250Options{
			SPIDevice:  cfg.MPU9250SPIDevice,
			CSPin:      cfg.MPU9250CSPin,
			AccelRange: cfg.MPU9250AccelRange,
		})
	case config.SourceMock:
		return sensors.NewMockSource(mockDwell, float64(cfg.NormalizationFactor)), nil
	default:
		return nil, fmt.Errorf("unknown sensor source %q", cfg.SensorSource)
	}
}

// BuildController detects the display backend and returns the controller
// that drives it.
func BuildController(deps Deps, run RunOptions) (display.Controller, error) {
	if run.DryRun {
		log.Info().Msg("dry run: rotations are logged, not applied")
		return display.LogController{}, nil
	}
	b, err := backend.Detect(deps.Processes)
	if err != nil {
		return nil, err
	}
	log.Info().Str("backend", b.String()).Msg("display backend detected")
	if !b.SupportsRotation() {
		log.Warn().Str("backend", b.String()).Msg("backend cannot rotate; the first orientation change will fail")
	}
	return display.New(b, deps.Runner), nil
}

// RunRotator runs the autorotation daemon until ctx is cancelled, a
// one-shot rotation is applied, or a sensor or display error occurs.
func RunRotator(ctx context.Context, cfg *config.Config, run RunOptions, deps Deps) error {
	deps = deps.withDefaults()
	log.Info().
		Str("display", cfg.Display).
		Dur("sleep", cfg.Sleep).
		Float32("threshold", cfg.Threshold).
		Float32("normalization", cfg.NormalizationFactor).
		Bool("keyboard", cfg.Keyboard).
		Bool("oneshot", cfg.OneShot).
		Str("sensor_source", cfg.SensorSource).
		Msg("starting autorotate")
	if len(cfg.Touchscreens) > 0 {
		log.Warn().Strs("touchscreens", cfg.Touchscreens).Msg("touchscreen mapping is not implemented; ignoring")
	}

	src, err := BuildSource(cfg, deps.FS)
	if err != nil {
		return err
	}
	ctrl, err := BuildController(deps, run)
	if err != nil {
		return err
	}

	observers := append([]rotator.Observer(nil), deps.Observers...)
	if cfg.MQTTBroker != "" {
		client, err := connectMQTT(cfg, "")
		if err != nil {
			return err
		}
		defer client.Disconnect(disconnectQuiesce)
		observers = append(observers, NewStatePublisher(client, cfg.TopicState))
	}

	loop := rotator.New(src, ctrl, deps.Clock, rotator.Options{
		Output:        cfg.Display,
		Sleep:         cfg.Sleep,
		Threshold:     cfg.Threshold,
		Normalization: cfg.NormalizationFactor,
		Keyboard:      cfg.Keyboard,
		OneShot:       cfg.OneShot,
	}, observers...)

	if err := loop.Run(ctx); err != nil {
		return err
	}
	log.Info().Str("state", loop.State().String()).Msg("autorotate stopped")
	return nil
}
