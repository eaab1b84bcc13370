// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/autorotate/internal/backend"
	"github.com/relabs-tech/autorotate/internal/config"
	"github.com/relabs-tech/autorotate/internal/display"
	"github.com/relabs-tech/autorotate/internal/rotator"
	"github.com/relabs-tech/autorotate/internal/sensors"
	"github.com/relabs-tech/autorotate/internal/testutil/testlog"
	"github.com/relabs-tech/autorotate/internal/timeutil"
	"github.com/relabs-tech/autorotate/internal/tools"
)

type proc string

func (p proc) Pid() int           { return 1 }
func (p proc) PPid() int          { return 0 }
func (p proc) Executable() string { return string(p) }

func processes(names ...string) backend.ProcessLister {
	return func() ([]ps.Process, error) {
		out := make([]ps.Process, len(names))
		for i, n := range names {
			out[i] = proc(n)
		}
		return out, nil
	}
}

const iioDevices = "/sys/bus/iio/devices"

// tabletSysfs lays out two accelerometers with the first one at (x, y).
func tabletSysfs(x, y string) *sensors.MemoryFileSystem {
	fsys := sensors.NewMemoryFileSystem()
	values := map[string]string{"x": x, "y": y, "z": "0"}
	for _, dev := range []string{"iio:device1", "iio:device3"} {
		for _, axis := range []string{"x", "y", "z"} {
			v := values[axis]
			if dev == "iio:device3" {
				v = "0"
			}
			fsys.WriteFile(iioDevices+"/"+dev+"/in_accel_"+axis+"_raw", []byte(v+"\n"))
		}
	}
	return fsys
}

func swayInputs() *tools.RecordingRunner {
	return &tools.RecordingRunner{
		Respond: func(name string, args []string) (tools.Result, error) {
			if tools.CommandLine(name, args...) == "swaymsg -t get_inputs --raw" {
				return tools.Result{Stdout: []byte(`[{"identifier":"1:1:AT_Translated_Set_2_keyboard","type":"keyboard"}]`)}, nil
			}
			return tools.Result{}, nil
		},
	}
}

func TestRunRotatorOneShotOnSway(t *testing.T) {
	testlog.Start(t)
	cfg := config.Default()
	cfg.OneShot = true
	cfg.Keyboard = true
	runner := swayInputs()

	var events []rotator.Event
	err := RunRotator(context.Background(), cfg, RunOptions{}, Deps{
		FS:        tabletSysfs("-1000000", "0"),
		Processes: processes("systemd", "sway", "foot"),
		Runner:    runner,
		Clock:     timeutil.NewMockClock(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)),
		Observers: []rotator.Observer{rotator.ObserverFunc(func(e rotator.Event) { events = append(events, e) })},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"swaymsg output eDP-1 transform 90",
		"swaymsg -t get_inputs --raw",
		`swaymsg input "1:1:AT_Translated_Set_2_keyboard" events disable`,
	}, runner.Lines())
	require.Len(t, events, 1)
	assert.Equal(t, "iio:device1", events[0].Reading.Source)
}

func TestRunRotatorNoBackend(t *testing.T) {
	testlog.Start(t)
	runner := &tools.RecordingRunner{}
	err := RunRotator(context.Background(), config.Default(), RunOptions{}, Deps{
		FS:        tabletSysfs("0", "-1000000"),
		Processes: processes("systemd", "bash"),
		Runner:    runner,
	})
	assert.ErrorIs(t, err, backend.ErrNoBackendDetected)
	assert.Empty(t, runner.Commands())
}

func TestRunRotatorXorgCannotRotate(t *testing.T) {
	testlog.Start(t)
	runner := &tools.RecordingRunner{}
	err := RunRotator(context.Background(), config.Default(), RunOptions{}, Deps{
		FS:        tabletSysfs("0", "-1000000"),
		Processes: processes("Xorg"),
		Runner:    runner,
		Clock:     timeutil.NewMockClock(time.Time{}),
	})
	assert.ErrorIs(t, err, display.ErrUnsupportedBackend)
	assert.Empty(t, runner.Commands())
}

func TestRunRotatorSensorFailure(t *testing.T) {
	testlog.Start(t)
	err := RunRotator(context.Background(), config.Default(), RunOptions{}, Deps{
		FS:        sensors.NewMemoryFileSystem(),
		Processes: processes("sway"),
		Runner:    &tools.RecordingRunner{},
	})
	assert.ErrorIs(t, err, sensors.ErrSensorRead)
}

func TestRunRotatorDryRunSkipsDetection(t *testing.T) {
	testlog.Start(t)
	cfg := config.Default()
	cfg.OneShot = true
	runner := &tools.RecordingRunner{}
	lister := func() ([]ps.Process, error) {
		t.Fatal("dry run must not probe processes")
		return nil, nil
	}

	err := RunRotator(context.Background(), cfg, RunOptions{DryRun: true}, Deps{
		FS:        tabletSysfs("0", "1000000"),
		Processes: lister,
		Runner:    runner,
	})
	require.NoError(t, err)
	assert.Empty(t, runner.Commands())
}

func TestRunRotatorStopsOnCancel(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &tools.RecordingRunner{}
	err := RunRotator(ctx, config.Default(), RunOptions{}, Deps{
		FS:        tabletSysfs("0", "-1000000"),
		Processes: processes("sway"),
		Runner:    runner,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"swaymsg output eDP-1 transform normal"}, runner.Lines(),
		"the first tick still runs before cancellation is observed")
}

func TestBuildSource(t *testing.T) {
	cfg := config.Default()
	src, err := BuildSource(cfg, sensors.NewMemoryFileSystem())
	require.NoError(t, err)
	assert.IsType(t, &sensors.IIOSource{}, src)

	cfg.SensorSource = config.SourceMock
	src, err = BuildSource(cfg, nil)
	require.NoError(t, err)
	readings, err := src.Read()
	require.NoError(t, err)
	assert.Len(t, readings, 2)

	cfg.SensorSource = "hall"
	_, err = BuildSource(cfg, nil)
	assert.Error(t, err)
}
