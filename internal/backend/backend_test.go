// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package backend

import (
	"errors"
	"testing"

	ps "github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

func running(names ...string) ProcessLister {
	return func() ([]ps.Process, error) {
		procs := []ps.Process{fakeProcess{pid: 1, name: "systemd"}}
		for i, n := range names {
			procs = append(procs, fakeProcess{pid: 100 + i, name: n})
		}
		return procs, nil
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		procs []string
		want  Backend
	}{
		{name: "sway", procs: []string{"sway", "waybar"}, want: Sway},
		{name: "sway wins over xwayland", procs: []string{"Xorg", "sway"}, want: Sway},
		{name: "xorg", procs: []string{"Xorg"}, want: Xorg},
		{name: "bare X", procs: []string{"X", "i3"}, want: Xorg},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Detect(running(tc.procs...))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectNothingRunning(t *testing.T) {
	_, err := Detect(running("bash", "swayidle"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoBackendDetected)
}

func TestDetectListError(t *testing.T) {
	boom := errors.New("proc unavailable")
	_, err := Detect(func() ([]ps.Process, error) { return nil, boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNoBackendDetected)
}

func TestCapabilities(t *testing.T) {
	assert.True(t, Sway.SupportsRotation())
	assert.True(t, Sway.SupportsKeyboard())
	assert.False(t, Xorg.SupportsRotation())
	assert.False(t, Xorg.SupportsKeyboard())
	assert.False(t, Backend(0).SupportsRotation())

	assert.Equal(t, "sway", Sway.String())
	assert.Equal(t, "xorg", Xorg.String())
	assert.Equal(t, "backend(7)", Backend(7).String())
}
