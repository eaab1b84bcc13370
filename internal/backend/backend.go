// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package backend detects which display server is running.
package backend

import (
	"errors"
	"fmt"

	ps "github.com/mitchellh/go-ps"
)

// ErrNoBackendDetected is returned when no supported display server is running.
var ErrNoBackendDetected = errors.New("no supported display backend detected")

// Backend identifies the display server whose commands the controller targets.
type Backend int

const (
	Sway Backend = iota + 1
	Xorg
)

func (b Backend) String() string {
	switch b {
	case Sway:
		return "sway"
	case Xorg:
		return "xorg"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// SupportsRotation reports whether output rotation is implemented for b.
func (b Backend) SupportsRotation() bool {
	return b == Sway
}

// SupportsKeyboard reports whether keyboards can be listed and toggled on b.
func (b Backend) SupportsKeyboard() bool {
	return b == Sway
}

// ProcessLister returns the processes currently running on the host.
type ProcessLister func() ([]ps.Process, error)

// SystemProcesses lists host processes through go-ps.
var SystemProcesses ProcessLister = ps.Processes

var (
	swayExecutables = []string{"sway"}
	xorgExecutables = []string{"Xorg", "X"}
)

// Detect picks Sway when a sway process is running, otherwise Xorg when
// an Xorg or X process is running.
func Detect(list ProcessLister) (Backend, error) {
	procs, err := list()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	running := make(map[string]bool, len(procs))
	for _, p := range procs {
		running[p.Executable()] = true
	}

	if anyRunning(running, swayExecutables) {
		return Sway, nil
	}
	if anyRunning(running, xorgExecutables) {
		return Xorg, nil
	}
	return 0, fmt.Errorf("%w: none of %v or %v is running", ErrNoBackendDetected, swayExecutables, xorgExecutables)
}

func anyRunning(running map[string]bool, names []string) bool {
	for _, n := range names {
		if running[n] {
			return true
		}
	}
	return false
}
