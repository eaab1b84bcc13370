// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display applies orientation states to the running display server.
package display

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/autorotate/internal/backend"
	"github.com/relabs-tech/autorotate/internal/orientation"
	"github.com/relabs-tech/autorotate/internal/tools"
)

// ErrUnsupportedBackend is returned when an operation has no
// implementation for the detected backend.
var ErrUnsupportedBackend = errors.New("unsupported display backend")

// Controller applies orientation changes to the screen and input devices.
type Controller interface {
	// ApplyRotation sets the transform of the named output.
	ApplyRotation(output string, state orientation.State) error
	// ApplyKeyboardState enables every keyboard for StateNormal and
	// disables them for any other state.
	ApplyKeyboardState(state orientation.State) error
}

const swaymsg = "swaymsg"

// CommandController drives the display server through its command-line client.
type CommandController struct {
	backend backend.Backend
	runner  tools.CommandRunner
}

// New returns a controller for b that executes commands through runner.
func New(b backend.Backend, runner tools.CommandRunner) *CommandController {
	return &CommandController{backend: b, runner: runner}
}

// Backend returns the backend this controller targets.
func (c *CommandController) Backend() backend.Backend {
	return c.backend
}

// ApplyRotation runs `swaymsg output <output> transform <state>`.
func (c *CommandController) ApplyRotation(output string, state orientation.State) error {
	if !c.backend.SupportsRotation() {
		return fmt.Errorf("%w: rotation is not implemented for %s", ErrUnsupportedBackend, c.backend)
	}
	if _, err := c.runner.Run(swaymsg, "output", output, "transform", string(state)); err != nil {
		return fmt.Errorf("rotate %s to %s: %w", output, state, err)
	}
	return nil
}

// ApplyKeyboardState toggles event delivery for every keyboard, one at a
// time. The first failing keyboard aborts the rest.
func (c *CommandController) ApplyKeyboardState(state orientation.State) error {
	keyboards, err := c.Keyboards()
	if err != nil {
		return err
	}

	mode := KeyboardMode(state)
	for _, kb := range keyboards {
		if _, err := c.runner.Run(swaymsg, "input", quoteIdentifier(kb), "events", mode); err != nil {
			return fmt.Errorf("%s keyboard %s: %w", mode, kb, err)
		}
		log.Debug().Str("keyboard", kb).Str("events", mode).Msg("keyboard updated")
	}
	return nil
}

// KeyboardMode maps a state onto the swaymsg events argument.
func KeyboardMode(state orientation.State) string {
	if state == orientation.StateNormal {
		return "enable"
	}
	return "disable"
}

type swayInput struct {
	Identifier string `json:"identifier"`
	Type       string `json:"type"`
}

// Keyboards returns the identifiers of all keyboard-type input devices.
// Backends without keyboard support report none.
func (c *CommandController) Keyboards() ([]string, error) {
	if !c.backend.SupportsKeyboard() {
		return nil, nil
	}

	res, err := c.runner.Run(swaymsg, "-t", "get_inputs", "--raw")
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}

	var inputs []swayInput
	if err := json.Unmarshal(res.Stdout, &inputs); err != nil {
		return nil, fmt.Errorf("%w: decode swaymsg get_inputs output: %v", tools.ErrCommandFailed, err)
	}

	var keyboards []string
	for _, in := range inputs {
		if in.Type == "keyboard" {
			keyboards = append(keyboards, in.Identifier)
		}
	}
	return keyboards, nil
}

// quoteIdentifier wraps an input identifier in double quotes so sway's
// command parser keeps it as a single token.
func quoteIdentifier(id string) string {
	b, err := json.Marshal(id)
	if err != nil {
		return id
	}
	return string(b)
}
