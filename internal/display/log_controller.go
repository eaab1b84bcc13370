// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/autorotate/internal/orientation"
)

// LogController only logs what it would do. It backs dry runs.
type LogController struct{}

func (LogController) ApplyRotation(output string, state orientation.State) error {
	log.Info().Str("output", output).Stringer("state", state).Msg("dry-run: rotate output")
	return nil
}

func (LogController) ApplyKeyboardState(state orientation.State) error {
	log.Info().Str("events", KeyboardMode(state)).Msg("dry-run: toggle keyboards")
	return nil
}
