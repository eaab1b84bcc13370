// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package testlog

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/autorotate/internal/logging"
)

// Start configures test logging and tags the output with the test name.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Debug().Str("test", t.Name()).Msg("start")
}
