// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package tools runs external commands (swaymsg and friends) on behalf of
// the display controller.
//
// Commands run synchronously with no timeout: a hung command blocks the
// caller until it exits.
package tools
