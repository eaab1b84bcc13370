// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors produces raw accelerometer readings for the rotation loop.
package sensors

import (
	"errors"

	"github.com/relabs-tech/autorotate/internal/imu"
)

// ErrSensorRead is wrapped by every failure to obtain a sensor value:
// missing files, unparsable contents, unexpected path counts, bus errors.
var ErrSensorRead = errors.New("sensor read failure")

// Source is anything that can provide accelerometer readings on demand.
// The first reading is the one used for classification.
type Source interface {
	Read() ([]imu.AxisReading, error)
}
