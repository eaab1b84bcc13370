// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// AxisReading is a single raw accelerometer sample.
type AxisReading struct {
	Source string `json:"source"` // "iio:device1", "mpu9250", "mock", ...

	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"` // not used for classification
}
