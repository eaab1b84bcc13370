// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/autorotate/internal/imu"
)

// MPU9250Options selects the SPI wiring of an MPU9250 board.
type MPU9250Options struct {
	SPIDevice  string // e.g. "/dev/spidev0.0"
	CSPin      string // GPIO name of the chip-select line, e.g. "8"
	AccelRange byte   // 0=±2g, 1=±4g, 2=±8g, 3=±16g
}

type mpu9250Source struct {
	name string
	imu  *mpu9250.MPU9250
}

// NewMPU9250Source initializes an MPU9250 over SPI and returns a Source
// yielding its accelerometer axes as a single reading.
func NewMPU9250Source(opts MPU9250Options) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: periph host init: %v", ErrSensorRead, err)
	}

	cs := gpioreg.ByName(opts.CSPin)
	if cs == nil {
		return nil, fmt.Errorf("%w: MPU9250 CS pin %q not found", ErrSensorRead, opts.CSPin)
	}

	tr, err := mpu9250.NewSpiTransport(opts.SPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("%w: MPU9250 SPI transport (%s): %v", ErrSensorRead, opts.SPIDevice, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("%w: MPU9250 device creation: %v", ErrSensorRead, err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("%w: MPU9250 initialization: %v", ErrSensorRead, err)
	}
	if opts.AccelRange > 3 {
		return nil, fmt.Errorf("%w: MPU9250 accel range must be 0-3, got %d", ErrSensorRead, opts.AccelRange)
	}
	if err := dev.SetAccelRange(opts.AccelRange); err != nil {
		return nil, fmt.Errorf("%w: MPU9250 set accel range: %v", ErrSensorRead, err)
	}
	log.Info().
		Str("spi", opts.SPIDevice).
		Int("accel_range_g", []int{2, 4, 8, 16}[opts.AccelRange]).
		Msg("MPU9250 accelerometer ready")

	// Calibration only trims bias; a failure still leaves usable readings.
	if err := dev.Calibrate(); err != nil {
		log.Warn().Err(err).Msg("MPU9250 calibration failed")
	}

	return &mpu9250Source{name: "mpu9250:" + opts.SPIDevice, imu: dev}, nil
}

// Read samples the three accelerometer axes.
func (s *mpu9250Source) Read() ([]imu.AxisReading, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return nil, fmt.Errorf("%w: %s accel X: %v", ErrSensorRead, s.name, err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return nil, fmt.Errorf("%w: %s accel Y: %v", ErrSensorRead, s.name, err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return nil, fmt.Errorf("%w: %s accel Z: %v", ErrSensorRead, s.name, err)
	}

	return []imu.AxisReading{{
		Source: s.name,
		X:      int32(ax),
		Y:      int32(ay),
		Z:      int32(az),
	}}, nil
}
