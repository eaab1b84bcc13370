// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/relabs-tech/autorotate/internal/imu"
)

// DefaultPattern matches the raw accelerometer axis files of every
// industrial-I/O device exposed by the kernel.
const DefaultPattern = "/sys/bus/iio/devices/iio:device*/in_accel_*_raw"

// AxisFileCount is the number of axis files expected from discovery:
// x, y, z for each of the two accelerometers.
const AxisFileCount = 6

// Discover returns the axis files matching pattern in the order fsys
// enumerates them.
//
// The result is deliberately not sorted. ReadAxes maps it positionally
// onto two devices, so a platform whose enumeration order differs from
// "device A x,y,z then device B x,y,z" will assign axes wrongly.
func Discover(fsys FileSystem, pattern string) ([]string, error) {
	paths, err := fsys.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: glob %q: %v", ErrSensorRead, pattern, err)
	}
	return paths, nil
}

// ReadAxes reads exactly six axis files, the first three for the first
// accelerometer and the last three for the second, and returns one
// reading per accelerometer.
func ReadAxes(fsys FileSystem, paths []string) ([]imu.AxisReading, error) {
	if len(paths) != AxisFileCount {
		return nil, fmt.Errorf("%w: expected %d accelerometer axis files, found %d",
			ErrSensorRead, AxisFileCount, len(paths))
	}

	readings := make([]imu.AxisReading, 0, 2)
	for dev := 0; dev < 2; dev++ {
		base := dev * 3
		var axes [3]int32
		for i := range axes {
			v, err := readAxis(fsys, paths[base+i])
			if err != nil {
				return nil, err
			}
			axes[i] = v
		}
		readings = append(readings, imu.AxisReading{
			Source: deviceName(paths[base]),
			X:      axes[0],
			Y:      axes[1],
			Z:      axes[2],
		})
	}
	return readings, nil
}

func readAxis(fsys FileSystem, path string) (int32, error) {
	raw, err := fsys.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrSensorRead, path, err)
	}
	text := strings.TrimSpace(string(raw))
	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: invalid value %q", ErrSensorRead, path, text)
	}
	return int32(v), nil
}

// deviceName returns the parent directory of an axis file, e.g. "iio:device1".
func deviceName(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// IIOSource reads accelerometers through the kernel industrial-I/O
// sysfs interface. Discovery runs on every Read so devices that appear
// after startup are picked up on the next tick.
type IIOSource struct {
	fs      FileSystem
	pattern string
}

// NewIIOSource returns a Source reading files matching pattern from fsys.
// An empty pattern selects DefaultPattern.
func NewIIOSource(fsys FileSystem, pattern string) *IIOSource {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &IIOSource{fs: fsys, pattern: pattern}
}

// Paths runs discovery without reading any values.
func (s *IIOSource) Paths() ([]string, error) {
	return Discover(s.fs, s.pattern)
}

// Read discovers the axis files and reads both accelerometers.
func (s *IIOSource) Read() ([]imu.AxisReading, error) {
	paths, err := s.Paths()
	if err != nil {
		return nil, err
	}
	return ReadAxes(s.fs, paths)
}
