// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/autorotate/internal/sensors"
	"github.com/relabs-tech/autorotate/internal/timeutil"
)

// CalibrationOptions control a calibration run.
type CalibrationOptions struct {
	Samples   int
	Interval  time.Duration
	// OutputDir receives a JSON copy of the result when not empty.
	OutputDir string
}

// CalibrationResult summarises a stationary sampling of the first
// accelerometer. Magnitude is the mean length of the raw gravity vector,
// which is the value NORMALIZATION_FACTOR should be set to.
type CalibrationResult struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Samples   int       `json:"samples"`

	MeanX   float64 `json:"mean_x"`
	MeanY   float64 `json:"mean_y"`
	MeanZ   float64 `json:"mean_z"`
	StdDevX float64 `json:"stddev_x"`
	StdDevY float64 `json:"stddev_y"`
	StdDevZ float64 `json:"stddev_z"`

	Magnitude       float64 `json:"magnitude"`
	MagnitudeStdDev float64 `json:"magnitude_stddev"`
}

// SuggestedNormalization is the factor that maps 1g onto a unit vector.
func (r CalibrationResult) SuggestedNormalization() float32 {
	return float32(math.Round(r.Magnitude))
}

// Summarize computes the calibration statistics over raw samples.
func Summarize(source string, samples [][3]float64) (CalibrationResult, error) {
	if len(samples) == 0 {
		return CalibrationResult{}, errors.New("calibration needs at least one sample")
	}
	mags := make([][3]float64, len(samples))
	for i, s := range samples {
		mags[i][0] = math.Sqrt(s[0]*s[0] + s[1]*s[1] + s[2]*s[2])
	}
	return CalibrationResult{
		Version:         1,
		Source:          source,
		Samples:         len(samples),
		MeanX:           mean(samples, 0),
		MeanY:           mean(samples, 1),
		MeanZ:           mean(samples, 2),
		StdDevX:         stddev(samples, 0),
		StdDevY:         stddev(samples, 1),
		StdDevZ:         stddev(samples, 2),
		Magnitude:       mean(mags, 0),
		MagnitudeStdDev: stddev(mags, 0),
	}, nil
}

// RunCalibration samples src while the device lies still and prints the
// suggested NORMALIZATION_FACTOR to w.
func RunCalibration(ctx context.Context, src sensors.Source, clock timeutil.Clock, opts CalibrationOptions, w io.Writer) (CalibrationResult, error) {
	if opts.Samples <= 0 {
		return CalibrationResult{}, fmt.Errorf("invalid sample count %d", opts.Samples)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	samples := make([][3]float64, 0, opts.Samples)
	source := ""
	for i := 0; i < opts.Samples; i++ {
		readings, err := src.Read()
		if err != nil {
			return CalibrationResult{}, err
		}
		if len(readings) == 0 {
			return CalibrationResult{}, fmt.Errorf("%w: no accelerometer readings", sensors.ErrSensorRead)
		}
		r := readings[0]
		source = r.Source
		samples = append(samples, [3]float64{float64(r.X), float64(r.Y), float64(r.Z)})

		if i < opts.Samples-1 {
			if err := timeutil.Sleep(ctx, clock, opts.Interval); err != nil {
				return CalibrationResult{}, err
			}
		}
	}

	res, err := Summarize(source, samples)
	if err != nil {
		return CalibrationResult{}, err
	}
	res.Timestamp = clock.Now()

	fmt.Fprintf(w, "source:     %s (%d samples)\n", res.Source, res.Samples)
	fmt.Fprintf(w, "mean:       x=%.1f y=%.1f z=%.1f\n", res.MeanX, res.MeanY, res.MeanZ)
	fmt.Fprintf(w, "stddev:     x=%.1f y=%.1f z=%.1f\n", res.StdDevX, res.StdDevY, res.StdDevZ)
	fmt.Fprintf(w, "|g|:        %.1f ± %.1f\n", res.Magnitude, res.MagnitudeStdDev)
	fmt.Fprintf(w, "NORMALIZATION_FACTOR=%.0f\n", res.SuggestedNormalization())

	if opts.OutputDir != "" {
		path, err := saveCalibration(opts.OutputDir, res)
		if err != nil {
			return res, err
		}
		log.Info().Str("path", path).Msg("calibration saved")
	}
	return res, nil
}

func saveCalibration(dir string, res CalibrationResult) (string, error) {
	name := fmt.Sprintf("%s_%d_autorotate_calibration.json", sanitizeName(res.Source), res.Timestamp.Unix())
	path := filepath.Join(dir, name)
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal calibration result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write calibration file: %w", err)
	}
	return path, nil
}

// sanitizeName replaces characters that are awkward in file names, such
// as the colon in "iio:device1".
func sanitizeName(s string) string {
	if s == "" {
		return "sensor"
	}
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			b[i] = '_'
		}
	}
	return string(b)
}

func mean(data [][3]float64, axis int) float64 {
	sum := 0.0
	for _, v := range data {
		sum += v[axis]
	}
	return sum / float64(len(data))
}

func stddev(data [][3]float64, axis int) float64 {
	if len(data) == 0 {
		return 0
	}
	m := mean(data, axis)
	variance := 0.0
	for _, v := range data {
		diff := v[axis] - m
		variance += diff * diff
	}
	variance /= float64(len(data))
	return math.Sqrt(variance)
}
