// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/relabs-tech/autorotate/internal/config"
	"github.com/relabs-tech/autorotate/internal/imu"
	"github.com/relabs-tech/autorotate/internal/orientation"
	"github.com/relabs-tech/autorotate/internal/sensors"
	"github.com/relabs-tech/autorotate/internal/timeutil"
)

// ReferenceDistance is the squared distance from a reading to one catalog entry.
type ReferenceDistance struct {
	State    orientation.State `json:"state"`
	Distance float32           `json:"distance"`
	Within   bool              `json:"within"`
}

// SensorReport is everything the classifier sees for one poll.
type SensorReport struct {
	Paths     []string            `json:"paths,omitempty"`
	Readings  []imu.AxisReading   `json:"readings"`
	Vector    orientation.Vector  `json:"vector"`
	Distances []ReferenceDistance `json:"distances"`
	State     orientation.State   `json:"state"`
	Matched   bool                `json:"matched"`
}

type pathLister interface {
	Paths() ([]string, error)
}

// InspectSource reads src once and explains the classification.
func InspectSource(src sensors.Source, threshold, normalization float32) (SensorReport, error) {
	var report SensorReport
	if pl, ok := src.(pathLister); ok {
		paths, err := pl.Paths()
		if err != nil {
			return report, err
		}
		report.Paths = paths
	}

	readings, err := src.Read()
	if err != nil {
		return report, err
	}
	report.Readings = readings
	report.State = orientation.Classify(readings, threshold, normalization)
	if len(readings) == 0 {
		return report, nil
	}

	report.Vector = orientation.Normalize(readings[0], normalization)
	for _, ref := range orientation.References() {
		d := orientation.SquaredDistance(report.Vector, ref.Vector)
		report.Distances = append(report.Distances, ReferenceDistance{
			State:    ref.State,
			Distance: d,
			Within:   d < threshold,
		})
	}
	_, _, report.Matched = orientation.Match(report.Vector, threshold)
	return report, nil
}

// WriteSensorReport prints report in a human readable layout.
func WriteSensorReport(w io.Writer, report SensorReport, threshold float32) {
	for _, p := range report.Paths {
		fmt.Fprintf(w, "path      %s\n", p)
	}
	for _, r := range report.Readings {
		fmt.Fprintf(w, "reading   %-14s x=%9d y=%9d z=%9d\n", r.Source, r.X, r.Y, r.Z)
	}
	fmt.Fprintf(w, "vector    x=%7.4f y=%7.4f\n", report.Vector.X, report.Vector.Y)
	for _, d := range report.Distances {
		mark := " "
		if d.Within {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-7s d²=%7.4f (threshold %.3f)\n", mark, d.State, d.Distance, threshold)
	}
	suffix := ""
	if !report.Matched {
		suffix = " (fallback)"
	}
	fmt.Fprintf(w, "state     %s%s\n", report.State, suffix)
}

// RunSensorDebug prints a report every interval. count <= 0 runs until ctx ends.
func RunSensorDebug(ctx context.Context, cfg *config.Config, src sensors.Source, clock timeutil.Clock, interval time.Duration, count int, w io.Writer) error {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	for i := 0; count <= 0 || i < count; i++ {
		if i > 0 {
			if err := timeutil.Sleep(ctx, clock, interval); err != nil {
				if contextDone(err) {
					return nil
				}
				return err
			}
			fmt.Fprintln(w)
		}
		report, err := InspectSource(src, cfg.Threshold, cfg.NormalizationFactor)
		if err != nil {
			return err
		}
		WriteSensorReport(w, report, cfg.Threshold)
	}
	return nil
}
