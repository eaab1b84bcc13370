// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/relabs-tech/autorotate/internal/config"
	"github.com/relabs-tech/autorotate/internal/orientation"
	"github.com/relabs-tech/autorotate/internal/sensors"
	"github.com/relabs-tech/autorotate/internal/timeutil"
)

const (
	mockDwell       = 3 * time.Second
	consoleInterval = 100 * time.Millisecond
)

// RunMockConsole prints what the classifier makes of src every tick. With
// a nil src the simulated tablet is used. ticks <= 0 runs until ctx ends.
func RunMockConsole(ctx context.Context, cfg *config.Config, src sensors.Source, clock timeutil.Clock, w io.Writer, ticks int) error {
	if src == nil {
		src = sensors.NewMockSource(mockDwell, float64(cfg.NormalizationFactor))
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	for i := 0; ticks <= 0 || i < ticks; i++ {
		readings, err := src.Read()
		if err != nil {
			return err
		}
		state := orientation.Classify(readings, cfg.Threshold, cfg.NormalizationFactor)
		var v orientation.Vector
		if len(readings) > 0 {
			v = orientation.Normalize(readings[0], cfg.NormalizationFactor)
		}
		fmt.Fprintf(w, "X=%6.3f  Y=%6.3f  STATE=%s\n", v.X, v.Y, state)

		if err := timeutil.Sleep(ctx, clock, consoleInterval); err != nil {
			if contextDone(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

// contextDone reports whether err only signals that the caller's context
// ended, which the interactive commands treat as a normal exit.
func contextDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
