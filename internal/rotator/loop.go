// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package rotator runs the poll → classify → apply cycle.
package rotator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/autorotate/internal/display"
	"github.com/relabs-tech/autorotate/internal/imu"
	"github.com/relabs-tech/autorotate/internal/orientation"
	"github.com/relabs-tech/autorotate/internal/sensors"
	"github.com/relabs-tech/autorotate/internal/timeutil"
)

// Options are the loop's operational parameters.
type Options struct {
	Output        string        // output name passed to the controller, e.g. "eDP-1"
	Sleep         time.Duration // pause between ticks
	Threshold     float32       // squared-distance match threshold
	Normalization float32       // raw value that maps to 1.0
	Keyboard      bool          // toggle keyboards along with rotation
	OneShot       bool          // stop after the first applied change
}

// Event describes one applied state change.
type Event struct {
	State    orientation.State  `json:"state"`
	Previous orientation.State  `json:"previous"`
	Vector   orientation.Vector `json:"vector"`
	Reading  imu.AxisReading    `json:"reading"`
	Time     time.Time          `json:"time"`
}

// Observer is notified after every successfully applied change.
type Observer interface {
	StateApplied(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) StateApplied(e Event) { f(e) }

// Loop owns the last applied state and applies each change exactly once.
type Loop struct {
	source     sensors.Source
	controller display.Controller
	clock      timeutil.Clock
	opts       Options
	observers  []Observer

	last orientation.State
}

// New returns a loop that has not applied any state yet.
func New(src sensors.Source, ctrl display.Controller, clock timeutil.Clock, opts Options, observers ...Observer) *Loop {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Loop{
		source:     src,
		controller: ctrl,
		clock:      clock,
		opts:       opts,
		observers:  observers,
	}
}

// State returns the last applied state, StateUnset before the first apply.
func (l *Loop) State() orientation.State {
	return l.last
}

// Step runs a single poll cycle and reports whether a new state was applied.
// Errors from the sensor read or from the controller are returned as is
// and leave the last applied state untouched.
func (l *Loop) Step() (bool, error) {
	readings, err := l.source.Read()
	if err != nil {
		return false, err
	}

	state := orientation.Classify(readings, l.opts.Threshold, l.opts.Normalization)
	var vec orientation.Vector
	var first imu.AxisReading
	if len(readings) > 0 {
		first = readings[0]
		vec = orientation.Normalize(first, l.opts.Normalization)
	}
	log.Debug().
		Float32("x", vec.X).
		Float32("y", vec.Y).
		Stringer("state", state).
		Msg("tick")

	if state == l.last {
		return false, nil
	}

	if err := l.controller.ApplyRotation(l.opts.Output, state); err != nil {
		return false, err
	}
	if l.opts.Keyboard {
		if err := l.controller.ApplyKeyboardState(state); err != nil {
			return false, err
		}
	}

	ev := Event{
		State:    state,
		Previous: l.last,
		Vector:   vec,
		Reading:  first,
		Time:     l.clock.Now(),
	}
	l.last = state
	log.Info().
		Str("output", l.opts.Output).
		Stringer("from", ev.Previous).
		Stringer("to", ev.State).
		Msg("orientation applied")

	for _, o := range l.observers {
		o.StateApplied(ev)
	}
	return true, nil
}

// Run polls until an error occurs, ctx is cancelled, or, in one-shot
// mode, the first change has been applied. Cancellation is only observed
// between ticks and ends the loop without error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		applied, err := l.Step()
		if err != nil {
			return err
		}
		if applied && l.opts.OneShot {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		if err := timeutil.Sleep(ctx, l.clock, l.opts.Sleep); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info().Msg("rotation loop stopped")
				return nil
			}
			return err
		}
	}
}
