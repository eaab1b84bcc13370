// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/autorotate/internal/imu"
	"github.com/relabs-tech/autorotate/internal/orientation"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
	dwell time.Duration
	scale float64
}

// NewMockSource creates a source that holds the device in each catalog
// orientation for dwell before turning to the next one, with a small
// wobble on top. scale is the raw value of 1g.
func NewMockSource(dwell time.Duration, scale float64) Source {
	return newMockSource(time.Now, dwell, scale)
}

func newMockSource(now func() time.Time, dwell time.Duration, scale float64) *mockSource {
	if dwell <= 0 {
		dwell = 5 * time.Second
	}
	return &mockSource{start: now(), now: now, dwell: dwell, scale: scale}
}

func (m *mockSource) Read() ([]imu.AxisReading, error) {
	elapsed := m.now().Sub(m.start)
	refs := orientation.References()
	ref := refs[int(elapsed/m.dwell)%len(refs)]

	wobble := 0.05 * math.Sin(elapsed.Seconds()*3)
	x := (float64(ref.Vector.X) + wobble) * m.scale
	y := (float64(ref.Vector.Y) - wobble) * m.scale

	return []imu.AxisReading{
		{Source: "mock", X: int32(x), Y: int32(y), Z: int32(0.1 * m.scale)},
		{Source: "mock-base", X: 0, Y: 0, Z: int32(-m.scale)},
	}, nil
}
