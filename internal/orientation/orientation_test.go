// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/autorotate/internal/imu"
)

const million = float32(1_000_000)

func reading(x, y, z int32) []imu.AxisReading {
	return []imu.AxisReading{
		{Source: "device1", X: x, Y: y, Z: z},
		{Source: "device3", X: 0, Y: 0, Z: -1_000_000},
	}
}

func TestClassifyWorkedExamples(t *testing.T) {
	tests := []struct {
		name string
		x, y int32
		want State
	}{
		{name: "upright", x: 0, y: -1_000_000, want: StateNormal},
		{name: "upside down", x: 0, y: 1_000_000, want: State180},
		{name: "left edge down", x: -1_000_000, y: 0, want: State90},
		{name: "right edge down", x: 1_000_000, y: 0, want: State270},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(reading(tc.x, tc.y, 0), 0.2, million)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatchExactReferenceAnyPositiveThreshold(t *testing.T) {
	for _, ref := range References() {
		for _, threshold := range []float32{1e-6, 0.01, 0.2, 1, 5, 100} {
			got, d, ok := Match(ref.Vector, threshold)
			require.True(t, ok, "ref=%s threshold=%v", ref.State, threshold)
			// A huge threshold lets the first catalog entry win, so only
			// check identity while the threshold keeps neighbours out.
			if threshold <= 2 {
				assert.Equal(t, ref.State, got.State, "threshold=%v", threshold)
				assert.Equal(t, float32(0), d)
			}
		}
	}
}

func TestMatchLargeThresholdCatalogOrderWins(t *testing.T) {
	// (1,0) is exactly the 270 reference, but normal is 2 away and comes
	// first in the catalog, so any threshold above 2 resolves to normal.
	got, d, ok := Match(Vector{X: 1, Y: 0}, 5)
	require.True(t, ok)
	assert.Equal(t, StateNormal, got.State)
	assert.Equal(t, float32(2), d)

	assert.Equal(t, StateNormal, Classify(reading(1_000_000, 0, 0), 5, million))
	assert.Equal(t, State270, Classify(reading(1_000_000, 0, 0), 2, million),
		"at exactly 2 the strict comparison excludes normal")
}

func TestClassifyFallbackWhenNothingWithinThreshold(t *testing.T) {
	t.Run("zero threshold", func(t *testing.T) {
		for _, r := range [][3]int32{
			{1_000_000, 0, 0},
			{0, 1_000_000, 0},
			{-1_000_000, 0, 0},
			{123, -456, 789},
		} {
			got := Classify(reading(r[0], r[1], r[2]), 0, million)
			assert.Equal(t, StateNormal, got, "reading=%v", r)
		}
	})

	t.Run("flat on a table", func(t *testing.T) {
		got := Classify(reading(0, 0, 1_000_000), 0.2, million)
		assert.Equal(t, StateNormal, got)

		_, _, ok := Match(Vector{}, 0.2)
		assert.False(t, ok)
	})

	t.Run("no readings", func(t *testing.T) {
		assert.Equal(t, StateNormal, Classify(nil, 0.2, million))
	})
}

func TestClassifyUsesStrictComparison(t *testing.T) {
	// (0.5, 0) sits at squared distance 0.25 from the 270 reference.
	v := Vector{X: 0.5, Y: 0}
	_, _, ok := Match(v, 0.25)
	assert.False(t, ok)

	ref, d, ok := Match(v, 0.2501)
	require.True(t, ok)
	assert.Equal(t, State270, ref.State)
	assert.InDelta(t, 0.25, d, 1e-6)
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Equidistant from normal and 270; a wide threshold admits both.
	v := Vector{X: 0.5, Y: -0.5}
	ref, _, ok := Match(v, 1)
	require.True(t, ok)
	assert.Equal(t, StateNormal, ref.State)
}

func TestClassifyIgnoresSecondSensor(t *testing.T) {
	readings := []imu.AxisReading{
		{X: 1_000_000, Y: 0},
		{X: 0, Y: 1_000_000},
	}
	assert.Equal(t, State270, Classify(readings, 0.2, million))
}

func TestClassifyDeterministic(t *testing.T) {
	readings := reading(-812_345, 90_001, 17)
	first := Classify(readings, 0.2, million)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Classify(readings, 0.2, million))
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize(imu.AxisReading{X: 0, Y: -1_000_000, Z: 5}, million)
	assert.Equal(t, Vector{X: 0, Y: -1}, v)

	v = Normalize(imu.AxisReading{X: 512, Y: -256}, 512)
	assert.Equal(t, Vector{X: 1, Y: -0.5}, v)
}

func TestReferencesCatalog(t *testing.T) {
	refs := References()
	require.Len(t, refs, 4)
	assert.Equal(t, []State{StateNormal, State180, State90, State270},
		[]State{refs[0].State, refs[1].State, refs[2].State, refs[3].State})

	refs[0].State = State90
	assert.Equal(t, StateNormal, References()[0].State, "catalog must not be mutable through the copy")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unset", StateUnset.String())
	assert.Equal(t, "normal", StateNormal.String())
	assert.Equal(t, "270", State270.String())
}
