// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"github.com/relabs-tech/autorotate/internal/imu"
)

// State is a discrete screen orientation. The values double as the
// output transform names understood by the compositor.
type State string

const (
	StateUnset  State = ""
	StateNormal State = "normal"
	State180    State = "180"
	State90     State = "90"
	State270    State = "270"
)

func (s State) String() string {
	if s == StateUnset {
		return "unset"
	}
	return string(s)
}

// Vector is a normalized accelerometer reading projected onto the x/y plane.
type Vector struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Reference pairs an anchor vector with the state it selects.
type Reference struct {
	Vector Vector
	State  State
}

// references is the classification catalog. Order matters: the first
// entry is the fallback and ties go to the earlier entry.
var references = [4]Reference{
	{Vector: Vector{X: 0, Y: -1}, State: StateNormal},
	{Vector: Vector{X: 0, Y: 1}, State: State180},
	{Vector: Vector{X: -1, Y: 0}, State: State90},
	{Vector: Vector{X: 1, Y: 0}, State: State270},
}

// References returns a copy of the catalog in match order.
func References() []Reference {
	out := make([]Reference, len(references))
	copy(out, references[:])
	return out
}

// Normalize divides the x and y axes of r by factor.
func Normalize(r imu.AxisReading, factor float32) Vector {
	return Vector{
		X: float32(r.X) / factor,
		Y: float32(r.Y) / factor,
	}
}

// SquaredDistance returns (a.x-b.x)^2 + (a.y-b.y)^2.
func SquaredDistance(a, b Vector) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Match walks the catalog and returns the first reference whose squared
// distance to v is strictly below threshold. When none is close enough it
// returns the first reference with matched=false.
func Match(v Vector, threshold float32) (ref Reference, distance float32, matched bool) {
	ref = references[0]
	distance = SquaredDistance(v, ref.Vector)
	for _, candidate := range references {
		d := SquaredDistance(v, candidate.Vector)
		if d < threshold {
			return candidate, d, true
		}
	}
	return ref, distance, false
}

// Classify maps the first accelerometer in readings to a State. Any
// further readings are ignored. It never fails: with no match, or with
// no readings at all, it returns StateNormal.
func Classify(readings []imu.AxisReading, threshold, normalization float32) State {
	if len(readings) == 0 {
		return references[0].State
	}
	ref, _, _ := Match(Normalize(readings[0], normalization), threshold)
	return ref.State
}
