// pkg/math/vec3.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

///////////////////////////////////////////////////////////////////////////
// point 3d

// Various useful functions for arithmetic with 3D points/vectors in a
// planar local frame (x, y east/north in meters, z altitude in meters).
// Names are brief in order to avoid clutter when they're used. Unlike the
// 2D variants used for rendering, these are float64: CPA and Kalman math
// accumulate across many small time steps and the extra precision avoids
// spurious numerical degeneracies.

type Vec3 [3]float64

// a+b
func Add3(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// a-b
func Sub3(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// a*s
func Scale3(a Vec3, s float64) Vec3 {
	return Vec3{a[0] * s, a[1] * s, a[2] * s}
}

func Dot3(a, b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Length of v
func Length3(v Vec3) float64 {
	return gomath.Sqrt(Dot3(v, v))
}

// Distance between two points
func Distance3(a, b Vec3) float64 {
	return Length3(Sub3(a, b))
}

// XY returns the horizontal (x, y) components of v, dropping altitude.
func (v Vec3) XY() [2]float64 {
	return [2]float64{v[0], v[1]}
}
