// pkg/geo/cpa.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import gomath "math"

// CPA2 computes the exact closest point of approach of two linear tracks
// P_A(t) = p0A + vA*t and P_B(t) = p0B + vB*t in the plane, returning the
// (non-negative, clamped) time of closest approach and the minimum
// distance achieved. It is pure, allocation-free, and well-defined when
// the relative velocity is zero (returns t=0 and the initial separation).
//
// This is the horizontal-only overload the offline detector uses (spec
// §4.D step 3); see CPA3 for the full 3D overload the real-time monitor
// uses (spec §4.H step 3).
func CPA2(p0A, vA, p0B, vB [2]float64) (tCPA, minDist float64) {
	w := [2]float64{p0A[0] - p0B[0], p0A[1] - p0B[1]}
	v := [2]float64{vA[0] - vB[0], vA[1] - vB[1]}

	vv := v[0]*v[0] + v[1]*v[1]
	if vv == 0 {
		return 0, gomath.Hypot(w[0], w[1])
	}

	wv := w[0]*v[0] + w[1]*v[1]
	t := -wv / vv
	if t < 0 {
		t = 0
	}

	d := [2]float64{w[0] + v[0]*t, w[1] + v[1]*t}
	return t, gomath.Hypot(d[0], d[1])
}

// CPA3 is the full 3D overload of CPA2, used by the real-time monitor's
// spherical threshold test (spec §4.H).
func CPA3(p0A, vA, p0B, vB [3]float64) (tCPA, minDist float64) {
	w := [3]float64{p0A[0] - p0B[0], p0A[1] - p0B[1], p0A[2] - p0B[2]}
	v := [3]float64{vA[0] - vB[0], vA[1] - vB[1], vA[2] - vB[2]}

	vv := v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
	if vv == 0 {
		return 0, gomath.Sqrt(w[0]*w[0] + w[1]*w[1] + w[2]*w[2])
	}

	wv := w[0]*v[0] + w[1]*v[1] + w[2]*v[2]
	t := -wv / vv
	if t < 0 {
		t = 0
	}

	d := [3]float64{w[0] + v[0]*t, w[1] + v[1]*t, w[2] + v[2]*t}
	return t, gomath.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}
