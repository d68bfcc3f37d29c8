// pkg/mission/compile.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	smath "github.com/flightcore/sepcore/pkg/math"
)

// Segment is one leg of a compiled trajectory: a constant-velocity
// straight-line motion valid over [TStart, TEnd]. Position at time t in
// that interval is A0 + Velocity*(t-TStart); Velocity*(TEnd-TStart) == A1-A0.
type Segment struct {
	DroneID      string
	A0, A1       smath.Vec3
	Velocity     smath.Vec3
	TStart, TEnd float64
}

// Compile turns a mission Spec into the ordered sequence of Segments
// that a drone flies, per spec §4.B:
//
//  1. Missions with fewer than 2 waypoints produce no segments.
//  2. A waypoint's altitude defaults to DefaultWaypointAltitude when
//     omitted.
//  3. A leg with zero length is dropped (DegenerateSegment, spec §7);
//     it contributes no flight time.
//  4. The mission's scalar speed is: total path length / (end_time -
//     start_time) when end_time is given and the path has nonzero
//     length; else the given velocity; else DefaultVelocity.
//  5. Each remaining leg is timed at that scalar speed and appended
//     with its start/end time derived from a running cursor that
//     begins at start_time (default 0).
func Compile(droneID string, spec Spec) []Segment {
	if len(spec.Waypoints) < 2 {
		return nil
	}

	startTime := 0.0
	if spec.StartTime != nil {
		startTime = *spec.StartTime
	}

	pts := make([]smath.Vec3, len(spec.Waypoints))
	for i, wp := range spec.Waypoints {
		z := DefaultWaypointAltitude
		if wp.Z != nil {
			z = *wp.Z
		}
		pts[i] = smath.Vec3{wp.X, wp.Y, z}
	}

	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += smath.Distance3(pts[i-1], pts[i])
	}

	vScalar := DefaultVelocity
	switch {
	case spec.EndTime != nil && total > 0:
		vScalar = total / (*spec.EndTime - startTime)
	case spec.Velocity != nil:
		vScalar = *spec.Velocity
	}

	var segs []Segment
	cursor := startTime
	for i := 1; i < len(pts); i++ {
		a0, a1 := pts[i-1], pts[i]
		dist := smath.Distance3(a0, a1)
		if dist == 0 {
			continue
		}

		dt := dist / vScalar
		delta := smath.Sub3(a1, a0)
		velocity := smath.Scale3(delta, vScalar/dist)

		segs = append(segs, Segment{
			DroneID:  droneID,
			A0:       a0,
			A1:       a1,
			Velocity: velocity,
			TStart:   cursor,
			TEnd:     cursor + dt,
		})
		cursor += dt
	}
	return segs
}
