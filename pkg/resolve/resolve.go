// pkg/resolve/resolve.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package resolve implements the strategic resolver (spec §4.E): given a
// conflict-free-or-not mission set, it searches a (time-delay,
// spatial-offset) lattice per offending aircraft to restore global
// separation, never mutating a caller-owned segment slice in place.
package resolve

import (
	stdmath "math"

	"github.com/brunoga/deep"

	"github.com/flightcore/sepcore/pkg/conflict"
	"github.com/flightcore/sepcore/pkg/log"
	"github.com/flightcore/sepcore/pkg/mission"
)

// FallbackDelay is added to an aircraft's whole schedule when no lattice
// point clears it of conflicts.
const FallbackDelay = 45.0

// MaxOuterIterations bounds the strategic resolver's outer loop.
const MaxOuterIterations = 20

type offset struct {
	delay float64
	d     [3]float64
}

// lattice enumerates the 6 delays x 9 spatial offsets spec §4.E specifies.
var delays = []float64{0, 5, 10, 15, 20, 30}

var spatialOffsets = [][3]float64{
	{0, 0, 0},
	{40, 0, 0}, {-40, 0, 0},
	{0, 40, 0}, {0, -40, 0},
	{40, 40, 0}, {-40, -40, 0},
	{0, 0, 20}, {0, 0, -20},
}

func lattice() []offset {
	out := make([]offset, 0, len(delays)*len(spatialOffsets))
	for _, dl := range delays {
		for _, d := range spatialOffsets {
			out = append(out, offset{delay: dl, d: d})
		}
	}
	return out
}

// Resolution is one drone's resolver outcome: either a lattice hit
// (TimeShift/LateralShiftX/Y/AltShiftZ/Cost populated) or a fallback
// (FallbackDelay populated, the rest zero).
type Resolution struct {
	DroneID         string  `json:"-"`
	TimeShift       float64 `json:"time_shift"`
	LateralShiftX   float64 `json:"lateral_shift_x"`
	LateralShiftY   float64 `json:"lateral_shift_y"`
	AltShiftZ       float64 `json:"alt_shift_z"`
	Cost            float64 `json:"cost"`
	FallbackApplied bool    `json:"-"`
	FallbackDelay   float64 `json:"fallback_delay,omitempty"`
}

// Result is the strategic resolver's output (spec §4.E "Outputs").
type Result struct {
	Method      string                       `json:"method"`
	Iterations  int                          `json:"-"`
	Resolutions map[string]Resolution        `json:"details"`
	Segments    map[string][]mission.Segment `json:"-"`
}

// Resolve edits each offending drone's schedule, returning the edited
// segments in Result.Segments, so that subsequent detection with cfg
// reports zero conflicts, or gives up after MaxOuterIterations (spec
// §4.E). It never mutates segments in place: each candidate lattice point
// is tried against a deep.Copy'd snapshot of the affected drone's
// segments and a scratch detector built over copies of every other
// drone's current segments (DESIGN NOTE "Hidden mutation in the
// resolver", spec §9), so a caller's original segments slice is never
// touched.
func Resolve(cfg conflict.Config, segments map[string][]mission.Segment, lg *log.Logger) Result {
	state := deep.MustCopy(segments)
	resolutions := make(map[string]Resolution)

	lat := lattice()

	iter := 0
	for ; iter < MaxOuterIterations; iter++ {
		reports := conflict.NewDetector(cfg, flatten(state), lg).Detect()
		if len(reports) == 0 {
			break
		}

		// By convention the lower-priority side of the first conflict
		// (as emitted) is the reroute candidate (spec §4.E step 2).
		droneID := reports[0].DroneB

		others := withoutDrone(state, droneID)
		original := state[droneID]

		best, bestCost, found := bestCandidate(cfg, others, droneID, original, lat, lg)
		if found {
			state[droneID] = best
			resolutions[droneID] = bestCost
		} else {
			shifted := deep.MustCopy(original)
			for i := range shifted {
				shifted[i].TStart += FallbackDelay
				shifted[i].TEnd += FallbackDelay
			}
			state[droneID] = shifted

			prev := resolutions[droneID]
			resolutions[droneID] = Resolution{
				DroneID:         droneID,
				FallbackApplied: true,
				FallbackDelay:   prev.FallbackDelay + FallbackDelay,
			}
		}
	}

	method := "grid_search"
	return Result{Method: method, Iterations: iter, Resolutions: resolutions, Segments: state}
}

// bestCandidate tries every lattice point for droneID's original segments
// against a background of others, returning the minimum-cost accepted
// candidate's rebuilt segments and resolution record.
func bestCandidate(cfg conflict.Config, others map[string][]mission.Segment, droneID string,
	original []mission.Segment, lat []offset, lg *log.Logger) ([]mission.Segment, Resolution, bool) {

	var bestSegs []mission.Segment
	var bestRes Resolution
	bestCost := stdmath.Inf(1)
	found := false

	for _, o := range lat {
		candidate := deep.MustCopy(original)
		for i := range candidate {
			candidate[i].A0 = offsetClamp(candidate[i].A0, o.d)
			candidate[i].A1 = offsetClamp(candidate[i].A1, o.d)
			candidate[i].TStart += o.delay
			candidate[i].TEnd += o.delay
		}

		trial := deep.MustCopy(others)
		trial[droneID] = candidate

		if droneAppearsInConflict(cfg, trial, droneID, lg) {
			continue
		}

		cost := 2*o.delay + magnitude(o.d)
		if cost < bestCost {
			bestCost = cost
			bestSegs = candidate
			bestRes = Resolution{
				DroneID:       droneID,
				TimeShift:     o.delay,
				LateralShiftX: o.d[0],
				LateralShiftY: o.d[1],
				AltShiftZ:     o.d[2],
				Cost:          cost,
			}
			found = true
		}
	}

	return bestSegs, bestRes, found
}

func droneAppearsInConflict(cfg conflict.Config, state map[string][]mission.Segment, droneID string, lg *log.Logger) bool {
	for _, r := range conflict.NewDetector(cfg, flatten(state), lg).Detect() {
		if r.DroneA == droneID || r.DroneB == droneID {
			return true
		}
	}
	return false
}

// offsetClamp adds d to p and floor-clamps z to 0 (spec §4.E step 4,
// "Floor-clamp").
func offsetClamp(p [3]float64, d [3]float64) [3]float64 {
	out := [3]float64{p[0] + d[0], p[1] + d[1], p[2] + d[2]}
	if out[2] < 0 {
		out[2] = 0
	}
	return out
}

func magnitude(d [3]float64) float64 {
	return stdmath.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

func flatten(state map[string][]mission.Segment) []mission.Segment {
	var all []mission.Segment
	for _, segs := range state {
		all = append(all, segs...)
	}
	return all
}

func withoutDrone(state map[string][]mission.Segment, droneID string) map[string][]mission.Segment {
	out := make(map[string][]mission.Segment, len(state))
	for id, segs := range state {
		if id == droneID {
			continue
		}
		out[id] = deep.MustCopy(segs)
	}
	return out
}
