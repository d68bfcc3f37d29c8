// pkg/resolve/timeshift.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package resolve

import (
	"github.com/brunoga/deep"

	"github.com/flightcore/sepcore/pkg/conflict"
	"github.com/flightcore/sepcore/pkg/log"
	"github.com/flightcore/sepcore/pkg/mission"
)

// TimeShiftDelay is the fixed per-iteration delay the time-shift-only
// resolver applies (spec §4.E "Alternative policy").
const TimeShiftDelay = 2.0

// MaxTimeShiftIterations bounds the time-shift-only resolver's loop.
const MaxTimeShiftIterations = 100

// ResolveTimeShiftOnly is the simpler alternative resolution policy spec
// §4.E requires be exposed alongside Resolve: it fixes the lattice to a
// single point (delay=TimeShiftDelay, no spatial offset), delaying the
// first conflict's "drone_B" side by TimeShiftDelay seconds per
// iteration, and terminates as soon as detection returns zero.
func ResolveTimeShiftOnly(cfg conflict.Config, segments map[string][]mission.Segment, lg *log.Logger) Result {
	state := deep.MustCopy(segments)
	resolutions := make(map[string]Resolution)

	iter := 0
	for ; iter < MaxTimeShiftIterations; iter++ {
		reports := conflict.NewDetector(cfg, flatten(state), lg).Detect()
		if len(reports) == 0 {
			break
		}

		droneID := reports[0].DroneB
		shifted := deep.MustCopy(state[droneID])
		for i := range shifted {
			shifted[i].TStart += TimeShiftDelay
			shifted[i].TEnd += TimeShiftDelay
		}
		state[droneID] = shifted

		prev := resolutions[droneID]
		resolutions[droneID] = Resolution{
			DroneID:   droneID,
			TimeShift: prev.TimeShift + TimeShiftDelay,
			Cost:      2 * (prev.TimeShift + TimeShiftDelay),
		}
	}

	return Result{Method: "time_shift_only", Iterations: iter, Resolutions: resolutions, Segments: state}
}
