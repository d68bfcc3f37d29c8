// pkg/mission/mission.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package mission holds the data model a trajectory is compiled from (spec
// §3) and the trajectory compiler itself (spec §4.B).
package mission

import (
	"encoding/json"

	"github.com/iancoleman/orderedmap"

	"github.com/flightcore/sepcore/pkg/util"
)

// DefaultWaypointAltitude is substituted for a waypoint's altitude when
// the input omits z (spec §3, §6).
const DefaultWaypointAltitude = 50.0

// DefaultVelocity is used when a mission supplies neither an end time nor
// a scalar velocity (spec §3).
const DefaultVelocity = 5.0

// WaypointInput is a single waypoint as received over the mission input
// interface (spec §6): `{x, y, z?}`.
type WaypointInput struct {
	X, Y float64
	Z    *float64
}

func (w *WaypointInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		X float64  `json:"x"`
		Y float64  `json:"y"`
		Z *float64 `json:"z"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	w.X, w.Y, w.Z = raw.X, raw.Y, raw.Z
	return nil
}

// Spec is one drone's mission as received over the mission input
// interface (spec §6): `{waypoints, start_time?, end_time?, velocity?}`.
type Spec struct {
	Waypoints []WaypointInput `json:"waypoints"`
	StartTime *float64        `json:"start_time"`
	EndTime   *float64        `json:"end_time"`
	Velocity  *float64        `json:"velocity"`
}

// DroneMission pairs a drone id with its mission spec. A slice of these is
// the compiler's input; order matters (spec §5: "segments are processed
// in insertion order").
type DroneMission struct {
	DroneID string
	Spec    Spec
}

// DecodeMissions parses the drone-id-keyed mission mapping (spec §6) from
// JSON, preserving the object's key order via orderedmap.OrderedMap
// (adapted from vice pkg/util's use of the same library) so that
// candidate-pair enumeration downstream stays reproducible given
// identical input ordering, as spec §5 requires. Malformed per-drone
// entries are recorded on elog (if non-nil) and skipped rather than
// failing the whole batch (spec §7, MalformedMission).
func DecodeMissions(data []byte, elog *util.ErrorLogger) ([]DroneMission, error) {
	var om orderedmap.OrderedMap
	if err := json.Unmarshal(data, &om); err != nil {
		return nil, err
	}

	var out []DroneMission
	for _, id := range om.Keys() {
		raw, _ := om.Get(id)

		b, err := json.Marshal(raw)
		if err != nil {
			if elog != nil {
				elog.ErrorString("mission %s: %v", id, err)
			}
			continue
		}

		var spec Spec
		if err := json.Unmarshal(b, &spec); err != nil {
			if elog != nil {
				elog.ErrorString("mission %s: %v", id, err)
			}
			continue
		}

		out = append(out, DroneMission{DroneID: id, Spec: spec})
	}
	return out, nil
}
