// pkg/realtime/telemetry.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package realtime

import (
	"github.com/flightcore/sepcore/pkg/track"
	"github.com/flightcore/sepcore/pkg/util"
)

// DefaultRollingBufferSize is the per-aircraft telemetry history depth
// (spec §6 "rolling_buffer_size").
const DefaultRollingBufferSize = 40

// Kind distinguishes cooperative aircraft, whose reported velocity is
// trusted directly, from uncooperative ones tracked through a Kalman
// filter (spec §3, §4.H).
type Kind int

const (
	KindControlled Kind = iota
	KindBogie
)

// ControlledUncertaintyRadius is the fixed uncertainty radius reported
// for cooperative aircraft (spec §3 "Observed state").
const ControlledUncertaintyRadius = 3.0

// Observation is one telemetry report as received over the ingest
// interface (spec §6): `{type, x, y, z, vx?, vy?, vz?}`. T is stamped by
// the receiver at ingest time, not supplied by the reporter.
type Observation struct {
	ID          string
	Kind        Kind
	X, Y, Z     float64
	VX, VY, VZ  float64
	HasVelocity bool
	T           float64
}

// Telemeter ingests telemetry, keeping a rolling history per aircraft id
// and driving a shared Kalman tracker for bogies. Grounded on
// `original_source`'s telemetry layer, which keeps a
// `collections.deque(maxlen=40)` per drone id, and on vice
// pkg/util.RingBuffer[V], used here for the same bounded-history role.
type Telemeter struct {
	history map[string]*util.RingBuffer[Observation]
	bufSize int
	tracker *track.Tracker
}

// NewTelemeter returns a Telemeter with the given per-aircraft history
// depth, backed by tracker for bogie state estimation.
func NewTelemeter(bufSize int, tracker *track.Tracker) *Telemeter {
	return &Telemeter{
		history: make(map[string]*util.RingBuffer[Observation]),
		bufSize: bufSize,
		tracker: tracker,
	}
}

// Ingest records obs in the aircraft's rolling history and, for bogies,
// feeds it through the Kalman tracker. Controlled observations bypass the
// filter and are used directly (spec §6 "Telemetry input").
func (tm *Telemeter) Ingest(obs Observation) {
	rb, ok := tm.history[obs.ID]
	if !ok {
		rb = util.NewRingBuffer[Observation](tm.bufSize)
		tm.history[obs.ID] = rb
	}
	rb.Add(obs)

	if obs.Kind == KindBogie {
		tm.tracker.Update(track.Observation{
			BogieID: obs.ID,
			X:       obs.X, Y: obs.Y, Z: obs.Z,
			VX: obs.VX, VY: obs.VY, VZ: obs.VZ,
			HasVelocity: obs.HasVelocity,
			T:           obs.T,
		})
	}
}

// History returns the observations currently retained for id (at most the
// Telemeter's buffer size, the most recent ones), oldest first, or nil if
// id has never been observed.
func (tm *Telemeter) History(id string) []Observation {
	rb, ok := tm.history[id]
	if !ok {
		return nil
	}
	out := make([]Observation, rb.Size())
	for i := range out {
		out[i] = rb.Get(i)
	}
	return out
}

// ObservedState is one aircraft's current position, velocity, kind, and
// uncertainty radius (spec §3 "Observed state"), as consumed by the
// real-time monitor.
type ObservedState struct {
	ID                string
	Kind              Kind
	X, Y, Z           float64
	VX, VY, VZ        float64
	UncertaintyRadius float64
}

// Snapshot produces the current ObservedState for every aircraft with
// telemetry history, using the latest observation for controlled
// aircraft and the Kalman filter's fused estimate for bogies (spec §4.H
// step 1).
func (tm *Telemeter) Snapshot() []ObservedState {
	var out []ObservedState
	for id, rb := range tm.history {
		if rb.Size() == 0 {
			continue
		}
		latest := rb.Get(rb.Size() - 1)

		if latest.Kind == KindControlled {
			out = append(out, ObservedState{
				ID: id, Kind: KindControlled,
				X: latest.X, Y: latest.Y, Z: latest.Z,
				VX: latest.VX, VY: latest.VY, VZ: latest.VZ,
				UncertaintyRadius: ControlledUncertaintyRadius,
			})
			continue
		}

		st, ok := tm.tracker.State(id)
		if !ok {
			continue
		}
		out = append(out, ObservedState{
			ID: id, Kind: KindBogie,
			X: st.X.AtVec(0), Y: st.X.AtVec(1), Z: st.X.AtVec(2),
			VX: st.X.AtVec(3), VY: st.X.AtVec(4), VZ: st.X.AtVec(5),
			UncertaintyRadius: st.UncertaintyRadius(),
		})
	}
	return out
}
