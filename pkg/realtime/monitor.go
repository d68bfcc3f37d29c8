// pkg/realtime/monitor.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package realtime

import (
	"fmt"

	"github.com/flightcore/sepcore/pkg/geo"
)

// MonitorConfig holds the real-time monitor's spherical-threshold tuning
// (spec §4.H).
type MonitorConfig struct {
	// HorizonSeconds bounds how far out a projected CPA still counts as a
	// conflict (spec §4.H step 4: "0 <= t_cpa < 60 s").
	HorizonSeconds float64
	// AdvisoryDelaySeconds is the suggested delay attached to a
	// controlled-vs-bogie advisory (spec §4.H step 5).
	AdvisoryDelaySeconds float64
}

// DefaultMonitorConfig matches spec §4.H's stated constants.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{HorizonSeconds: 60, AdvisoryDelaySeconds: 5.0}
}

// AdvisoryType enumerates the resolution advisories the monitor can
// attach to a conflict. DELAY is the only kind spec §4.H defines.
type AdvisoryType string

const DelayAdvisory AdvisoryType = "DELAY"

// Advisory is a non-binding suggestion attached to a conflict when
// exactly one side is controlled (spec §4.H step 5). The core never acts
// on it.
type Advisory struct {
	Type                  AdvisoryType `json:"type"`
	Drone                 string       `json:"drone"`
	SuggestedDelaySeconds float64      `json:"suggested_delay_seconds"`
	Message               string       `json:"message"`
}

// Conflict is one real-time loss-of-separation projection (spec §4.H
// "Real-time monitor output").
type Conflict struct {
	IDA      string    `json:"id_A"`
	IDB      string    `json:"id_B"`
	MinDist  float64   `json:"min_dist"`
	TCPA     float64   `json:"t_cpa"`
	Severity string    `json:"severity"` // "CRITICAL" or "WARNING"
	RA       *Advisory `json:"ra,omitempty"`
}

// Monitor runs the real-time tick loop (spec §4.H) over a Telemeter's
// snapshots.
type Monitor struct {
	cfg MonitorConfig
	tm  *Telemeter
}

// NewMonitor builds a Monitor over tm using cfg's thresholds.
func NewMonitor(cfg MonitorConfig, tm *Telemeter) *Monitor {
	return &Monitor{cfg: cfg, tm: tm}
}

// Tick performs one monitor cycle, per spec §4.H:
//
//  1. Snapshot observed states from the telemetry/tracker layer.
//  2. Populate a fresh cell-hash from those states.
//  3. For each candidate pair, invoke the CPA kernel over full 3D
//     position/velocity vectors (a spherical threshold, unlike the
//     offline dual-cylinder test).
//  4. Emit a conflict iff min_dist < combo_radius (sum of uncertainty
//     radii) and 0 <= t_cpa < HorizonSeconds; CRITICAL when min_dist is
//     under half combo_radius.
//  5. Attach a DELAY advisory when exactly one side is controlled.
func (m *Monitor) Tick() []Conflict {
	states := m.tm.Snapshot()
	byID := make(map[string]ObservedState, len(states))

	hash := NewCellHash()
	for _, s := range states {
		byID[s.ID] = s
		hash.Insert(s.ID, s.X, s.Y, s.UncertaintyRadius)
	}

	var conflicts []Conflict
	for _, pair := range hash.CandidatePairs() {
		a, b := byID[pair[0]], byID[pair[1]]

		tCpa, minDist := geo.CPA3(
			[3]float64{a.X, a.Y, a.Z}, [3]float64{a.VX, a.VY, a.VZ},
			[3]float64{b.X, b.Y, b.Z}, [3]float64{b.VX, b.VY, b.VZ},
		)

		comboRadius := a.UncertaintyRadius + b.UncertaintyRadius
		if !(minDist < comboRadius && tCpa >= 0 && tCpa < m.cfg.HorizonSeconds) {
			continue
		}

		sev := "WARNING"
		if minDist < 0.5*comboRadius {
			sev = "CRITICAL"
		}

		c := Conflict{IDA: a.ID, IDB: b.ID, MinDist: minDist, TCPA: tCpa, Severity: sev}
		if ra := m.advisory(a, b); ra != nil {
			c.RA = ra
		}
		conflicts = append(conflicts, c)
	}
	return conflicts
}

func (m *Monitor) advisory(a, b ObservedState) *Advisory {
	var controlled, bogie ObservedState
	switch {
	case a.Kind == KindControlled && b.Kind == KindBogie:
		controlled, bogie = a, b
	case b.Kind == KindControlled && a.Kind == KindBogie:
		controlled, bogie = b, a
	default:
		return nil
	}

	return &Advisory{
		Type:                  DelayAdvisory,
		Drone:                 controlled.ID,
		SuggestedDelaySeconds: m.cfg.AdvisoryDelaySeconds,
		Message: fmt.Sprintf("suggest delaying %s by %.1fs to avoid projected conflict with %s",
			controlled.ID, m.cfg.AdvisoryDelaySeconds, bogie.ID),
	}
}
