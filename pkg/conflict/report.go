// pkg/conflict/report.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package conflict implements the offline, whole-mission-set conflict
// detector (spec §4.D): broad-phase pruning over pkg/geo's 4D index
// followed by an exact CPA check of every surviving candidate pair.
package conflict

import (
	"encoding/json"

	smath "github.com/flightcore/sepcore/pkg/math"
)

// Severity classifies how close a detected conflict came to violating the
// dual-cylinder separation threshold (spec §4.D step 6).
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityCritical
)

func (s Severity) String() string {
	if s == SeverityCritical {
		return "CRITICAL"
	}
	return "WARNING"
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Report is one detected loss-of-separation event between two drones.
type Report struct {
	DroneA            string     `json:"Drone_A"`
	DroneB            string     `json:"Drone_B"`
	ExactConflictTime float64    `json:"exact_conflict_time"`
	ConflictLocation  smath.Vec3 `json:"conflict_location"`
	MinimumSeparation float64    `json:"minimum_separation"`
	Severity          Severity   `json:"severity"`
}

// Config holds the dual-cylinder separation thresholds (spec §4.D).
type Config struct {
	SafetyRadius         float64 // horizontal, meters
	VerticalSafetyRadius float64 // vertical half-height, meters
}

// DefaultConfig returns the thresholds spec §4.D specifies when a caller
// supplies none.
func DefaultConfig() Config {
	return Config{SafetyRadius: 35, VerticalSafetyRadius: 15}
}
