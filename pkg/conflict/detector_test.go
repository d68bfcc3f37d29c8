// pkg/conflict/detector_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	gomath "math"
	"testing"

	"github.com/flightcore/sepcore/pkg/mission"
)

func f64(v float64) *float64 { return &v }

func straightLine(id string, x0, y0, z0, x1, y1, z1, v float64) []mission.Segment {
	return mission.Compile(id, mission.Spec{
		Waypoints: []mission.WaypointInput{
			{X: x0, Y: y0, Z: f64(z0)},
			{X: x1, Y: y1, Z: f64(z1)},
		},
		Velocity: f64(v),
	})
}

func approxEqual(a, b, eps float64) bool {
	return gomath.Abs(a-b) < eps
}

// Scenario 1 (spec §8): crossing X, coplanar, at 5 m/s.
func TestScenarioCrossingX(t *testing.T) {
	var segs []mission.Segment
	segs = append(segs, straightLine("A", 0, 0, 50, 100, 100, 50, 5)...)
	segs = append(segs, straightLine("B", 0, 100, 50, 100, 0, 50, 5)...)

	cfg := Config{SafetyRadius: 3, VerticalSafetyRadius: 15}
	reports := NewDetector(cfg, segs, nil).Detect()

	if len(reports) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d: %+v", len(reports), reports)
	}
	r := reports[0]
	// The two tracks meet exactly at the path's midpoint (50,50); at 5
	// m/s over a ~141.4m leg that lands at t ~= 14.14s.
	if !approxEqual(r.ExactConflictTime, 14.14, 0.1) {
		t.Errorf("exact_conflict_time = %v, expected ~14.14s", r.ExactConflictTime)
	}
	if r.MinimumSeparation > 1.0 {
		t.Errorf("minimum_separation = %v, expected ~0 (coplanar crossing)", r.MinimumSeparation)
	}
}

// Scenario 2: same horizontal crossing, but B cruises 30m above A —
// vertical separation (30) exceeds vertical_safety_radius (15), so no
// conflict may be reported despite the horizontal crossing.
func TestScenarioVerticalMiss(t *testing.T) {
	var segs []mission.Segment
	segs = append(segs, straightLine("A", 0, 0, 50, 100, 100, 50, 5)...)
	segs = append(segs, straightLine("B", 0, 100, 80, 100, 0, 80, 5)...)

	cfg := Config{SafetyRadius: 3, VerticalSafetyRadius: 15}
	reports := NewDetector(cfg, segs, nil).Detect()
	if len(reports) != 0 {
		t.Errorf("expected zero conflicts (dual-cylinder vertical miss), got %+v", reports)
	}
}

// Scenario 3: formation flight, three parallel climbing paths 10m apart,
// safety_radius=25; all three pairwise conflicts must be reported.
func TestScenarioFormationFlight(t *testing.T) {
	var segs []mission.Segment
	segs = append(segs, straightLine("Lead", 0, 0, 100, 1000, 0, 200, 50)...)
	segs = append(segs, straightLine("WingLeft", 0, -10, 100, 1000, -10, 200, 50)...)
	segs = append(segs, straightLine("WingRight", 0, 10, 100, 1000, 10, 200, 50)...)

	cfg := Config{SafetyRadius: 25, VerticalSafetyRadius: 200}
	reports := NewDetector(cfg, segs, nil).Detect()

	pairs := make(map[[2]string]bool)
	for _, r := range reports {
		a, b := r.DroneA, r.DroneB
		if a > b {
			a, b = b, a
		}
		pairs[[2]string{a, b}] = true
		if r.MinimumSeparation > 20 {
			t.Errorf("pair %s/%s: min_separation = %v, expected <= 20", r.DroneA, r.DroneB, r.MinimumSeparation)
		}
	}
	for _, want := range [][2]string{{"Lead", "WingLeft"}, {"Lead", "WingRight"}, {"WingLeft", "WingRight"}} {
		if !pairs[want] {
			t.Errorf("expected conflict between %v, not found in %+v", want, reports)
		}
	}
}

// Boundary: parallel offset of exactly safety_radius must not be flagged
// (strict inequality in spec §4.D step 6).
func TestBoundaryExactSafetyRadiusNotFlagged(t *testing.T) {
	var segs []mission.Segment
	segs = append(segs, straightLine("A", 0, 0, 50, 100, 0, 50, 10)...)
	segs = append(segs, straightLine("B", 0, 35, 50, 100, 35, 50, 10)...)

	cfg := Config{SafetyRadius: 35, VerticalSafetyRadius: 15}
	reports := NewDetector(cfg, segs, nil).Detect()
	if len(reports) != 0 {
		t.Errorf("exact safety_radius separation must not be flagged, got %+v", reports)
	}
}

// Boundary: dual-cylinder - horizontal separation under threshold but
// vertical separation over threshold must not be flagged.
func TestBoundaryDualCylinderVerticalOverrides(t *testing.T) {
	var segs []mission.Segment
	segs = append(segs, straightLine("A", 0, 0, 0, 100, 0, 0, 10)...)
	segs = append(segs, straightLine("B", 0, 34, 16, 100, 34, 16, 10)...) // horiz sep 34 < 35, vert sep 16 > 15

	cfg := Config{SafetyRadius: 35, VerticalSafetyRadius: 15}
	reports := NewDetector(cfg, segs, nil).Detect()
	if len(reports) != 0 {
		t.Errorf("horizontal breach alone must not be flagged when vertical clears, got %+v", reports)
	}
}

func TestSeverityCriticalThreshold(t *testing.T) {
	var segs []mission.Segment
	segs = append(segs, straightLine("A", 0, 0, 50, 100, 100, 50, 5)...)
	segs = append(segs, straightLine("B", 0, 100, 50, 100, 0, 50, 5)...)

	cfg := Config{SafetyRadius: 20, VerticalSafetyRadius: 15}
	reports := NewDetector(cfg, segs, nil).Detect()
	if len(reports) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(reports))
	}
	if reports[0].Severity != SeverityCritical {
		t.Errorf("expected CRITICAL for a near-zero-separation coplanar crossing, got %v", reports[0].Severity)
	}
}

func TestSameDroneSegmentsNeverPaired(t *testing.T) {
	segs := straightLine("A", 0, 0, 50, 100, 100, 50, 5)
	segs = append(segs, straightLine("A", 100, 100, 50, 0, 0, 50, 5)...)

	cfg := Config{SafetyRadius: 1000, VerticalSafetyRadius: 1000}
	reports := NewDetector(cfg, segs, nil).Detect()
	if len(reports) != 0 {
		t.Errorf("a drone's own segments must never be reported against each other, got %+v", reports)
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	var segs []mission.Segment
	segs = append(segs, straightLine("A", 0, 0, 50, 100, 100, 50, 5)...)
	segs = append(segs, straightLine("B", 0, 100, 50, 100, 0, 50, 5)...)

	cfg := Config{SafetyRadius: 20, VerticalSafetyRadius: 15}
	r1 := NewDetector(cfg, segs, nil).Detect()
	r2 := NewDetector(cfg, segs, nil).Detect()

	if len(r1) != len(r2) {
		t.Fatalf("repeated detection over identical input produced different counts: %d vs %d", len(r1), len(r2))
	}
	for i := range r1 {
		if r1[i] != r2[i] {
			t.Errorf("report %d differs between runs: %+v vs %+v", i, r1[i], r2[i])
		}
	}
}

func TestEmptyInputYieldsNoConflicts(t *testing.T) {
	reports := NewDetector(DefaultConfig(), nil, nil).Detect()
	if len(reports) != 0 {
		t.Errorf("expected no reports for empty input, got %+v", reports)
	}
}
