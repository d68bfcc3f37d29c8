// pkg/resolve/resolve_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package resolve

import (
	"testing"

	"github.com/flightcore/sepcore/pkg/conflict"
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

// Scenario 4 (spec §8): the time-shift-only resolver must terminate with
// a nonzero delay for one aircraft and leave the mission conflict-free.
func TestTimeShiftResolutionClearsCrossing(t *testing.T) {
	cfg := conflict.Config{SafetyRadius: 3, VerticalSafetyRadius: 15}
	segments := map[string][]mission.Segment{
		"A": straightLine("A", 0, 0, 50, 100, 100, 50, 5),
		"B": straightLine("B", 0, 100, 50, 100, 0, 50, 5),
	}

	result := ResolveTimeShiftOnly(cfg, segments, nil)

	var maxDelay float64
	for _, res := range result.Resolutions {
		if res.TimeShift > maxDelay {
			maxDelay = res.TimeShift
		}
	}
	if maxDelay < TimeShiftDelay {
		t.Errorf("expected at least one %vs delay applied, got resolutions %+v", TimeShiftDelay, result.Resolutions)
	}

	after := conflict.NewDetector(cfg, flatten(result.Segments), nil).Detect()
	if len(after) != 0 {
		t.Errorf("expected zero conflicts after time-shift resolution, got %+v", after)
	}
}

// Scenario: a conflict-free mission must resolve in zero iterations with
// no resolutions recorded (idempotence, spec §8).
func TestResolveConflictFreeMissionIsNoop(t *testing.T) {
	cfg := conflict.Config{SafetyRadius: 5, VerticalSafetyRadius: 5}
	segments := map[string][]mission.Segment{
		"A": straightLine("A", 0, 0, 50, 100, 0, 50, 10),
		"B": straightLine("B", 0, 1000, 50, 100, 1000, 50, 10),
	}

	result := Resolve(cfg, segments, nil)
	if result.Iterations != 0 {
		t.Errorf("expected 0 iterations for an already conflict-free mission, got %d", result.Iterations)
	}
	if len(result.Resolutions) != 0 {
		t.Errorf("expected no resolutions for an already conflict-free mission, got %+v", result.Resolutions)
	}
}

// The grid-search resolver must never leave a segment below the ground
// regardless of which spatial offset it lands on (spec §4.E's
// floor-clamp, scenario 5).
func TestResolveNeverProducesNegativeAltitude(t *testing.T) {
	cfg := conflict.Config{SafetyRadius: 35, VerticalSafetyRadius: 15}
	segments := map[string][]mission.Segment{
		"A": straightLine("A", 0, 0, 15, 100, 0, 15, 10),
		"B": straightLine("B", 0, 0, 5, 100, 0, 5, 10),
	}

	result := Resolve(cfg, segments, nil)

	for id, segs := range result.Segments {
		for _, s := range segs {
			if s.A0[2] < 0 || s.A1[2] < 0 {
				t.Errorf("drone %s: segment altitude went negative: A0.z=%v A1.z=%v", id, s.A0[2], s.A1[2])
			}
		}
	}

	after := conflict.NewDetector(cfg, flatten(result.Segments), nil).Detect()
	if len(after) != 0 {
		t.Errorf("expected the resolver to clear all conflicts, got %+v", after)
	}
}

func TestResolveBoundsOuterIterations(t *testing.T) {
	cfg := conflict.Config{SafetyRadius: 1e6, VerticalSafetyRadius: 1e6}
	segments := map[string][]mission.Segment{
		"A": straightLine("A", 0, 0, 50, 100, 0, 50, 10),
		"B": straightLine("B", 0, 0, 50, 100, 0, 50, 10),
	}

	result := Resolve(cfg, segments, nil)
	if result.Iterations > MaxOuterIterations {
		t.Errorf("resolver exceeded its bounded outer loop: %d > %d", result.Iterations, MaxOuterIterations)
	}
}

func TestResolveFallbackAccumulates(t *testing.T) {
	// An absurdly large safety radius on two 10000s-long legs makes every
	// lattice point fail (no delay up to 30s removes the time overlap), so
	// every outer iteration must fall back to the fixed delay, and the
	// fallback delay must accumulate across iterations for the same
	// drone rather than resetting.
	cfg := conflict.Config{SafetyRadius: 1e6, VerticalSafetyRadius: 1e6}
	segments := map[string][]mission.Segment{
		"A": straightLine("A", 0, 0, 50, 100000, 0, 50, 10),
		"B": straightLine("B", 0, 0, 50, 100000, 0, 50, 10),
	}

	result := Resolve(cfg, segments, nil)
	if result.Iterations == 0 {
		t.Fatalf("expected the resolver to run at least one iteration against an unresolvable pair")
	}
	var total float64
	for id, res := range result.Resolutions {
		if !res.FallbackApplied {
			continue
		}
		if res.FallbackDelay < FallbackDelay {
			t.Errorf("drone %s: fallback delay %v is less than one application of %v", id, res.FallbackDelay, FallbackDelay)
		}
		total += res.FallbackDelay
	}
	if want := float64(result.Iterations) * FallbackDelay; total != want {
		t.Errorf("recorded fallback delays sum to %v, expected %v (one %vs fallback per iteration)", total, want, FallbackDelay)
	}
}
