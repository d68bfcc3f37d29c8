// pkg/conflict/detector.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	stdmath "math"

	"github.com/davecgh/go-spew/spew"

	"github.com/flightcore/sepcore/pkg/geo"
	"github.com/flightcore/sepcore/pkg/log"
	smath "github.com/flightcore/sepcore/pkg/math"
	"github.com/flightcore/sepcore/pkg/mission"
)

// Detector runs the offline conflict-detection pass over a fixed set of
// compiled trajectory segments (spec §4.D). It is built once per run and
// discarded; Detect is not safe to call concurrently with itself.
type Detector struct {
	cfg      Config
	segments []mission.Segment
	lg       *log.Logger
}

// NewDetector builds a Detector over segments using cfg's thresholds.
// lg may be nil.
func NewDetector(cfg Config, segments []mission.Segment, lg *log.Logger) *Detector {
	return &Detector{cfg: cfg, segments: segments, lg: lg}
}

// Detect returns every pairwise loss-of-separation event among the
// detector's segments, per spec §4.D:
//
//  1. Broad-phase: segments are boxed (inflated by SafetyRadius in x/y/z)
//     and indexed in 4D (x, y, z, t); same-drone pairs are dropped.
//  2. For each surviving candidate pair, the overlap window [t0,t1] of
//     their time spans is computed; pairs that never coexist in time are
//     skipped.
//  3. Positions at t0 feed an exact horizontal CPA computation.
//  4. If the unclamped CPA time falls after the window's end, it is
//     recomputed directly at t1 (the tracks remain linear throughout the
//     window, so this is exact, not an approximation).
//  5. Vertical separation is evaluated at the same instant.
//  6. A Report is emitted iff both the horizontal and vertical separation
//     fall under threshold, with severity CRITICAL when the horizontal
//     separation is under half SafetyRadius.
func (d *Detector) Detect() []Report {
	boxes := make([]geo.Extent4D, len(d.segments))
	for i, s := range d.segments {
		boxes[i] = segmentBox(s, d.cfg.SafetyRadius)
	}

	idx := geo.NewIndex(boxes)
	sameGroup := func(i, j int) bool {
		return d.segments[i].DroneID == d.segments[j].DroneID
	}
	pairs := idx.CandidatePairs(boxes, sameGroup)

	var reports []Report
	for _, pr := range pairs {
		a, b := d.segments[pr[0]], d.segments[pr[1]]
		if rep, ok := d.testPair(a, b); ok {
			reports = append(reports, rep)
		}
	}

	if d.lg != nil {
		d.lg.Debugf("conflict: %d segments, %d candidate pairs, %d reports",
			len(d.segments), len(pairs), len(reports))
		for _, r := range reports {
			d.lg.Debugf("conflict report: %s", spew.Sdump(r))
		}
	}
	return reports
}

func segmentBox(s mission.Segment, inflate float64) geo.Extent4D {
	lo := [3]float64{
		stdmath.Min(s.A0[0], s.A1[0]) - inflate,
		stdmath.Min(s.A0[1], s.A1[1]) - inflate,
		stdmath.Min(s.A0[2], s.A1[2]) - inflate,
	}
	hi := [3]float64{
		stdmath.Max(s.A0[0], s.A1[0]) + inflate,
		stdmath.Max(s.A0[1], s.A1[1]) + inflate,
		stdmath.Max(s.A0[2], s.A1[2]) + inflate,
	}
	return geo.Extent4D{
		Min: [4]float64{lo[0], lo[1], lo[2], s.TStart},
		Max: [4]float64{hi[0], hi[1], hi[2], s.TEnd},
	}
}

func positionAt(s mission.Segment, t float64) smath.Vec3 {
	dt := t - s.TStart
	return smath.Vec3{
		s.A0[0] + s.Velocity[0]*dt,
		s.A0[1] + s.Velocity[1]*dt,
		s.A0[2] + s.Velocity[2]*dt,
	}
}

func (d *Detector) testPair(a, b mission.Segment) (Report, bool) {
	t0 := stdmath.Max(a.TStart, b.TStart)
	t1 := stdmath.Min(a.TEnd, b.TEnd)
	if t0 >= t1 {
		return Report{}, false
	}

	pA, pB := positionAt(a, t0), positionAt(b, t0)
	tCpaRel, minXY := geo.CPA2(
		[2]float64{pA[0], pA[1]}, [2]float64{a.Velocity[0], a.Velocity[1]},
		[2]float64{pB[0], pB[1]}, [2]float64{b.Velocity[0], b.Velocity[1]},
	)

	tExact := t0 + tCpaRel
	if tExact > t1 {
		tExact = t1
		tCpaRel = t1 - t0
		qA, qB := positionAt(a, t1), positionAt(b, t1)
		minXY = stdmath.Hypot(qA[0]-qB[0], qA[1]-qB[1])
	}

	zA := pA[2] + a.Velocity[2]*tCpaRel
	zB := pB[2] + b.Velocity[2]*tCpaRel
	distZ := stdmath.Abs(zA - zB)

	if !(minXY < d.cfg.SafetyRadius && distZ < d.cfg.VerticalSafetyRadius) {
		return Report{}, false
	}

	sev := SeverityWarning
	if minXY < d.cfg.SafetyRadius/2 {
		sev = SeverityCritical
	}

	// Location is aircraft A's position at CPA, per spec.
	loc := smath.Add3(pA, smath.Scale3(a.Velocity, tCpaRel))

	return Report{
		DroneA:            a.DroneID,
		DroneB:            b.DroneID,
		ExactConflictTime: tExact,
		ConflictLocation:  loc,
		MinimumSeparation: stdmath.Hypot(minXY, distZ),
		Severity:          sev,
	}, true
}
