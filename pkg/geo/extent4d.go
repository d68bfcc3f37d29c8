// pkg/geo/extent4d.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geo provides the dependency-free spatiotemporal geometry kernels
// the core is built on: exact closest-point-of-approach analysis and a 4D
// bounding-box broad-phase index. Both operate on anonymous boxes/vectors
// so that callers (pkg/mission, pkg/conflict) own the notion of a
// "segment"; this package only knows about numbers.
package geo

// Extent4D is a 4D axis-aligned bounding box: three spatial dimensions
// (x, y, z, meters) and one temporal dimension (t, seconds). It follows
// the same P0/P1 min/max-corner convention as vice's pkg/math.Extent2D,
// extended from 2 to 4 dimensions.
type Extent4D struct {
	Min, Max [4]float64
}

// EmptyExtent4D returns a degenerate Extent4D that overlaps nothing until
// grown by Union.
func EmptyExtent4D() Extent4D {
	const inf = 1e30
	return Extent4D{
		Min: [4]float64{inf, inf, inf, inf},
		Max: [4]float64{-inf, -inf, -inf, -inf},
	}
}

// Union grows e to include the point p.
func (e Extent4D) Union(p [4]float64) Extent4D {
	for d := 0; d < 4; d++ {
		if p[d] < e.Min[d] {
			e.Min[d] = p[d]
		}
		if p[d] > e.Max[d] {
			e.Max[d] = p[d]
		}
	}
	return e
}

// UnionBox returns the smallest Extent4D containing both e and o.
func (e Extent4D) UnionBox(o Extent4D) Extent4D {
	e = e.Union(o.Min)
	e = e.Union(o.Max)
	return e
}

// Overlaps returns true if e and o intersect (touching is considered
// overlapping, matching vice's pkg/math.Overlaps for Extent2D).
func (e Extent4D) Overlaps(o Extent4D) bool {
	for d := 0; d < 4; d++ {
		if e.Max[d] < o.Min[d] || e.Min[d] > o.Max[d] {
			return false
		}
	}
	return true
}

// Center returns the box's center point.
func (e Extent4D) Center() [4]float64 {
	var c [4]float64
	for d := 0; d < 4; d++ {
		c[d] = (e.Min[d] + e.Max[d]) / 2
	}
	return c
}
