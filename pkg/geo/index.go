// pkg/geo/index.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import "sort"

// Index is a static (bulk-built, read-only) 4D R-tree over a fixed set of
// boxes, used to prune candidate pairs of spatiotemporal segments before
// the exact CPA test runs (spec §4.C). It is built once per detection run
// and discarded; there is no incremental insert/delete, matching the
// core's single-invocation, run-to-completion concurrency model (spec §5).
//
// No third-party R-tree package appears anywhere in the retrieval pack
// this was built from, so the tree is implemented directly on top of the
// same bounding-box-overlap idiom vice's pkg/math.Extent2D/Overlaps uses,
// generalized to 4 dimensions (see extent4d.go). See DESIGN.md for the
// full justification.
type Index struct {
	root *node
}

type node struct {
	bounds   Extent4D
	indices  []int // populated only at leaves
	children [2]*node
}

const leafSize = 8

// NewIndex bulk-loads an Index over the given boxes. The box at position
// i is later reported by CandidatePairs using index i.
func NewIndex(boxes []Extent4D) *Index {
	idx := make([]int, len(boxes))
	for i := range idx {
		idx[i] = i
	}
	return &Index{root: build(boxes, idx)}
}

func build(boxes []Extent4D, idx []int) *node {
	bounds := EmptyExtent4D()
	for _, i := range idx {
		bounds = bounds.UnionBox(boxes[i])
	}

	if len(idx) <= leafSize {
		return &node{bounds: bounds, indices: idx}
	}

	// Split along whichever of the 4 axes has the greatest spread of box
	// centers, à la a bulk-loaded STR R-tree; this keeps sibling subtrees
	// spatially (and temporally) coherent.
	axis := widestAxis(boxes, idx)
	sort.Slice(idx, func(a, b int) bool {
		return boxes[idx[a]].Center()[axis] < boxes[idx[b]].Center()[axis]
	})

	mid := len(idx) / 2
	left := append([]int(nil), idx[:mid]...)
	right := append([]int(nil), idx[mid:]...)

	n := &node{bounds: bounds}
	n.children[0] = build(boxes, left)
	n.children[1] = build(boxes, right)
	return n
}

func widestAxis(boxes []Extent4D, idx []int) int {
	lo := [4]float64{1e30, 1e30, 1e30, 1e30}
	hi := [4]float64{-1e30, -1e30, -1e30, -1e30}
	for _, i := range idx {
		c := boxes[i].Center()
		for d := 0; d < 4; d++ {
			if c[d] < lo[d] {
				lo[d] = c[d]
			}
			if c[d] > hi[d] {
				hi[d] = c[d]
			}
		}
	}
	best, bestSpread := 0, -1.0
	for d := 0; d < 4; d++ {
		if spread := hi[d] - lo[d]; spread > bestSpread {
			best, bestSpread = d, spread
		}
	}
	return best
}

// query appends to out the indices of all leaf boxes overlapping q.
func (n *node) query(boxes []Extent4D, q Extent4D, out []int) []int {
	if n == nil || !n.bounds.Overlaps(q) {
		return out
	}
	if n.indices != nil {
		for _, i := range n.indices {
			if boxes[i].Overlaps(q) {
				out = append(out, i)
			}
		}
		return out
	}
	out = n.children[0].query(boxes, q, out)
	out = n.children[1].query(boxes, q, out)
	return out
}

// CandidatePairs returns every distinct pair of indices (i, j), i<j, whose
// boxes overlap. sameGroup, if non-nil, is consulted to drop pairs sharing
// an identity (spec §4.C: "pairs with the same drone_id are removed");
// passing nil keeps all overlapping pairs.
func (idx *Index) CandidatePairs(boxes []Extent4D, sameGroup func(i, j int) bool) [][2]int {
	seen := make(map[[2]int]bool)
	var pairs [][2]int
	var buf []int
	for i, box := range boxes {
		buf = buf[:0]
		buf = idx.root.query(boxes, box, buf)
		for _, j := range buf {
			if j <= i {
				continue
			}
			if sameGroup != nil && sameGroup(i, j) {
				continue
			}
			key := [2]int{i, j}
			if !seen[key] {
				seen[key] = true
				pairs = append(pairs, key)
			}
		}
	}
	return pairs
}
