// pkg/realtime/cellhash.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package realtime implements the tactical path: telemetry ingest with a
// rolling history buffer, the cell-hash broad-phase (spec §4.G), and the
// real-time monitor that raises conflicts and advisories (spec §4.H).
package realtime

import stdmath "math"

// CellSize is the real-time grid's edge length in meters (spec §4.G).
const CellSize = 66.0

type cellKey struct{ cx, cy int }

// CellHash is a one-shot, rebuild-per-tick spatial hash keyed by a square
// planar grid. The original used H3; no Go H3 binding appears in the
// retrieval pack, and spec §4.G notes the addressing scheme is not
// semantically observable, so a square grid with a Chebyshev k-ring
// (which visits a superset of an H3 hex k-ring, making the broad-phase
// only more conservative, never unsound) satisfies the contract.
type CellHash struct {
	cells map[cellKey][]string
}

// NewCellHash builds a fresh, empty hash.
func NewCellHash() *CellHash {
	return &CellHash{cells: make(map[cellKey][]string)}
}

func cellOf(x, y float64) cellKey {
	return cellKey{
		cx: int(stdmath.Floor(x / CellSize)),
		cy: int(stdmath.Floor(y / CellSize)),
	}
}

// Insert places id into every cell of the k-ring (k = ceil(r/CellSize))
// around (x, y).
func (h *CellHash) Insert(id string, x, y, r float64) {
	c := cellOf(x, y)
	k := int(stdmath.Ceil(r / CellSize))
	for dx := -k; dx <= k; dx++ {
		for dy := -k; dy <= k; dy++ {
			key := cellKey{c.cx + dx, c.cy + dy}
			h.cells[key] = append(h.cells[key], id)
		}
	}
}

// CandidatePairs returns every distinct id pair co-occupying any cell,
// deduplicated by sorted tuple.
func (h *CellHash) CandidatePairs() [][2]string {
	seen := make(map[[2]string]bool)
	var pairs [][2]string
	for _, ids := range h.cells {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := ids[i], ids[j]
				if a > b {
					a, b = b, a
				}
				key := [2]string{a, b}
				if !seen[key] {
					seen[key] = true
					pairs = append(pairs, key)
				}
			}
		}
	}
	return pairs
}
