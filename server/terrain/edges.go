// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

// EdgeHeights are the vertex heights along the four edges of a generated
// chunk, in generation order.
type EdgeHeights struct {
	North []float32 `json:"north"` // zi = 0, indexed by xi
	South []float32 `json:"south"` // zi = res-1, indexed by xi
	West  []float32 `json:"west"`  // xi = 0, indexed by zi
	East  []float32 `json:"east"`  // xi = res-1, indexed by zi
}

func newEdgeHeights(res int) EdgeHeights {
	buf := make([]float32, res*4)
	return EdgeHeights{
		North: buf[0:res:res],
		South: buf[res : 2*res : 2*res],
		West:  buf[2*res : 3*res : 3*res],
		East:  buf[3*res:],
	}
}

// SharedHeight returns the recorded height of the vertex (xi, zi) of chunk g
// if it lies on the boundary with the chunk these edges belong to.
func (e *EdgeHeights) SharedHeight(g GridPos, xi, zi int, owner GridPos, res int) (float32, bool) {
	last := res - 1
	dx := g.X - owner.X
	dz := g.Z - owner.Z

	switch {
	// East of owner: our west edge is its east edge.
	case dx == 1 && dz == 0 && xi == 0:
		return e.East[zi], true
	case dx == -1 && dz == 0 && xi == last:
		return e.West[zi], true
	// South of owner: our north edge is its south edge.
	case dx == 0 && dz == 1 && zi == 0:
		return e.South[xi], true
	case dx == 0 && dz == -1 && zi == last:
		return e.North[xi], true
	// Diagonals share a single corner.
	case dx == 1 && dz == 1 && xi == 0 && zi == 0:
		return e.South[last], true
	case dx == -1 && dz == 1 && xi == last && zi == 0:
		return e.South[0], true
	case dx == 1 && dz == -1 && xi == 0 && zi == last:
		return e.North[last], true
	case dx == -1 && dz == -1 && xi == last && zi == last:
		return e.North[0], true
	}
	return 0, false
}
