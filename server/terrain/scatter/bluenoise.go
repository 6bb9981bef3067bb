// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package scatter

import (
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/chewxy/math32"
	"math/rand"
)

// maxTries is the number of candidates around an active point before it is
// retired.
const maxTries = 30

// BlueNoise returns Poisson disk distributed points in the unit square
// [0, 1) x [0, 1), no two closer than radius. The same seed always produces
// the same points.
func BlueNoise(radius float32, seed int64) []world.Vec2f {
	if radius <= 0 || radius >= 1 {
		return nil
	}
	r := rand.New(rand.NewSource(seed))

	// At most one point per cell.
	cellSize := radius / math32.Sqrt(2)
	gridSize := int(math32.Ceil(1 / cellSize))

	grid := make([]int, gridSize*gridSize)
	for i := range grid {
		grid[i] = -1
	}

	points := make([]world.Vec2f, 0, gridSize*gridSize/2)
	active := make([]int, 0, 64)

	cell := func(p world.Vec2f) (int, int) {
		x := int(p.X / cellSize)
		y := int(p.Y / cellSize)
		if x >= gridSize {
			x = gridSize - 1
		}
		if y >= gridSize {
			y = gridSize - 1
		}
		return x, y
	}

	valid := func(p world.Vec2f) bool {
		if p.X < 0 || p.X >= 1 || p.Y < 0 || p.Y >= 1 {
			return false
		}
		cx, cy := cell(p)
		r2 := radius * radius
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				x, y := cx+dx, cy+dy
				if x < 0 || x >= gridSize || y < 0 || y >= gridSize {
					continue
				}
				if i := grid[y*gridSize+x]; i != -1 && points[i].DistanceSquared(p) < r2 {
					return false
				}
			}
		}
		return true
	}

	insert := func(p world.Vec2f) {
		i := len(points)
		points = append(points, p)
		active = append(active, i)
		x, y := cell(p)
		grid[y*gridSize+x] = i
	}

	insert(world.Vec2f{X: r.Float32(), Y: r.Float32()})

	for len(active) > 0 {
		a := r.Intn(len(active))
		p := points[active[a]]

		found := false
		for k := 0; k < maxTries; k++ {
			// Annulus [radius, 2*radius) around p.
			angle := world.Angle(r.Float32() * 2 * math32.Pi)
			candidate := p.AddScaled(angle.Vec2f(), radius*(1+r.Float32()))
			if valid(candidate) {
				insert(candidate)
				found = true
				break
			}
		}

		if !found {
			active[a] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}

	return points
}
