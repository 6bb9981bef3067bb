// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"math/rand"
	"testing"
)

type flatField struct{}

func (flatField) Sample(mgl32.Vec3) float32 {
	return 0.25
}

func TestBlendFactor(t *testing.T) {
	stale := &StaleRegion{GridPos: GridPos{X: 1, Z: -2}}
	const size = 8

	for _, p := range []world.Vec2f{{X: 8, Y: -16}, {X: 12, Y: -12}, {X: 16, Y: -8}, {X: 9.5, Y: -15}} {
		if f := BlendFactor(p.X, p.Y, stale, size); f != 0 {
			t.Errorf("%v: expected 0 inside footprint, got %f", p, f)
		}
	}

	for _, p := range []world.Vec2f{{X: 24, Y: -12}, {X: 12, Y: -30}, {X: 30, Y: 10}, {X: 0, Y: -12}} {
		if f := BlendFactor(p.X, p.Y, stale, size); f != 1 {
			t.Errorf("%v: expected 1 beyond one chunk, got %f", p, f)
		}
	}

	// Along rays leaving the footprint.
	for _, dir := range []world.Vec2f{world.East, world.West, world.North, world.Vec2f{X: 1, Y: 1}.Norm()} {
		last := float32(0)
		for d := float32(0); d <= 20; d += 0.25 {
			p := world.Vec2f{X: 12, Y: -12}.AddScaled(dir, d)
			f := BlendFactor(p.X, p.Y, stale, size)
			if f < last {
				t.Fatalf("%v: expected non decreasing, got %f after %f at distance %f", dir, f, last, d)
			}
			if f < 0 || f > 1 {
				t.Fatalf("%v: %f out of range", dir, f)
			}
			last = f
		}
		if last != 1 {
			t.Errorf("%v: expected to reach 1, got %f", dir, last)
		}
	}
}

func TestHeight_Stale(t *testing.T) {
	cfg := testConfig()
	field := waveField{}
	r := rand.New(rand.NewSource(8))

	old := DefaultSampler()
	current := old.RotateRight(world.Vec2f{X: 4, Y: 4}, cfg.ChunkSize, cfg.NoiseScale, r)
	stale := &StaleRegion{Sampler: old, GridPos: GridPos{}}

	inside := world.Vec2f{X: 3, Y: 5}
	if h, expected := Height(inside.X, inside.Y, field, &current, &cfg, stale), Height(inside.X, inside.Y, field, &old, &cfg, nil); h != expected {
		t.Errorf("expected stale height %f inside stale chunk, got %f", expected, h)
	}

	far := world.Vec2f{X: 40, Y: 40}
	if h, expected := Height(far.X, far.Y, field, &current, &cfg, stale), Height(far.X, far.Y, field, &current, &cfg, nil); h != expected {
		t.Errorf("expected current height %f far from stale chunk, got %f", expected, h)
	}
}

func TestGenerateChunkMesh(t *testing.T) {
	cfg := DefaultConfig()
	s := DefaultSampler()
	mesh, edges := GenerateChunkMesh(GridPos{X: 2, Z: -1}, &cfg, flatField{}, &s, nil)

	res := cfg.Resolution
	if len(mesh.Positions) != res*res || len(mesh.Normals) != res*res {
		t.Fatalf("expected %d vertices, got %d positions and %d normals", res*res, len(mesh.Positions), len(mesh.Normals))
	}
	if len(mesh.Indices) != (res-1)*(res-1)*6 {
		t.Fatalf("expected %d indices, got %d", (res-1)*(res-1)*6, len(mesh.Indices))
	}
	for _, i := range mesh.Indices {
		if int(i) >= len(mesh.Positions) {
			t.Fatalf("index %d out of range", i)
		}
	}

	if p := mesh.Positions[0]; p[0] != 16 || p[2] != -8 {
		t.Errorf("expected first vertex at chunk origin, got %v", p)
	}
	if p := mesh.Positions[len(mesh.Positions)-1]; p[0] != 24 || p[2] != 0 {
		t.Errorf("expected last vertex at far corner, got %v", p)
	}

	expected := 0.25 * cfg.Amplitude
	lo, hi := mesh.HeightRange()
	if lo != expected || hi != expected {
		t.Errorf("expected flat mesh at %f, got range %f to %f", expected, lo, hi)
	}
	for _, n := range mesh.Normals {
		if !approx(n[0], 0) || !approx(n[1], 1) || !approx(n[2], 0) {
			t.Errorf("expected up normal, got %v", n)
		}
	}

	for _, edge := range [][]float32{edges.North, edges.South, edges.West, edges.East} {
		if len(edge) != res {
			t.Fatalf("expected edge length %d, got %d", res, len(edge))
		}
	}
}

func TestGenerateChunkMesh_Normals(t *testing.T) {
	cfg := testConfig()
	s := DefaultSampler()
	mesh, _ := GenerateChunkMesh(GridPos{}, &cfg, waveField{}, &s, nil)

	for _, n := range mesh.Normals {
		if l := mgl32.Vec3(n).Len(); math32.Abs(l-1) > 1e-4 {
			t.Errorf("expected unit normal, got length %f", l)
		}
		if n[1] <= 0 {
			t.Errorf("expected upward facing normal, got %v", n)
		}
	}
}

type vertexKey [2]float32

func vertexHeights(mesh *Mesh) map[vertexKey]float32 {
	heights := make(map[vertexKey]float32, len(mesh.Positions))
	for _, p := range mesh.Positions {
		heights[vertexKey{p[0], p[2]}] = p[1]
	}
	return heights
}

func TestGenerateChunkMesh_StaleEdges(t *testing.T) {
	cfg := testConfig()
	field := waveField{}
	r := rand.New(rand.NewSource(9))

	old := DefaultSampler()
	staleMesh, staleEdges := GenerateChunkMesh(GridPos{}, &cfg, field, &old, nil)
	stale := &StaleRegion{Sampler: old, GridPos: GridPos{}, Edges: staleEdges}
	staleHeights := vertexHeights(staleMesh)

	current := old.RotateLeft(world.Vec2f{X: 4, Y: 4}, cfg.ChunkSize, cfg.NoiseScale, r)

	shared := 0
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			g := GridPos{X: dx, Z: dz}
			mesh, _ := GenerateChunkMesh(g, &cfg, field, &current, stale)

			for key, h := range vertexHeights(mesh) {
				if expected, ok := staleHeights[key]; ok {
					shared++
					if h != expected {
						t.Errorf("%s: vertex %v has height %f, stale chunk has %f", g, key, h, expected)
					}
				}
			}
		}
	}

	// 4 edges of 5 plus 4 corners.
	if expected := 4*cfg.Resolution + 4; shared != expected {
		t.Errorf("expected %d shared vertices, got %d", expected, shared)
	}
}

func TestGenerateChunkMesh_NeighborEdges(t *testing.T) {
	cfg := testConfig()
	s := DefaultSampler()
	s.QuadrantOrigin = world.Vec2f{X: 8, Y: 0}

	a, aEdges := GenerateChunkMesh(GridPos{X: 0, Z: 0}, &cfg, waveField{}, &s, nil)
	b, _ := GenerateChunkMesh(GridPos{X: 1, Z: 0}, &cfg, waveField{}, &s, nil)
	aHeights := vertexHeights(a)

	for key, h := range vertexHeights(b) {
		if expected, ok := aHeights[key]; ok && h != expected {
			t.Errorf("vertex %v differs: %f and %f", key, h, expected)
		}
	}

	for zi, h := range aEdges.East {
		if expected := a.Positions[zi*cfg.Resolution+cfg.Resolution-1][1]; h != expected {
			t.Errorf("east edge %d: expected %f, got %f", zi, expected, h)
		}
	}
}

func TestEdgeHeights_SharedHeight(t *testing.T) {
	const res = 3
	e := newEdgeHeights(res)
	for i := 0; i < res; i++ {
		e.North[i] = float32(10 + i)
		e.South[i] = float32(20 + i)
		e.West[i] = float32(30 + i)
		e.East[i] = float32(40 + i)
	}
	owner := GridPos{X: 5, Z: 5}

	tests := []struct {
		g        GridPos
		xi, zi   int
		expected float32
		ok       bool
	}{
		{GridPos{X: 6, Z: 5}, 0, 1, 41, true},
		{GridPos{X: 4, Z: 5}, 2, 2, 32, true},
		{GridPos{X: 5, Z: 6}, 1, 0, 21, true},
		{GridPos{X: 5, Z: 4}, 0, 2, 10, true},
		{GridPos{X: 6, Z: 6}, 0, 0, 22, true},
		{GridPos{X: 4, Z: 6}, 2, 0, 20, true},
		{GridPos{X: 6, Z: 4}, 0, 2, 12, true},
		{GridPos{X: 4, Z: 4}, 2, 2, 10, true},
		{GridPos{X: 6, Z: 5}, 1, 1, 0, false},
		{GridPos{X: 7, Z: 5}, 0, 0, 0, false},
		{GridPos{X: 6, Z: 6}, 1, 0, 0, false},
	}

	for _, test := range tests {
		h, ok := e.SharedHeight(test.g, test.xi, test.zi, owner, res)
		if ok != test.ok || h != test.expected {
			t.Errorf("%s (%d, %d): expected %f %t, got %f %t", test.g, test.xi, test.zi, test.expected, test.ok, h, ok)
		}
	}
}

func BenchmarkGenerateChunkMesh(b *testing.B) {
	cfg := DefaultConfig()
	s := DefaultSampler()
	for i := 0; i < b.N; i++ {
		GenerateChunkMesh(GridPos{X: i & 31, Z: i >> 5 & 31}, &cfg, waveField{}, &s, nil)
	}
}
