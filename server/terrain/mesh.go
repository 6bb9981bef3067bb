// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import "github.com/go-gl/mathgl/mgl32"

// Mesh is an indexed triangle list of a chunk's height field.
type Mesh struct {
	Positions [][3]float32 `json:"positions"`
	Normals   [][3]float32 `json:"normals"`
	Indices   []uint32     `json:"indices"`
}

// HeightRange returns the lowest and highest vertex.
func (mesh *Mesh) HeightRange() (lo, hi float32) {
	for i, p := range mesh.Positions {
		if i == 0 || p[1] < lo {
			lo = p[1]
		}
		if i == 0 || p[1] > hi {
			hi = p[1]
		}
	}
	return
}

// GenerateChunkMesh builds the mesh of chunk g. Vertices on the boundary with
// the stale chunk (if any) copy its recorded heights exactly.
func GenerateChunkMesh(g GridPos, cfg *Config, field Field, sampler *Sampler, stale *StaleRegion) (*Mesh, EdgeHeights) {
	res := cfg.Resolution
	step := cfg.Step()
	origin := cfg.Origin(g)

	heightAt := func(wx, wz float32) float32 {
		return Height(wx, wz, field, sampler, cfg, stale)
	}

	mesh := &Mesh{
		Positions: make([][3]float32, 0, res*res),
		Normals:   make([][3]float32, 0, res*res),
		Indices:   make([]uint32, 0, (res-1)*(res-1)*6),
	}

	eps := step * 0.5
	for zi := 0; zi < res; zi++ {
		for xi := 0; xi < res; xi++ {
			wx := origin.X + float32(xi)*step
			wz := origin.Y + float32(zi)*step

			var height float32
			shared := false
			if stale != nil {
				height, shared = stale.Edges.SharedHeight(g, xi, zi, stale.GridPos, res)
			}
			if !shared {
				height = heightAt(wx, wz)
			}
			mesh.Positions = append(mesh.Positions, [3]float32{wx, height, wz})

			normal := mgl32.Vec3{
				heightAt(wx-eps, wz) - heightAt(wx+eps, wz),
				2 * eps,
				heightAt(wx, wz-eps) - heightAt(wx, wz+eps),
			}.Normalize()
			mesh.Normals = append(mesh.Normals, normal)
		}
	}

	w := uint32(res)
	for zi := 0; zi < res-1; zi++ {
		for xi := 0; xi < res-1; xi++ {
			i := uint32(zi*res + xi)
			mesh.Indices = append(mesh.Indices,
				i, i+w, i+1,
				i+1, i+w, i+w+1,
			)
		}
	}

	edges := newEdgeHeights(res)
	last := res - 1
	for i := 0; i < res; i++ {
		edges.North[i] = mesh.Positions[i][1]
		edges.South[i] = mesh.Positions[last*res+i][1]
		edges.West[i] = mesh.Positions[i*res][1]
		edges.East[i] = mesh.Positions[i*res+last][1]
	}

	return mesh, edges
}
