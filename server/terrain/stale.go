// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import "github.com/SoftbearStudios/driftland/server/world"

// StaleRegion is a chunk whose mesh was generated by a sampler that has since
// been rotated away. Chunks generated next to it blend towards the old sampler
// and copy its recorded edge heights so no crack appears at the boundary.
type StaleRegion struct {
	Sampler Sampler
	GridPos GridPos
	Edges   EdgeHeights
}

// BlendFactor is 0 inside the stale chunk and rises smoothly to 1 at one chunk
// width from its footprint.
func BlendFactor(wx, wz float32, stale *StaleRegion, chunkSize float32) float32 {
	footprint := world.AABBFrom(
		float32(stale.GridPos.X)*chunkSize,
		float32(stale.GridPos.Z)*chunkSize,
		chunkSize,
		chunkSize,
	)
	return world.Smoothstep(0, chunkSize, footprint.Distance(world.Vec2f{X: wx, Y: wz}))
}
