// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/terrain/compressed"
	"github.com/SoftbearStudios/driftland/server/terrain/scatter"
	"github.com/SoftbearStudios/driftland/server/terrain/stream"
	"github.com/google/uuid"
	"sync"
)

type (
	// ChunkView is a chunk as sent to clients. Heights are row major with
	// Config.Resolution vertices per row; clients rebuild the mesh from them.
	ChunkView struct {
		Position   terrain.GridPos     `json:"position"`
		Colour     terrain.Colour      `json:"colour"`
		Quadrant   terrain.Quadrant    `json:"quadrant"`
		Heights    *compressed.Heights `json:"heights"`
		Placements []scatter.Placement `json:"placements,omitempty"`
	}

	// Update is everything that changed since the client's previous Update.
	// The first Update a client receives contains every live chunk. Despawned
	// applies before Spawned, since a chunk can be replaced in one tick.
	Update struct {
		Spawned   []ChunkView       `json:"spawned,omitempty"`
		Despawned []terrain.GridPos `json:"despawned,omitempty"`
		Observer  *stream.Observer  `json:"observer,omitempty"`
		Pilot     string            `json:"pilot,omitempty"`

		// Put smaller fields here for packing
		Colours        [4]terrain.Colour `json:"colours"`
		FollowerHeight *float32          `json:"followerHeight,omitempty"`
		ObserverHeight float32           `json:"observerHeight"`
		Rotations      uint32            `json:"rotations,omitempty"`
		Piloting       bool              `json:"piloting,omitempty"`
	}

	// Welcome is the first message a client receives.
	Welcome struct {
		ClientID  uuid.UUID            `json:"clientID"`
		Config    terrain.Config       `json:"config"`
		Quantizer compressed.Quantizer `json:"quantizer"`
		Observer  *stream.Observer     `json:"observer,omitempty"`
	}
)

func init() {
	registerOutbound(
		&Update{},
		Welcome{},
	)
}

const poolSpawnedCap = 64

var updatePool = sync.Pool{
	New: func() interface{} {
		return &Update{
			Spawned: make([]ChunkView, 0, poolSpawnedCap),
		}
	},
}

func NewUpdate() *Update {
	return updatePool.Get().(*Update)
}

// Pool Uses pointers for reuse in pool
func (update *Update) Pool() {
	for i := range update.Spawned {
		if heights := update.Spawned[i].Heights; heights != nil {
			heights.Pool()
		}
	}

	// Delete all fields except Spawned and Despawned
	*update = Update{
		Spawned:   clearChunkViews(update.Spawned),
		Despawned: update.Despawned[:0],
	}
	updatePool.Put(update)
}

func (welcome Welcome) Pool() {}

func clearChunkViews(views []ChunkView) []ChunkView {
	for i := range views {
		views[i] = ChunkView{}
	}
	return views[:0]
}

// view encodes chunk for one client. Heights belong to the Update that holds
// the view, so every client gets its own copy.
func view(chunk *stream.Chunk, resolution int, q compressed.Quantizer) ChunkView {
	return ChunkView{
		Position:   chunk.GridPos,
		Colour:     chunk.Colour,
		Quadrant:   chunk.Quadrant,
		Heights:    compressed.Encode(chunk.Mesh.Positions, resolution, q),
		Placements: chunk.Placements,
	}
}
