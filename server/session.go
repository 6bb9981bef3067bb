// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/google/uuid"
)

// Session is what the hub knows about a client.
type Session struct {
	ID   uuid.UUID
	Name string
	FPS  float32
	// Follower is the position of a companion whose ground height the client
	// wants each update.
	Follower *world.Vec2f
	// synced is set once the client has received every live chunk.
	synced bool
}

func (session *Session) String() string {
	name := session.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("%s (%s)", name, session.ID)
}
