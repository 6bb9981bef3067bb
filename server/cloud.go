// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"time"
)

// Cloud publishes the server to the outside world.
// Offline is used when there is none.
type Cloud interface {
	fmt.Stringer
	UpdateServer(observers int) error
	UploadTerrainSnapshot(data []byte) error // takes an encoded PNG
	UpdatePeriod() time.Duration
}

type Offline struct{}

func (offline Offline) String() string {
	return "offline"
}

func (offline Offline) UpdateServer(observers int) error {
	return nil
}

func (offline Offline) UploadTerrainSnapshot(data []byte) error {
	return nil
}

func (offline Offline) UpdatePeriod() time.Duration {
	return time.Hour
}

// status is served as JSON at the index.
type status struct {
	Observers int    `json:"observers"`
	Bots      int    `json:"bots"`
	Chunks    int    `json:"chunks"`
	Rotations uint64 `json:"rotations"`
	Pilot     string `json:"pilot,omitempty"`
}

func (h *Hub) status() (s status) {
	for client := h.clients.First; client != nil; client = client.Data().Next {
		if client.Bot() {
			s.Bots++
		} else {
			s.Observers++
		}
	}
	s.Chunks = h.service.Len()
	s.Rotations = h.rotations
	if h.pilot != nil {
		s.Pilot = h.pilot.Data().Session.Name
	}
	return
}

func (h *Hub) Cloud() {
	fmt.Println("Updating cloud")

	s := h.status()

	statusJSON, err := json.Marshal(s)
	if err == nil {
		h.statusJSON.Store(statusJSON)
	} else {
		fmt.Println("error marshaling status:", err)
	}

	err = h.cloud.UpdateServer(s.Observers)
	if err != nil {
		fmt.Println("Error updating server:", err)
	}
}
