// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/terrain/stream"
	"runtime"
	"sync"
	"time"
)

// frame is what every client's Update is built from. It is read only while
// clients are being updated.
type frame struct {
	report    stream.Report
	snapshot  []*stream.Chunk // all live chunks, only if a client needs them
	colours   [4]terrain.Colour
	rotations uint32
	observer  *stream.Observer
	pilot     Client
	pilotName string
}

// Update ticks the terrain and sends an Update message to each Client.
// Clients are updated in parallel because that doesn't write to the terrain.
func (h *Hub) Update() {
	defer h.timeFunction("update", time.Now())

	f := frame{
		report:   h.tick(),
		colours:  h.service.Colours(),
		observer: h.observerCopy(),
		pilot:    h.pilot,
	}
	f.rotations = h.service.TakeRotations()
	h.rotations += uint64(f.rotations)
	if h.pilot != nil {
		f.pilotName = h.pilot.Data().Session.Name
	}

	for client := h.clients.First; client != nil; client = client.Data().Next {
		if !client.Data().Session.synced {
			f.snapshot = h.service.Chunks()
			break
		}
	}

	cpus := runtime.NumCPU()
	if cpus > 1 && h.clients.Len > 1 {
		var wait sync.WaitGroup
		wait.Add(cpus)
		input := make(chan Client, cpus*2)

		for i := 0; i < cpus; i++ {
			go func(hub *Hub, in <-chan Client, wg *sync.WaitGroup) {
				for c := range in {
					hub.updateClient(c, &f)
				}
				wg.Done()
			}(h, input, &wait)
		}

		for client := h.clients.First; client != nil; client = client.Data().Next {
			input <- client
		}

		close(input)
		wait.Wait()
	} else {
		for client := h.clients.First; client != nil; client = client.Data().Next {
			h.updateClient(client, &f)
		}
	}
}

func (h *Hub) tick() stream.Report {
	defer h.timeFunction("tick", time.Now())
	return h.service.Tick(h.observer)
}

// Sends an Update to a Client containing terrain changes.
// Can be safely called concurrently once per client.
func (h *Hub) updateClient(client Client, f *frame) {
	update := NewUpdate()
	session := &client.Data().Session
	resolution := h.cfg.Resolution

	if session.synced {
		for _, chunk := range f.report.Spawned {
			update.Spawned = append(update.Spawned, view(chunk, resolution, h.quantizer))
		}
		update.Despawned = append(update.Despawned, f.report.Despawned...)
	} else {
		// Despawns have already happened
		for _, chunk := range f.snapshot {
			update.Spawned = append(update.Spawned, view(chunk, resolution, h.quantizer))
		}
		session.synced = true
	}

	update.Colours = f.colours
	update.Rotations = f.rotations
	update.Observer = f.observer
	update.ObserverHeight = f.report.ObserverHeight
	update.Pilot = f.pilotName
	update.Piloting = f.pilot == client

	if follower := session.Follower; follower != nil {
		height := h.service.FollowHeight(*follower)
		update.FollowerHeight = &height
	}

	client.Send(update)
}
