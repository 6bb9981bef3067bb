// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"fmt"
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/nfnt/resize"
	"image"
	"image/png"
	"runtime"
	"sort"
	"time"
)

// snapshotSize is the width and height of terrain snapshots in pixels.
const snapshotSize = 256

// Debug prints debugging info to console and tmp files.
func (h *Hub) Debug() {
	fmt.Printf("Debug [%v] %s\n", time.Now().Format(time.UnixDate), h.cloud)
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	fmt.Printf(" - memstats: %dM/%dM\n", stats.HeapInuse/1e6, stats.NextGC/1e6)

	var (
		botCount  int
		observers []*Session
		fps       float32
		fpsCount  int // Can be less than len(observers) for clients that haven't sent a trace yet
	)

	for client := h.clients.First; client != nil; client = client.Data().Next {
		if client.Bot() {
			botCount++
			continue
		}
		session := &client.Data().Session
		observers = append(observers, session)
		if session.FPS != 0 {
			fps += session.FPS
			fpsCount++
		}
	}

	sort.Slice(observers, func(i, j int) bool {
		return observers[i].Name < observers[j].Name
	})

	fmt.Printf(" - clients: %d, bots: %d\n", len(observers), botCount)
	for _, session := range observers {
		fmt.Printf("   - %s", session.String())
		if h.pilot != nil && &h.pilot.Data().Session == session {
			fmt.Print(" {pilot}")
		}
		fmt.Println()
	}

	if fpsCount > 0 {
		// Average
		fps /= float32(fpsCount)
		fmt.Printf(" - fps: %.1f\n", fps)
	}

	sampler := h.service.Sampler()
	fmt.Printf(" - terrain: chunks: %d, rotations: %d, sampler: %s", h.service.Len(), h.rotations, sampler)
	if stale := h.service.Stale(); stale != nil {
		fmt.Printf(", stale: %s", stale.GridPos)
	}
	fmt.Println()

	// Function benchmarks
	var totalDuration time.Duration

	fmt.Print(" - ")
	for i := range h.funcBenches {
		bench := &h.funcBenches[i]

		duration := bench.reset()
		totalDuration += duration

		fmt.Print(bench.name, ": ", duration, ", ")
	}
	fmt.Println("total:", totalDuration)

	_ = AppendLog("/tmp/driftland.log",
		unixMillis(),
		len(observers),
		botCount,
		fps,
		h.service.Len(),
		h.rotations,
		totalDuration,
	)
}

// RenderTerrain draws the live chunks around the observer from above.
func (h *Hub) RenderTerrain(size int) image.Image {
	var center world.Vec2f
	if h.observer != nil {
		center = h.observer.Position
	}

	// Fit the render radius
	extent := float32(2*h.cfg.RenderRadius+1) * h.cfg.ChunkSize
	metersPerPixel := extent / float32(size)

	return terrain.Render(size, center, metersPerPixel, h.cfg.Amplitude, func(wx, wz float32) (float32, bool) {
		if !h.service.Has(h.cfg.GridOf(world.Vec2f{X: wx, Y: wz})) {
			return 0, false
		}
		return h.service.Height(wx, wz), true
	})
}

// SnapshotTerrain renders a picture of the terrain, keeps it for ServeSnapshot
// and uploads it to the cloud.
func (h *Hub) SnapshotTerrain() {
	defer h.timeFunction("snapshot", time.Now())

	// Supersample to smooth chunk edges
	img := resize.Resize(snapshotSize, snapshotSize, h.RenderTerrain(snapshotSize*2), resize.Lanczos3)
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return
	}
	h.snapshotPNG.Store(buf.Bytes())

	if _, ok := h.cloud.(Offline); ok {
		return
	}
	if err = h.cloud.UploadTerrainSnapshot(buf.Bytes()); err != nil {
		fmt.Println("Error uploading terrain snapshot:", err)
	}
}

// funcBench is a benchmark of a core function.
type funcBench struct {
	name     string
	duration time.Duration
	runs     int
}

// reset resets the benchmark and returns the average duration
func (bench *funcBench) reset() time.Duration {
	if bench.runs == 0 {
		return 0
	}
	average := bench.duration / time.Duration(bench.runs)
	bench.duration = 0
	bench.runs = 0
	return average
}

// timeFunction times a function.
// defer timeFunction("name", time.Now())
func (h *Hub) timeFunction(name string, start time.Time) {
	end := time.Now()

	var bench *funcBench
	for i := range h.funcBenches {
		b := &h.funcBenches[i]
		if name == b.name {
			bench = b
			break
		}
	}

	if bench == nil {
		h.funcBenches = append(h.funcBenches, funcBench{name: name})
		bench = &h.funcBenches[len(h.funcBenches)-1]
	}

	bench.duration += end.Sub(start)
	bench.runs++
}
