// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import "github.com/go-gl/mathgl/mgl32"

// Field is a continuous 3D scalar noise function.
// Implementations must be pure and safe to call concurrently.
type Field interface {
	// Sample returns a value roughly in [-1, 1].
	Sample(p mgl32.Vec3) float32
}

// Height is the terrain height at a world position. When stale is not nil,
// heights near the stale chunk blend towards what the stale sampler produced.
func Height(wx, wz float32, field Field, sampler *Sampler, cfg *Config, stale *StaleRegion) float32 {
	h := field.Sample(sampler.NoisePoint(wx, wz, cfg.NoiseScale)) * cfg.Amplitude

	if stale != nil {
		t := BlendFactor(wx, wz, stale, cfg.ChunkSize)
		if t < 1 {
			old := field.Sample(stale.Sampler.NoisePoint(wx, wz, cfg.NoiseScale)) * cfg.Amplitude
			return old + t*(h-old)
		}
	}
	return h
}
