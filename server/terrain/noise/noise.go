// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"fmt"
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Perlin octave weight divisor and frequency multiplier.
	alpha = 2.0
	beta  = 2.0
)

// Perlin is fractal perlin noise.
type Perlin struct {
	noise     *perlin.Perlin
	frequency float64
}

// NewPerlin creates a Perlin with a seed.
func NewPerlin(seed int64, frequency float32, octaves int) *Perlin {
	if octaves < 1 {
		octaves = 1
	}
	return &Perlin{
		noise:     perlin.NewPerlin(alpha, beta, octaves, seed),
		frequency: float64(frequency),
	}
}

// Sample implements terrain.Field.Sample.
func (p *Perlin) Sample(pos mgl32.Vec3) float32 {
	f := p.frequency
	return float32(p.noise.Noise3D(float64(pos[0])*f, float64(pos[1])*f, float64(pos[2])*f))
}

// New creates the Field described by cfg.
func New(cfg terrain.NoiseConfig) (terrain.Field, error) {
	switch cfg.Kind {
	case "", "perlin":
		return NewPerlin(cfg.Seed, cfg.Frequency, cfg.Octaves), nil
	case "simplex":
		return NewSimplex(cfg.Seed, cfg.Frequency, cfg.Octaves), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", cfg.Kind)
	}
}
