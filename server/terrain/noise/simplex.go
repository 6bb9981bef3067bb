// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

const (
	persistence = 0.5
	lacunarity  = 2.0
)

// Simplex is fractal open simplex noise.
type Simplex struct {
	noise     opensimplex.Noise
	frequency float64
	octaves   int
	norm      float64 // inverse of the summed octave amplitudes
}

func NewSimplex(seed int64, frequency float32, octaves int) *Simplex {
	if octaves < 1 {
		octaves = 1
	}

	var total float64
	amplitude := 1.0
	for i := 0; i < octaves; i++ {
		total += amplitude
		amplitude *= persistence
	}

	return &Simplex{
		noise:     opensimplex.New(seed),
		frequency: float64(frequency),
		octaves:   octaves,
		norm:      1 / total,
	}
}

// Sample implements terrain.Field.Sample.
func (s *Simplex) Sample(pos mgl32.Vec3) float32 {
	x, y, z := float64(pos[0]), float64(pos[1]), float64(pos[2])
	f := s.frequency
	amplitude := 1.0

	var sum float64
	for i := 0; i < s.octaves; i++ {
		sum += s.noise.Eval3(x*f, y*f, z*f) * amplitude
		f *= lacunarity
		amplitude *= persistence
	}
	return float32(sum * s.norm)
}
