// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"fmt"
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/go-gl/mathgl/mgl32"
	"math"
	"math/rand"
)

// Sampler maps the horizontal plane onto two planes in noise space.
// The left quadrant maps through (LeftAxis, CenterAxis) and the right quadrant
// through (CenterAxis, RightAxis). Both planes contain CenterAxis, which is
// sampled along the seam between them, so the field is continuous across it.
type Sampler struct {
	VisibleAxis VisibleAxis
	// LeftAxis is the across axis of the left quadrant.
	LeftAxis mgl32.Vec3
	// CenterAxis is sampled along the seam.
	CenterAxis mgl32.Vec3
	// RightAxis is the across axis of the right quadrant.
	RightAxis mgl32.Vec3
	// NoiseOrigin is the noise space point at QuadrantOrigin.
	NoiseOrigin mgl32.Vec3
	// QuadrantOrigin is where the four quadrants meet.
	QuadrantOrigin world.Vec2f
}

// DefaultSampler faces north with noise space aligned to the world.
func DefaultSampler() Sampler {
	return Sampler{
		VisibleAxis: North,
		LeftAxis:    mgl32.Vec3{-1, 0, 0},
		CenterAxis:  mgl32.Vec3{0, 0, -1},
		RightAxis:   mgl32.Vec3{1, 0, 0},
	}
}

func (s Sampler) String() string {
	return fmt.Sprintf("{%s origin=%v noise=%v}", s.VisibleAxis, s.QuadrantOrigin, s.NoiseOrigin)
}

// NoisePoint maps a world position to noise space.
func (s *Sampler) NoisePoint(wx, wz, scale float32) mgl32.Vec3 {
	d := world.Vec2f{X: wx - s.QuadrantOrigin.X, Y: wz - s.QuadrantOrigin.Y}
	visible := s.VisibleAxis.Dir()
	along := d.Dot(visible)
	lateral := d.Dot(s.VisibleAxis.Left().Dir())

	var across mgl32.Vec3
	if lateral >= 0 {
		across = s.LeftAxis.Mul(lateral * scale)
	} else {
		across = s.RightAxis.Mul(-lateral * scale)
	}

	return s.NoiseOrigin.Add(s.CenterAxis.Mul(along * scale)).Add(across)
}

// QuadrantAt names the quadrant containing a world position.
func (s *Sampler) QuadrantAt(wx, wz float32) Quadrant {
	north := wz < s.QuadrantOrigin.Y
	east := wx >= s.QuadrantOrigin.X
	switch {
	case north && !east:
		return NorthWest
	case north && east:
		return NorthEast
	case !north && east:
		return SouthEast
	default:
		return SouthWest
	}
}

// snap returns the chunk boundary at or behind pos along dir.
func snap(pos, dir world.Vec2f, chunkSize float32) float32 {
	return float32(math.Floor(float64(pos.Dot(dir)/chunkSize))) * chunkSize
}

// SlideOrigin moves the quadrant origin along the visible axis to the chunk
// boundary just behind the observer. NoiseOrigin moves by the same amount so
// no height changes.
func (s *Sampler) SlideOrigin(observer world.Vec2f, chunkSize, scale float32) {
	visible := s.VisibleAxis.Dir()
	delta := snap(observer, visible, chunkSize) - s.QuadrantOrigin.Dot(visible)
	if delta == 0 {
		return
	}
	s.NoiseOrigin = s.NoiseOrigin.Add(s.CenterAxis.Mul(delta * scale))
	s.QuadrantOrigin = s.QuadrantOrigin.AddScaled(visible, delta)
}

// rotatedOrigin snaps along the new visible axis and keeps the cross coordinate.
func (s *Sampler) rotatedOrigin(visible VisibleAxis, observer world.Vec2f, chunkSize float32) world.Vec2f {
	dir := visible.Dir()
	cross := visible.Left().Dir()
	return dir.Mul(snap(observer, dir, chunkSize)).AddScaled(cross, s.QuadrantOrigin.Dot(cross))
}

// RotateLeft turns the sampler 90 degrees counterclockwise. The old left
// quadrant survives as the new right quadrant and the new left quadrant gets
// a fresh axis.
func (s Sampler) RotateLeft(observer world.Vec2f, chunkSize, scale float32, r *rand.Rand) Sampler {
	visible := s.VisibleAxis.Left()
	origin := s.rotatedOrigin(visible, observer, chunkSize)

	left := RandomOrthogonal(s.LeftAxis, r)
	center := s.LeftAxis
	right := s.CenterAxis

	d := origin.Sub(s.QuadrantOrigin)
	along := d.Dot(visible.Dir())
	across := -d.Dot(visible.Left().Dir())
	noiseOrigin := s.NoiseOrigin.
		Add(center.Mul(along * scale)).
		Add(right.Mul(across * scale))

	return Sampler{
		VisibleAxis:    visible,
		LeftAxis:       left,
		CenterAxis:     center,
		RightAxis:      right,
		NoiseOrigin:    noiseOrigin,
		QuadrantOrigin: origin,
	}
}

// RotateRight turns the sampler 90 degrees clockwise. The old right quadrant
// survives as the new left quadrant and the new right quadrant gets a fresh
// axis.
func (s Sampler) RotateRight(observer world.Vec2f, chunkSize, scale float32, r *rand.Rand) Sampler {
	visible := s.VisibleAxis.Right()
	origin := s.rotatedOrigin(visible, observer, chunkSize)

	left := s.CenterAxis
	center := s.RightAxis
	right := RandomOrthogonal(s.RightAxis, r)

	d := origin.Sub(s.QuadrantOrigin)
	along := d.Dot(visible.Dir())
	across := d.Dot(visible.Left().Dir())
	noiseOrigin := s.NoiseOrigin.
		Add(left.Mul(across * scale)).
		Add(center.Mul(along * scale))

	return Sampler{
		VisibleAxis:    visible,
		LeftAxis:       left,
		CenterAxis:     center,
		RightAxis:      right,
		NoiseOrigin:    noiseOrigin,
		QuadrantOrigin: origin,
	}
}

// RandomUnitVec3 draws a uniformly distributed direction.
func RandomUnitVec3(r *rand.Rand) mgl32.Vec3 {
	for {
		v := mgl32.Vec3{r.Float32()*2 - 1, r.Float32()*2 - 1, r.Float32()*2 - 1}
		if l := v.LenSqr(); l > 0.01 && l <= 1 {
			return v.Normalize()
		}
	}
}

// RandomOrthogonal draws a random unit vector orthogonal to dir, which must
// be a unit vector.
func RandomOrthogonal(dir mgl32.Vec3, r *rand.Rand) mgl32.Vec3 {
	for {
		v := RandomUnitVec3(r)
		projected := v.Sub(dir.Mul(v.Dot(dir)))
		if projected.LenSqr() > 0.01 {
			return projected.Normalize()
		}
	}
}
