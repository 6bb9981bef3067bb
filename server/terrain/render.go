// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"fmt"
	"github.com/SoftbearStudios/driftland/server/world"
	"image"
	"image/color"
)

type ColorVec [3]float32

// Height bands as fractions of Config.Amplitude.
const (
	waterLevel = -0.35
	sandLevel  = -0.25
	grassLevel = 0.2
	rockLevel  = 0.45
)

var colors = [...]ColorVec{
	RGB(0, 50, 115),
	RGB(0, 75, 130),
	RGB(194, 178, 128),
	RGB(90, 180, 30),
	RGB(105, 110, 115),
	Gray(220),
}

// HeightFunc returns the height at a world position and whether anything
// exists there.
type HeightFunc func(wx, wz float32) (float32, bool)

// Render draws a top down view of size*size pixels centered on center, with
// metersPerPixel world units per pixel. Missing terrain is transparent.
func Render(size int, center world.Vec2f, metersPerPixel, amplitude float32, height HeightFunc) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	o := center.Sub(world.Vec2f{X: 0.5, Y: 0.5}.Mul(float32(size) * metersPerPixel))

	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			h, ok := height(o.X+float32(i)*metersPerPixel, o.Y+float32(j)*metersPerPixel)
			if !ok {
				continue
			}
			img.Set(i, j, HeightColor(h/amplitude).Color())
		}
	}

	return img
}

// HeightColor maps a height as a fraction of amplitude to a colour.
func HeightColor(h float32) ColorVec {
	switch {
	case h <= waterLevel:
		return colors[0].Lerp(colors[1], clamp((h+1)/(waterLevel+1)))
	case h <= sandLevel:
		return colors[2]
	case h <= grassLevel:
		return colors[2].Lerp(colors[3], clamp((h-sandLevel)*10))
	case h <= rockLevel:
		return colors[3].Lerp(colors[4], clamp((h-grassLevel)*5))
	default:
		return colors[4].Lerp(colors[5], clamp((h-rockLevel)*2))
	}
}

func Gray(v byte) ColorVec {
	return RGB(v, v, v)
}

func RGB(r, g, b byte) ColorVec {
	const factor = 1.0 / 255
	return ColorVec{float32(r) * factor, float32(g) * factor, float32(b) * factor}
}

func (vec ColorVec) String() string {
	return fmt.Sprintf("vec4(%.3f, %.3f, %.3f, 1.0)", vec[0], vec[1], vec[2])
}

func (vec ColorVec) Mul(v float32) ColorVec {
	vec[0] *= v
	vec[1] *= v
	vec[2] *= v
	return vec
}

func (vec ColorVec) Lerp(other ColorVec, factor float32) ColorVec {
	for i := range vec {
		vec[i] = world.Lerp(vec[i], other[i], factor)
	}
	return vec
}

func (vec ColorVec) Color() color.RGBA {
	return color.RGBA{R: floatToByte(vec[0]), G: floatToByte(vec[1]), B: floatToByte(vec[2]), A: 255}
}

func clamp(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func floatToByte(f float32) byte {
	if f < 0 {
		return 0
	}
	if f > 1.0 {
		return 255
	}
	return byte(f * 255)
}
