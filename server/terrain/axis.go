// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/chewxy/math32"
)

// VisibleAxis is the cardinal direction the observer faces.
type VisibleAxis uint8

const (
	North VisibleAxis = iota
	East
	South
	West
)

var visibleAxisNames = [...]string{"north", "east", "south", "west"}

func (axis VisibleAxis) String() string {
	return visibleAxisNames[axis&3]
}

// Left is the axis 90 degrees counterclockwise.
func (axis VisibleAxis) Left() VisibleAxis {
	return (axis + 3) & 3
}

// Right is the axis 90 degrees clockwise.
func (axis VisibleAxis) Right() VisibleAxis {
	return (axis + 1) & 3
}

// Dir is the unit direction in the horizontal plane.
func (axis VisibleAxis) Dir() world.Vec2f {
	switch axis & 3 {
	case North:
		return world.North
	case East:
		return world.East
	case South:
		return world.South
	default:
		return world.West
	}
}

// LeftQuadrant is ahead and to the left when facing axis.
func (axis VisibleAxis) LeftQuadrant() Quadrant {
	return Quadrant(axis & 3)
}

// RightQuadrant is ahead and to the right when facing axis.
func (axis VisibleAxis) RightQuadrant() Quadrant {
	return Quadrant((axis + 1) & 3)
}

// SectorOf classifies a horizontal forward vector into the cardinal sector
// within 45 degrees of it. Exact diagonals go to north/south.
func SectorOf(forward world.Vec2f) VisibleAxis {
	if math32.Abs(forward.Y) >= math32.Abs(forward.X) {
		if forward.Y < 0 {
			return North
		}
		return South
	}
	if forward.X > 0 {
		return East
	}
	return West
}

// Quadrant is one of the four world regions around a sampler origin.
type Quadrant uint8

const (
	NorthWest Quadrant = iota
	NorthEast
	SouthEast
	SouthWest
)

var quadrantNames = [...]string{"northWest", "northEast", "southEast", "southWest"}

func (q Quadrant) String() string {
	return quadrantNames[q&3]
}

func (q Quadrant) Index() int {
	return int(q & 3)
}

// Left is the neighbouring quadrant counterclockwise.
func (q Quadrant) Left() Quadrant {
	return (q + 3) & 3
}

// Right is the neighbouring quadrant clockwise.
func (q Quadrant) Right() Quadrant {
	return (q + 1) & 3
}

// Colour is the debug tint of a quadrant, handed to the renderer as a
// material tag.
type Colour uint8

const (
	Red Colour = iota
	Green
	Blue
	Yellow
	Cyan
	Magenta
	Orange
	White
	ColourCount
)

var colourNames = [...]string{"red", "green", "blue", "yellow", "cyan", "magenta", "orange", "white"}

var colourRGB = [...]ColorVec{
	RGB(255, 0, 0),
	RGB(0, 255, 0),
	RGB(0, 0, 255),
	RGB(255, 255, 0),
	RGB(0, 255, 255),
	RGB(255, 0, 255),
	RGB(255, 128, 0),
	Gray(255),
}

func (c Colour) String() string {
	return colourNames[c%ColourCount]
}

// Next cycles through all colours.
func (c Colour) Next() Colour {
	return (c + 1) % ColourCount
}

func (c Colour) RGB() ColorVec {
	return colourRGB[c%ColourCount]
}

// ParseColour is the inverse of Colour.String.
func ParseColour(name string) (Colour, bool) {
	for i, n := range colourNames {
		if n == name {
			return Colour(i), true
		}
	}
	return 0, false
}

// ParseQuadrant is the inverse of Quadrant.String.
func ParseQuadrant(name string) (Quadrant, bool) {
	for i, n := range quadrantNames {
		if n == name {
			return Quadrant(i), true
		}
	}
	return 0, false
}
