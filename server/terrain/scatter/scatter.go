// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package scatter

import (
	"fmt"
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Category is a kind of terrain object.
type Category uint8

const (
	None Category = iota
	DeadTree
	Rock
	Tree
	GroundCover
	CategoryCount
)

var categoryNames = [...]string{"none", "deadTree", "rock", "tree", "groundCover"}

func (c Category) String() string {
	if c >= CategoryCount {
		return fmt.Sprintf("category(%d)", c)
	}
	return categoryNames[c]
}

func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return None, false
}

// Classify maps a hash value to a category.
func Classify(t float32) Category {
	switch {
	case t > 0.998 && t < 1:
		return DeadTree
	case t > 0.995:
		return Rock
	case t > 0.985:
		return Tree
	case t > 0.93:
		return GroundCover
	default:
		return None
	}
}

// variantOffset is added to the noise point before hashing the variant.
func (c Category) variantOffset() mgl32.Vec3 {
	switch c {
	case Rock:
		return mgl32.Vec3{0, 1, 0}
	case GroundCover:
		return mgl32.Vec3{0, 0, 1}
	default:
		return mgl32.Vec3{1, 0, 0}
	}
}

// Catalog lists the asset names of each category.
type Catalog [CategoryCount][]string

func DefaultCatalog() *Catalog {
	var catalog Catalog
	catalog[Tree] = []string{
		"Pine_1", "Pine_2", "Pine_3", "Pine_4", "Pine_5",
		"CommonTree_1", "CommonTree_2", "CommonTree_3", "CommonTree_4", "CommonTree_5",
	}
	catalog[DeadTree] = []string{"DeadTree_1", "DeadTree_2", "DeadTree_3", "DeadTree_4", "DeadTree_5"}
	catalog[Rock] = []string{"Rock_Medium_1", "Rock_Medium_2", "Rock_Medium_3"}
	catalog[GroundCover] = []string{
		"Grass_Wispy_Short", "Grass_Wispy_Tall", "Grass_Common_Short", "Grass_Common_Tall",
		"Flower_3_Single", "Flower_3_Group", "Flower_4_Single", "Flower_4_Group",
		"Mushroom_Common", "Mushroom_Laetiporus",
		"Fern_1", "Plant_1", "Plant_1_Big", "Plant_7", "Plant_7_Big",
		"Clover_1", "Clover_2", "Bush_Common", "Bush_Common_Flowers",
		"Pebble_Round_1", "Pebble_Round_2", "Pebble_Round_3", "Pebble_Round_4", "Pebble_Round_5",
		"Pebble_Square_1", "Pebble_Square_2", "Pebble_Square_3", "Pebble_Square_4", "Pebble_Square_5", "Pebble_Square_6",
	}
	return &catalog
}

// Placement is an object on the terrain surface.
type Placement struct {
	Category Category   `json:"category"`
	Variant  int        `json:"variant"`
	Asset    string     `json:"asset"`
	Position [3]float32 `json:"position"`
}

// Hash maps a point to [0, 1). It is not cryptographic, only stable.
func Hash(p mgl32.Vec3) float32 {
	v := math32.Sin(p.Dot(mgl32.Vec3{127.1, 311.7, 74.7})) * 43758.545
	return math32.Abs(v - math32.Trunc(v))
}

// Pick converts a fraction in [0, 1) to an index of a list of length n.
func Pick(n int, frac float32) int {
	i := int(frac * float32(n))
	if i > n-1 {
		i = n - 1
	}
	return i
}

// Scatterer places objects on chunks. Every chunk reuses the same blue noise
// points scaled to its footprint.
type Scatterer struct {
	Points  []world.Vec2f
	Catalog *Catalog
}

func New(cfg terrain.ScatterConfig) *Scatterer {
	return &Scatterer{
		Points:  BlueNoise(cfg.Radius, cfg.Seed),
		Catalog: DefaultCatalog(),
	}
}

// Scatter returns the objects of chunk g. Selection hashes the noise space
// position, so placements survive origin slides but change with rotation.
func (s *Scatterer) Scatter(g terrain.GridPos, cfg *terrain.Config, field terrain.Field, sampler *terrain.Sampler, stale *terrain.StaleRegion) []Placement {
	origin := cfg.Origin(g)

	var placements []Placement
	for _, point := range s.Points {
		pos := origin.AddScaled(point, cfg.ChunkSize)
		p := sampler.NoisePoint(pos.X, pos.Y, cfg.NoiseScale)

		category := Classify(Hash(p))
		if category == None {
			continue
		}
		variants := s.Catalog[category]
		if len(variants) == 0 {
			continue
		}
		variant := Pick(len(variants), Hash(p.Add(category.variantOffset())))

		height := terrain.Height(pos.X, pos.Y, field, sampler, cfg, stale)
		placements = append(placements, Placement{
			Category: category,
			Variant:  variant,
			Asset:    variants[variant],
			Position: [3]float32{pos.X, height, pos.Y},
		})
	}
	return placements
}
