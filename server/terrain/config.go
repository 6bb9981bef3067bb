// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"errors"
	"fmt"
	"github.com/SoftbearStudios/driftland/server/world"
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

// Config holds the terrain parameters for a session.
// It is read-only after the streamer is created.
type Config struct {
	ChunkSize        float32       `yaml:"chunkSize" json:"chunkSize"`   // world units per chunk edge
	Resolution       int           `yaml:"resolution" json:"resolution"` // vertices per chunk edge
	Amplitude        float32       `yaml:"amplitude" json:"amplitude"`
	NoiseScale       float32       `yaml:"noiseScale" json:"noiseScale"` // world to noise space
	RenderRadius     int           `yaml:"renderRadius" json:"renderRadius"`
	MaxSpawnsPerTick int           `yaml:"maxSpawnsPerTick" json:"maxSpawnsPerTick"`
	EyeHeight        float32       `yaml:"eyeHeight" json:"eyeHeight"`
	Noise            NoiseConfig   `yaml:"noise" json:"noise"`
	Scatter          ScatterConfig `yaml:"scatter" json:"scatter"`
}

type NoiseConfig struct {
	Kind      string  `yaml:"kind" json:"kind"` // "perlin" or "simplex"
	Seed      int64   `yaml:"seed" json:"seed"`
	Frequency float32 `yaml:"frequency" json:"frequency"`
	Octaves   int     `yaml:"octaves" json:"octaves"`
}

type ScatterConfig struct {
	Radius float32 `yaml:"radius" json:"radius"` // minimum distance between points in a unit square
	Seed   int64   `yaml:"seed" json:"seed"`
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:        8,
		Resolution:       5,
		Amplitude:        8,
		NoiseScale:       0.01,
		RenderRadius:     16,
		MaxSpawnsPerTick: 64,
		EyeHeight:        1.5,
		Noise: NoiseConfig{
			Kind:      "perlin",
			Seed:      42,
			Frequency: 2,
			Octaves:   4,
		},
		Scatter: ScatterConfig{
			Radius: 0.15,
			Seed:   42,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig.
// An empty filename returns the defaults.
func LoadConfig(filename string) (Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return Config{}, fmt.Errorf("open terrain config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}

// DecodeConfig decodes YAML over DefaultConfig and validates the result.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode terrain config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.ChunkSize <= 0:
		return fmt.Errorf("invalid terrain config: chunkSize %v must be positive", cfg.ChunkSize)
	case cfg.Resolution < 2:
		return fmt.Errorf("invalid terrain config: resolution %d must be at least 2", cfg.Resolution)
	case cfg.NoiseScale <= 0:
		return fmt.Errorf("invalid terrain config: noiseScale %v must be positive", cfg.NoiseScale)
	case cfg.RenderRadius < 0:
		return fmt.Errorf("invalid terrain config: renderRadius %d must not be negative", cfg.RenderRadius)
	case cfg.MaxSpawnsPerTick < 1:
		return fmt.Errorf("invalid terrain config: maxSpawnsPerTick %d must be at least 1", cfg.MaxSpawnsPerTick)
	case cfg.Scatter.Radius <= 0 || cfg.Scatter.Radius >= 1:
		return fmt.Errorf("invalid terrain config: scatter radius %v must be in (0, 1)", cfg.Scatter.Radius)
	}
	return nil
}

// GridPos is the integer coordinate of a chunk.
type GridPos struct {
	X int
	Z int
}

func (g GridPos) String() string {
	return fmt.Sprintf("(%d, %d)", g.X, g.Z)
}

// DistanceSquared in cells.
func (g GridPos) DistanceSquared(other GridPos) int {
	dx := g.X - other.X
	dz := g.Z - other.Z
	return dx*dx + dz*dz
}

// GridOf returns the chunk containing pos.
func (cfg *Config) GridOf(pos world.Vec2f) GridPos {
	cell := pos.Div(cfg.ChunkSize).Floor()
	return GridPos{X: int(cell.X), Z: int(cell.Y)}
}

// Origin is the minimum corner of the chunk.
func (cfg *Config) Origin(g GridPos) world.Vec2f {
	return world.Vec2f{X: float32(g.X) * cfg.ChunkSize, Y: float32(g.Z) * cfg.ChunkSize}
}

func (cfg *Config) Center(g GridPos) world.Vec2f {
	return world.Vec2f{X: (float32(g.X) + 0.5) * cfg.ChunkSize, Y: (float32(g.Z) + 0.5) * cfg.ChunkSize}
}

// Footprint is the horizontal extent of the chunk.
func (cfg *Config) Footprint(g GridPos) world.AABB {
	o := cfg.Origin(g)
	return world.AABBFrom(o.X, o.Y, cfg.ChunkSize, cfg.ChunkSize)
}

// Step is the distance between adjacent mesh vertices.
func (cfg *Config) Step() float32 {
	return cfg.ChunkSize / float32(cfg.Resolution-1)
}
