// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream keeps a bounded set of terrain chunks generated around a
// moving observer, rotating the noise sampler as the observer turns.
package stream

import (
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/terrain/scatter"
	"github.com/SoftbearStudios/driftland/server/world"
	"io"
	"log"
	"math/rand"
	"sort"
)

// Observer is the position and horizontal facing that terrain follows.
type Observer struct {
	Position world.Vec2f `json:"position"`
	Forward  world.Vec2f `json:"forward"`
}

// Chunk is a generated cell of terrain.
type Chunk struct {
	terrain.GridPos
	Mesh       *terrain.Mesh
	Edges      terrain.EdgeHeights
	Colour     terrain.Colour
	Quadrant   terrain.Quadrant
	Placements []scatter.Placement
}

// Report is what changed during a Tick.
type Report struct {
	Rotated        bool
	Spawned        []*Chunk
	Despawned      []terrain.GridPos
	ObserverHeight float32
}

type Option func(*Service)

// WithLogger logs rotations and stale region changes to logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithScatterer replaces the default scatterer. Nil disables objects.
func WithScatterer(scatterer *scatter.Scatterer) Option {
	return func(s *Service) {
		s.scatterer = scatterer
	}
}

// Service owns all terrain state. It is not safe for concurrent use; one
// goroutine calls Tick and the queries.
type Service struct {
	cfg       terrain.Config
	field     terrain.Field
	sampler   terrain.Sampler
	stale     *terrain.StaleRegion
	chunks    map[terrain.GridPos]*Chunk
	rng       *rand.Rand
	scatterer *scatter.Scatterer
	logger    *log.Logger

	colours    [4]terrain.Colour
	nextColour terrain.Colour
	rotations  uint32
}

func New(cfg terrain.Config, field terrain.Field, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		field:      field,
		sampler:    terrain.DefaultSampler(),
		chunks:     make(map[terrain.GridPos]*Chunk),
		rng:        rand.New(rand.NewSource(cfg.Noise.Seed)),
		scatterer:  scatter.New(cfg.Scatter),
		logger:     log.New(io.Discard, "", 0),
		colours:    [4]terrain.Colour{terrain.Red, terrain.Green, terrain.Red, terrain.Red},
		nextColour: terrain.Blue,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick advances the terrain one frame for the observer. A nil observer does
// nothing.
func (s *Service) Tick(observer *Observer) (report Report) {
	if observer == nil {
		return
	}

	report.Rotated = s.detectRotation(observer, &report)
	s.sampler.SlideOrigin(observer.Position, s.cfg.ChunkSize, s.cfg.NoiseScale)
	s.manageChunks(observer, &report)
	report.ObserverHeight = s.FollowHeight(observer.Position) + s.cfg.EyeHeight
	return
}

func (s *Service) detectRotation(observer *Observer, report *Report) bool {
	if observer.Forward.LengthSquared() == 0 {
		return false
	}

	current := s.sampler.VisibleAxis
	sector := terrain.SectorOf(observer.Forward)
	if sector == current {
		return false
	}

	cell := s.cfg.GridOf(observer.Position)
	center := s.cfg.Center(cell)

	// A half turn counts as a left turn; the next tick finishes it.
	right := sector == current.Right()
	visible := current.Left()
	retiring := current.RightQuadrant()
	if right {
		visible = current.Right()
		retiring = current.LeftQuadrant()
	}

	// The observer's chunk keeps its old mesh, so neighbours generated after
	// the rotation blend towards the sampler that made it.
	if s.sampler.QuadrantAt(center.X, center.Y) == retiring && (s.stale == nil || s.stale.GridPos != cell) {
		if chunk, ok := s.chunks[cell]; ok {
			s.stale = &terrain.StaleRegion{
				Sampler: s.sampler,
				GridPos: cell,
				Edges:   chunk.Edges,
			}
			s.logger.Printf("stale region captured at %s", cell)
		}
	}

	var next terrain.Sampler
	var fresh terrain.Quadrant
	if right {
		next = s.sampler.RotateRight(observer.Position, s.cfg.ChunkSize, s.cfg.NoiseScale, s.rng)
		fresh = visible.RightQuadrant()
	} else {
		next = s.sampler.RotateLeft(observer.Position, s.cfg.ChunkSize, s.cfg.NoiseScale, s.rng)
		fresh = visible.LeftQuadrant()
	}

	dir := visible.Dir()
	originAlong := next.QuadrantOrigin.Dot(dir)
	for g := range s.chunks {
		if g == cell {
			continue
		}
		if s.cfg.Center(g).Dot(dir) < originAlong {
			s.despawn(g, report)
		}
	}

	s.sampler = next
	s.colours[fresh.Index()] = s.nextColour
	s.nextColour = s.nextColour.Next()
	s.rotations++

	s.logger.Printf("rotated %s to %s at %v (%d)", current, visible, observer.Position, s.rotations)
	return true
}

type candidate struct {
	terrain.GridPos
	distSq int
}

func (s *Service) manageChunks(observer *Observer, report *Report) {
	cell := s.cfg.GridOf(observer.Position)
	radius := s.cfg.RenderRadius
	keep := (radius + 2) * (radius + 2)

	dir := s.sampler.VisibleAxis.Dir()
	observerAlong := s.cfg.Center(cell).Dot(dir)

	for g := range s.chunks {
		if g.DistanceSquared(cell) > keep || s.cfg.Center(g).Dot(dir) < observerAlong {
			s.despawn(g, report)
		}
	}

	var candidates []candidate
	for z := cell.Z - radius; z <= cell.Z+radius; z++ {
		for x := cell.X - radius; x <= cell.X+radius; x++ {
			g := terrain.GridPos{X: x, Z: z}
			if _, ok := s.chunks[g]; ok {
				continue
			}
			distSq := g.DistanceSquared(cell)
			if distSq > radius*radius || s.cfg.Center(g).Dot(dir) < observerAlong {
				continue
			}
			candidates = append(candidates, candidate{GridPos: g, distSq: distSq})
		}
	}

	// Nearest first so the observer's surroundings appear before the horizon.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.distSq != b.distSq {
			return a.distSq < b.distSq
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})

	if len(candidates) > s.cfg.MaxSpawnsPerTick {
		candidates = candidates[:s.cfg.MaxSpawnsPerTick]
	}
	for _, c := range candidates {
		report.Spawned = append(report.Spawned, s.spawn(c.GridPos))
	}
}

func (s *Service) spawn(g terrain.GridPos) *Chunk {
	mesh, edges := terrain.GenerateChunkMesh(g, &s.cfg, s.field, &s.sampler, s.stale)
	center := s.cfg.Center(g)
	quadrant := s.sampler.QuadrantAt(center.X, center.Y)

	chunk := &Chunk{
		GridPos:  g,
		Mesh:     mesh,
		Edges:    edges,
		Colour:   s.colours[quadrant.Index()],
		Quadrant: quadrant,
	}
	if s.scatterer != nil {
		chunk.Placements = s.scatterer.Scatter(g, &s.cfg, s.field, &s.sampler, s.stale)
	}

	s.chunks[g] = chunk
	return chunk
}

func (s *Service) despawn(g terrain.GridPos, report *Report) {
	if s.stale != nil && s.stale.GridPos == g {
		s.stale = nil
		s.logger.Printf("stale region at %s cleared", g)
	}
	delete(s.chunks, g)
	report.Despawned = append(report.Despawned, g)
}

// Height is the ground height at a world position, matching generated meshes.
func (s *Service) Height(x, z float32) float32 {
	return terrain.Height(x, z, s.field, &s.sampler, &s.cfg, s.stale)
}

// FollowHeight is the ground height under a follower such as a companion.
func (s *Service) FollowHeight(pos world.Vec2f) float32 {
	return s.Height(pos.X, pos.Y)
}

// Chunks returns the live chunks ordered by Z then X.
func (s *Service) Chunks() []*Chunk {
	chunks := make([]*Chunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		chunks = append(chunks, chunk)
	}
	sort.Slice(chunks, func(i, j int) bool {
		a, b := chunks[i].GridPos, chunks[j].GridPos
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
	return chunks
}

func (s *Service) Chunk(g terrain.GridPos) *Chunk {
	return s.chunks[g]
}

func (s *Service) Has(g terrain.GridPos) bool {
	_, ok := s.chunks[g]
	return ok
}

func (s *Service) Len() int {
	return len(s.chunks)
}

// Rotations is the number of rotations since the last TakeRotations.
func (s *Service) Rotations() uint32 {
	return s.rotations
}

// TakeRotations returns Rotations and resets it.
func (s *Service) TakeRotations() uint32 {
	n := s.rotations
	s.rotations = 0
	return n
}

// Colours are the debug colour tags indexed by Quadrant.Index.
func (s *Service) Colours() [4]terrain.Colour {
	return s.colours
}

func (s *Service) Sampler() terrain.Sampler {
	return s.sampler
}

// Stale returns a copy of the stale region, if any.
func (s *Service) Stale() *terrain.StaleRegion {
	if s.stale == nil {
		return nil
	}
	stale := *s.stale
	return &stale
}

func (s *Service) Config() *terrain.Config {
	return &s.cfg
}
