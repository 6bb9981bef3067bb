// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/terrain/compressed"
	"github.com/SoftbearStudios/driftland/server/terrain/noise"
	"github.com/SoftbearStudios/driftland/server/terrain/stream"
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/nfnt/resize"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
)

func main() {
	var (
		configFile string
		cpuProfile string
		out        string
		size       int
		thumbnail  int
		turns      string
		walk       int
	)

	flag.StringVar(&configFile, "config", "", "terrain config `file` (YAML)")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	flag.StringVar(&out, "out", "out.png", "output `file`")
	flag.IntVar(&size, "size", 512, "image width and height in pixels")
	flag.IntVar(&thumbnail, "thumbnail", 0, "also write a thumbnail this many pixels wide next to the output")
	flag.StringVar(&turns, "turns", "", "turns to take, L for left and R for right, e.g. RRL")
	flag.IntVar(&walk, "walk", 3, "chunks to walk before each turn")
	flag.Parse()

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := terrain.LoadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	img, err := run(&cfg, size, strings.ToUpper(turns), walk)
	if err != nil {
		log.Fatal(err)
	}

	if err = write(out, img); err != nil {
		log.Fatal(err)
	}

	if thumbnail > 0 {
		thumb := resize.Thumbnail(uint(thumbnail), uint(thumbnail), img, resize.Lanczos3)
		if err = write(filepath.Join(filepath.Dir(out), "thumb_"+filepath.Base(out)), thumb); err != nil {
			log.Fatal(err)
		}
	}
}

func run(cfg *terrain.Config, size int, turns string, walk int) (image.Image, error) {
	field, err := noise.New(cfg.Noise)
	if err != nil {
		return nil, err
	}

	service := stream.New(*cfg, field, stream.WithLogger(log.New(os.Stdout, "", 0)))
	observer := &stream.Observer{Forward: world.North}

	fill(service, observer)
	for _, turn := range turns {
		switch turn {
		case 'L':
			observer.Forward = observer.Forward.RotN90()
		case 'R':
			observer.Forward = observer.Forward.Rot90()
		default:
			return nil, fmt.Errorf("invalid turn %q", turn)
		}

		// Walk in small steps so every chunk boundary is crossed
		steps := walk * 4
		for i := 0; i < steps; i++ {
			observer.Position = observer.Position.AddScaled(observer.Forward, cfg.ChunkSize/4)
			service.Tick(observer)
		}
		fill(service, observer)
	}

	fmt.Printf("chunks: %d, rotations: %d, sampler: %s\n", service.Len(), service.Rotations(), service.Sampler())
	reportCompression(service, cfg)

	extent := float32(2*cfg.RenderRadius+1) * cfg.ChunkSize
	return terrain.Render(size, observer.Position, extent/float32(size), cfg.Amplitude, func(wx, wz float32) (float32, bool) {
		if !service.Has(cfg.GridOf(world.Vec2f{X: wx, Y: wz})) {
			return 0, false
		}
		return service.Height(wx, wz), true
	}), nil
}

func write(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// fill ticks until nothing new spawns.
func fill(service *stream.Service, observer *stream.Observer) {
	for i := 0; i < 1000; i++ {
		if len(service.Tick(observer).Spawned) == 0 {
			return
		}
	}
}

func reportCompression(service *stream.Service, cfg *terrain.Config) {
	q := compressed.NewQuantizer(cfg.Amplitude)

	var raw, packed int
	for _, chunk := range service.Chunks() {
		heights := compressed.Encode(chunk.Mesh.Positions, cfg.Resolution, q)
		raw += len(chunk.Mesh.Positions) * 4
		packed += len(heights.Data)
		heights.Pool()
	}

	if raw > 0 {
		fmt.Printf("heights compressed to %d%% (%dkb)\n", 100*packed/raw, packed/1024)
	}
}
