// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/terrain/compressed"
	"github.com/SoftbearStudios/driftland/server/terrain/noise"
	"github.com/SoftbearStudios/driftland/server/terrain/stream"
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/google/uuid"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

const (
	botPeriod    = time.Second / 4
	debugPeriod  = time.Second * 5
	updatePeriod = world.TickPeriod
)

// HubOptions configures a Hub.
type HubOptions struct {
	Cloud  Cloud
	Config terrain.Config
	// Field defaults to one built from Config.Noise.
	Field terrain.Field
	// MinClients is topped up with bots.
	MinClients int
	// Logger receives terrain rotation logs. Nil discards them.
	Logger *log.Logger
}

// Hub maintains the terrain and the set of active clients. The terrain
// follows a single observer, flown by the pilot client.
type Hub struct {
	cfg       terrain.Config
	service   *stream.Service
	quantizer compressed.Quantizer
	observer  *stream.Observer
	pilot     Client
	rotations uint64 // total since start

	clients    ClientList // implemented as double-linked list
	minClients int

	cloud       Cloud
	statusJSON  atomic.Value
	snapshotPNG atomic.Value

	// Benchmarks
	funcBenches []funcBench

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client

	// Tickers
	cloudTicker  *time.Ticker
	updateTicker *time.Ticker
	debugTicker  *time.Ticker
	botsTicker   *time.Ticker
}

func NewHub(options HubOptions) (*Hub, error) {
	cfg := options.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	field := options.Field
	if field == nil {
		var err error
		if field, err = noise.New(cfg.Noise); err != nil {
			return nil, err
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := options.Cloud
	if c == nil {
		c = Offline{}
	}

	return &Hub{
		cfg:          cfg,
		service:      stream.New(cfg, field, stream.WithLogger(logger)),
		quantizer:    compressed.NewQuantizer(cfg.Amplitude),
		minClients:   options.MinClients,
		cloud:        c,
		inbound:      make(chan SignedInbound, 16+options.MinClients*2),
		register:     make(chan Client, 8),
		unregister:   make(chan Client, 16),
		cloudTicker:  time.NewTicker(c.UpdatePeriod()),
		updateTicker: time.NewTicker(updatePeriod),
		debugTicker:  time.NewTicker(debugPeriod),
		botsTicker:   time.NewTicker(botPeriod),
	}, nil
}

func (h *Hub) Run() {
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
		println("That's it, I'm out -hub") // Don't waste time debugging hub exists
		os.Exit(1)
	}()

	h.Cloud()

	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case in := <-h.inbound:
			// Read all queued inbound messages
			n := len(h.inbound)

			for {
				h.process(in)

				if n--; n <= 0 {
					break
				}

				in = <-h.inbound
			}
		case <-h.updateTicker.C:
			h.Update()
		case <-h.debugTicker.C:
			h.Debug()
			h.SnapshotTerrain()
		case <-h.botsTicker.C:
			for i := h.clients.Len + len(h.register) - len(h.unregister); i < h.minClients; i++ {
				select {
				case h.register <- &BotClient{}:
				default:
					break
				}
			}
		case <-h.cloudTicker.C:
			h.Cloud()
		}
	}
}

// Register queues a client to be added to the hub.
func (h *Hub) Register(client Client) {
	h.register <- client
}

// Unregister queues a client to be removed from the hub.
func (h *Hub) Unregister(client Client) {
	h.unregister <- client
}

// ReceiveSigned queues an inbound message. If block is false and the queue is
// full, the message is dropped.
func (h *Hub) ReceiveSigned(in SignedInbound, block bool) {
	if block {
		h.inbound <- in
		return
	}

	select {
	case h.inbound <- in:
	default:
		// Drop messages to avoid downfall of server
	}
}

func (h *Hub) add(client Client) {
	h.clients.Add(client)
	data := client.Data()
	data.Hub = h
	data.Session = Session{ID: uuid.New()}
	client.Init()

	client.Send(Welcome{
		ClientID:  data.Session.ID,
		Config:    h.cfg,
		Quantizer: h.quantizer,
		Observer:  h.observerCopy(),
	})
}

func (h *Hub) remove(client Client) {
	client.Close()

	if h.pilot == client {
		fmt.Println("pilot", client.Data().Session.String(), "left")
		h.pilot = nil
	}

	client.Data().Hub = nil
	h.clients.Remove(client)
}

func (h *Hub) process(in SignedInbound) {
	data := in.Client.Data()
	// Client may have been unregistered since sending
	if h == data.Hub {
		in.Process(h, in.Client, &data.Session)
	}
}

func (h *Hub) setPilot(client Client) {
	if h.pilot != nil {
		fmt.Println(client.Data().Session.String(), "took over from", h.pilot.Data().Session.String())
	}
	h.pilot = client
}

func (h *Hub) observerCopy() *stream.Observer {
	if h.observer == nil {
		return nil
	}
	observer := *h.observer
	return &observer
}
