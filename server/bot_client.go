// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/driftland/server/terrain/stream"
	"github.com/SoftbearStudios/driftland/server/world"
	"io"
	"math/rand"
)

const (
	encodeBotMessages = false

	botSpeed = 6 // world units per second
)

// BotClient walks the observer around when nobody else is piloting. It walks
// mostly straight and occasionally turns by a right angle or wanders off at a
// random heading.
type BotClient struct {
	ClientData
	observer   stream.Observer
	name       string
	destroying bool
}

func (bot *BotClient) Bot() bool {
	return true
}

func (bot *BotClient) Close() {}

func (bot *BotClient) Data() *ClientData {
	return &bot.ClientData
}

func (bot *BotClient) Destroy() {
	if bot.destroying {
		return // In case goroutine hasn't run yet
	}

	bot.destroying = true
	hub := bot.Hub

	// Needs to go through always.
	select {
	case hub.unregister <- bot:
	default:
		go func() {
			hub.unregister <- bot
		}()
	}
}

func (bot *BotClient) Init() {
	r := getRand()
	bot.name = randomBotName(r)
	poolRand(r)
}

func (bot *BotClient) Send(out Outbound) {
	if bot.destroying {
		return
	}

	if encodeBotMessages {
		// Discard output
		if err := json.NewEncoder(io.Discard).Encode(Message{Data: out}); err != nil {
			panic("bot test marshal: " + err.Error())
		}
	}

	// Use local rand to avoid locking
	r := getRand()

	switch data := out.(type) {
	case Welcome:
		if data.Observer != nil {
			bot.observer = *data.Observer
		} else {
			bot.observer.Forward = world.North
		}
		bot.receiveAsync(Pilot{Name: bot.name})
	case *Update:
		if !data.Piloting {
			// Stay close to whoever is piloting so taking over is seamless
			if data.Observer != nil {
				bot.observer = *data.Observer
			}
			if data.Pilot == "" && prob(r, 0.1) {
				bot.receiveAsync(Pilot{Name: bot.name})
			}
			break
		}

		bot.walk(r)
		bot.receiveAsync(Observe{
			Position: bot.observer.Position,
			Forward:  bot.observer.Forward,
		})
	}

	// Pool resources
	poolRand(r)
	out.Pool()
}

func (bot *BotClient) walk(r *rand.Rand) {
	forward := &bot.observer.Forward
	if forward.LengthSquared() == 0 {
		*forward = world.North
	}

	switch {
	case prob(r, 0.002):
		*forward = forward.Rot90()
	case prob(r, 0.002):
		*forward = forward.RotN90()
	case prob(r, 0.001):
		*forward = (world.Angle(r.Float32()) * 2 * world.Pi).Vec2f()
	}

	step := botSpeed * float32(updatePeriod.Seconds())
	bot.observer.Position = bot.observer.Position.AddScaled(forward.Norm(), step)
}

// receiveAsync Doesn't deadlock the hub
func (bot *BotClient) receiveAsync(in Inbound) {
	bot.Hub.ReceiveSigned(SignedInbound{Client: bot, Inbound: in}, false)
}
