// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/chewxy/math32"
	"testing"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	cfg := terrain.DefaultConfig()
	cfg.RenderRadius = 3
	cfg.MaxSpawnsPerTick = 8

	h, err := NewHub(HubOptions{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *Hub) receive(client Client, in Inbound) {
	h.process(SignedInbound{Client: client, Inbound: in})
}

func TestNewHub_InvalidConfig(t *testing.T) {
	cfg := terrain.DefaultConfig()
	cfg.Resolution = 1
	if _, err := NewHub(HubOptions{Config: cfg}); err == nil {
		t.Error("expected error for resolution 1")
	}

	cfg = terrain.DefaultConfig()
	cfg.Noise.Kind = "worley"
	if _, err := NewHub(HubOptions{Config: cfg}); err == nil {
		t.Error("expected error for unknown noise")
	}
}

func TestHub_Welcome(t *testing.T) {
	h := testHub(t)
	client := &testClient{}
	h.add(client)

	if len(client.received) != 1 {
		t.Fatalf("expected 1 message got %d", len(client.received))
	}
	welcome, ok := client.received[0].(Welcome)
	if !ok {
		t.Fatalf("expected welcome got %T", client.received[0])
	}
	if welcome.ClientID != client.Session.ID || welcome.Config != h.cfg || welcome.Observer != nil {
		t.Errorf("unexpected welcome %+v", welcome)
	}
	if client.Hub != h || h.clients.Len != 1 {
		t.Error("client not registered")
	}

	h.remove(client)
	if client.Hub != nil || h.clients.Len != 0 {
		t.Error("client not removed")
	}
}

func TestHub_Pilot(t *testing.T) {
	h := testHub(t)
	human := &testClient{}
	h.add(human)

	// Nobody is piloting
	h.Update()
	update := human.lastUpdate(t)
	if len(update.Spawned) != 0 || update.Piloting || update.Pilot != "" {
		t.Errorf("unexpected update %+v", update)
	}

	// Must pilot before observing
	h.receive(human, Observe{Position: world.Vec2f{X: 4, Y: 4}, Forward: world.North})
	if h.observer != nil {
		t.Error("observer set without piloting")
	}

	h.receive(human, Pilot{Name: "  alice  "})
	if h.pilot != human || human.Session.Name != "alice" {
		t.Fatalf("expected alice to pilot, got %v", h.pilot)
	}

	position := world.Vec2f{X: 4, Y: 4}
	h.receive(human, Observe{Position: position, Forward: world.North})
	if h.observer == nil || h.observer.Position != position {
		t.Fatal("observer not set")
	}

	h.Update()
	update = human.lastUpdate(t)
	if len(update.Spawned) != h.cfg.MaxSpawnsPerTick {
		t.Errorf("expected %d spawned got %d", h.cfg.MaxSpawnsPerTick, len(update.Spawned))
	}
	if !update.Piloting || update.Pilot != "alice" {
		t.Errorf("expected alice piloting got %q %v", update.Pilot, update.Piloting)
	}
	want := h.service.FollowHeight(position) + h.cfg.EyeHeight
	if math32.Abs(update.ObserverHeight-want) > 1e-4 {
		t.Errorf("expected observer height %f got %f", want, update.ObserverHeight)
	}
	if update.Colours != h.service.Colours() {
		t.Errorf("expected colours %v got %v", h.service.Colours(), update.Colours)
	}
}

func TestHub_Snapshot(t *testing.T) {
	h := testHub(t)
	human := &testClient{}
	h.add(human)
	h.receive(human, Pilot{Name: "alice"})
	h.receive(human, Observe{Position: world.Vec2f{X: 4, Y: 4}, Forward: world.North})

	// Fill
	seen := make(map[terrain.GridPos]bool)
	for i := 0; i < 30; i++ {
		h.Update()
		update := human.lastUpdate(t)
		for _, g := range update.Despawned {
			delete(seen, g)
		}
		for _, v := range update.Spawned {
			if seen[v.Position] {
				t.Errorf("%s spawned twice", v.Position)
			}
			seen[v.Position] = true
		}
	}
	if len(seen) != h.service.Len() {
		t.Errorf("client tracks %d chunks, hub has %d", len(seen), h.service.Len())
	}

	late := &testClient{}
	h.add(late)
	h.Update()

	if n := len(human.lastUpdate(t).Spawned); n != 0 {
		t.Errorf("expected nothing new for the pilot got %d", n)
	}

	snapshot := late.lastUpdate(t)
	if len(snapshot.Spawned) != h.service.Len() {
		t.Fatalf("expected snapshot of %d got %d", h.service.Len(), len(snapshot.Spawned))
	}

	welcome := late.received[0].(Welcome)
	for _, v := range snapshot.Spawned {
		chunk := h.service.Chunk(v.Position)
		if chunk == nil {
			t.Fatalf("snapshot has unknown chunk %s", v.Position)
		}
		if v.Colour != chunk.Colour || v.Quadrant != chunk.Quadrant {
			t.Errorf("%s: tags differ", v.Position)
		}

		heights, err := v.Heights.Decode(welcome.Quantizer, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(heights) != len(chunk.Mesh.Positions) {
			t.Fatalf("expected %d heights got %d", len(chunk.Mesh.Positions), len(heights))
		}
		for i, h := range heights {
			if math32.Abs(h-chunk.Mesh.Positions[i][1]) > welcome.Quantizer.Step {
				t.Errorf("%s vertex %d: expected %f got %f", v.Position, i, chunk.Mesh.Positions[i][1], h)
			}
		}
	}

	// Synced from now on
	h.Update()
	if n := len(late.lastUpdate(t).Spawned); n != 0 {
		t.Errorf("expected no repeat of snapshot, got %d", n)
	}
}

func TestHub_Takeover(t *testing.T) {
	h := testHub(t)
	bot := &testClient{bot: true}
	human := &testClient{}
	other := &testClient{}
	h.add(bot)
	h.add(human)
	h.add(other)

	h.receive(bot, Pilot{Name: "Rover"})
	if h.pilot != bot {
		t.Fatal("bot should pilot an empty seat")
	}

	// Reserved names are rejected
	h.receive(human, Pilot{Name: "Admin"})
	if h.pilot != bot || human.Session.Name != "" {
		t.Error("reserved name accepted")
	}

	h.receive(human, Pilot{Name: "alice"})
	if h.pilot != human {
		t.Fatal("human should take over from bot")
	}

	h.receive(bot, Pilot{Name: "Rover"})
	h.receive(other, Pilot{Name: "bob"})
	if h.pilot != human {
		t.Error("pilot should keep control")
	}

	// Only the pilot observes
	h.receive(bot, Observe{Position: world.Vec2f{X: 100}, Forward: world.East})
	if h.observer != nil {
		t.Error("non pilot moved observer")
	}

	h.remove(human)
	if h.pilot != nil {
		t.Error("pilot not cleared on leave")
	}
	h.receive(bot, Pilot{Name: "Rover"})
	if h.pilot != bot {
		t.Error("bot should pilot again")
	}
}

func TestHub_InvalidObserve(t *testing.T) {
	h := testHub(t)
	human := &testClient{}
	h.add(human)
	h.receive(human, Pilot{Name: "alice"})

	nan := math32.NaN()
	for _, observe := range []Observe{
		{Position: world.Vec2f{X: nan}, Forward: world.North},
		{Position: world.Vec2f{}, Forward: world.Vec2f{Y: math32.Inf(1)}},
		{Position: world.Vec2f{X: 1e7}, Forward: world.North},
	} {
		h.receive(human, observe)
		if h.observer != nil {
			t.Errorf("accepted %+v", observe)
		}
	}
}

func TestHub_ZeroForward(t *testing.T) {
	h := testHub(t)
	human := &testClient{}
	h.add(human)
	h.receive(human, Pilot{Name: "alice"})

	// Without a previous heading there is nothing to keep.
	h.receive(human, Observe{Position: world.Vec2f{X: 1, Y: 1}})
	if h.observer != nil {
		t.Fatal("accepted zero forward without an observer")
	}

	h.receive(human, Observe{Position: world.Vec2f{X: 1, Y: 1}, Forward: world.North})
	h.Update()

	moved := world.Vec2f{X: 2, Y: -3}
	h.receive(human, Observe{Position: moved})
	if h.observer == nil || h.observer.Position != moved || h.observer.Forward != world.North {
		t.Fatalf("expected observer at %v facing north, got %+v", moved, h.observer)
	}

	h.Update()
	h.Update()
	if h.rotations != 0 {
		t.Errorf("expected no rotations, got %d", h.rotations)
	}
}

func TestHub_Follow(t *testing.T) {
	h := testHub(t)
	client := &testClient{}
	h.add(client)

	follower := world.Vec2f{X: -7, Y: 12}
	h.receive(client, Follow{Position: &follower})
	h.Update()

	update := client.lastUpdate(t)
	if update.FollowerHeight == nil {
		t.Fatal("expected follower height")
	}
	if want := h.service.FollowHeight(follower); *update.FollowerHeight != want {
		t.Errorf("expected %f got %f", want, *update.FollowerHeight)
	}

	h.receive(client, Follow{})
	h.Update()
	if client.lastUpdate(t).FollowerHeight != nil {
		t.Error("expected follower cleared")
	}
}

func TestHub_Status(t *testing.T) {
	h := testHub(t)
	h.add(&testClient{bot: true})
	human := &testClient{}
	h.add(human)
	h.receive(human, Pilot{Name: "alice"})

	s := h.status()
	if s.Bots != 1 || s.Observers != 1 || s.Pilot != "alice" {
		t.Errorf("unexpected status %+v", s)
	}

	h.Cloud()
	if buf, ok := h.statusJSON.Load().([]byte); !ok || len(buf) == 0 {
		t.Error("status json not stored")
	}
}

func TestHub_RenderTerrain(t *testing.T) {
	h := testHub(t)
	human := &testClient{}
	h.add(human)
	h.receive(human, Pilot{Name: "alice"})
	h.receive(human, Observe{Position: world.Vec2f{X: 4, Y: 4}, Forward: world.North})
	for i := 0; i < 10; i++ {
		h.Update()
	}

	img := h.RenderTerrain(64)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	// Live chunks around the center are drawn, empty space is not.
	if _, _, _, a := img.At(32, 32).RGBA(); a == 0 {
		t.Error("center not drawn")
	}
	if _, _, _, a := img.At(0, 63).RGBA(); a != 0 {
		t.Error("corner behind observer drawn")
	}
}

func TestBotClient(t *testing.T) {
	h := testHub(t)
	bot := &BotClient{}
	h.add(bot)

	// Welcome makes the bot ask to pilot
	h.process(<-h.inbound)
	if h.pilot != bot {
		t.Fatal("bot not piloting")
	}

	// Update makes the bot walk
	h.Update()
	h.process(<-h.inbound)
	if h.observer == nil {
		t.Fatal("bot did not observe")
	}

	want := float32(botSpeed * updatePeriod.Seconds())
	if d := h.observer.Position.Length(); math32.Abs(d-want) > 1e-4 {
		t.Errorf("expected step of %f got %f", want, d)
	}
	if h.observer.Forward.LengthSquared() == 0 {
		t.Error("bot has no heading")
	}
}
