// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/terrain/scatter"
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/google/uuid"
	"testing"
)

func TestJsonIter(t *testing.T) {
	testUpdate := Message{Data: &Update{
		Spawned: []ChunkView{{
			Position: terrain.GridPos{X: -1, Z: 2},
			Colour:   terrain.Blue,
			Quadrant: terrain.SouthEast,
			Placements: []scatter.Placement{{
				Category: scatter.Rock,
				Variant:  1,
				Asset:    "rock2",
				Position: [3]float32{1, 0.5, -2},
			}},
		}},
		Despawned:      []terrain.GridPos{{X: 3, Z: -4}},
		Colours:        [4]terrain.Colour{terrain.Red, terrain.Green, terrain.Blue, terrain.Red},
		ObserverHeight: 1.5,
		Rotations:      2,
	}}

	const testUpdateString = `{"data":{"spawned":[{"position":"-1,2","colour":"blue","quadrant":"southEast","heights":null,"placements":[{"category":"rock","variant":1,"asset":"rock2","position":[1,0.5,-2]}]}],"despawned":["3,-4"],"colours":["red","green","blue","red"],"observerHeight":1.5,"rotations":2},"type":"update"}`

	buf, err := json.Marshal(testUpdate)
	if err != nil {
		t.Error("error marshaling:", err.Error())
		return
	}
	if !bytes.Equal(buf, []byte(testUpdateString)) {
		t.Error("different output:\none:", testUpdateString, "\ntwo:", string(buf))
	}

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	buf, err = json.Marshal(Message{Data: Welcome{ClientID: id}})
	if err != nil {
		t.Error("error marshaling:", err.Error())
		return
	}
	if !bytes.Contains(buf, []byte(`"clientID":"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`)) || !bytes.HasSuffix(buf, []byte(`"type":"welcome"}`)) {
		t.Error("unexpected welcome:", string(buf))
	}
}

func TestJsonIter_GridPos(t *testing.T) {
	var wrapper struct {
		Position terrain.GridPos  `json:"position"`
		Colour   terrain.Colour   `json:"colour"`
		Quadrant terrain.Quadrant `json:"quadrant"`
	}

	err := json.Unmarshal([]byte(`{"position": "-12,7", "colour": "magenta", "quadrant": "northEast"}`), &wrapper)
	if err != nil {
		t.Fatal("error unmarshaling:", err.Error())
	}
	if wrapper.Position != (terrain.GridPos{X: -12, Z: 7}) {
		t.Error("expected (-12, 7) got", wrapper.Position)
	}
	if wrapper.Colour != terrain.Magenta {
		t.Error("expected magenta got", wrapper.Colour)
	}
	if wrapper.Quadrant != terrain.NorthEast {
		t.Error("expected northEast got", wrapper.Quadrant)
	}

	for _, invalid := range []string{`{"position": "1"}`, `{"position": "a,2"}`, `{"colour": "mauve"}`, `{"quadrant": "up"}`} {
		if err := json.Unmarshal([]byte(invalid), &wrapper); err == nil {
			t.Error("expected error unmarshaling", invalid)
		}
	}
}

func TestJsonIter_Inbound(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{
			`{"type":"observe","data":{"position":{"x":1,"z":-2},"forward":{"x":0,"z":-1}}}`,
			Observe{Position: world.Vec2f{X: 1, Y: -2}, Forward: world.North},
		},
		{
			// Data before type
			`{"data":{"name":"bob"},"type":"pilot"}`,
			Pilot{Name: "bob"},
		},
		{
			`{"type":"trace","data":{"fps":59.5}}`,
			Trace{FPS: 59.5},
		},
	}

	for _, test := range tests {
		var message Message
		if err := json.Unmarshal([]byte(test.input), &message); err != nil {
			t.Errorf("%s: %v", test.input, err)
			continue
		}
		if message.Data != test.want {
			t.Errorf("%s: expected %#v got %#v", test.input, test.want, message.Data)
		}
	}

	var message Message
	if err := json.Unmarshal([]byte(`{"type":"fly","data":{}}`), &message); err != nil {
		t.Fatal(err)
	}
	if invalid, ok := message.Data.(InvalidInbound); !ok || invalid.messageType != "fly" {
		t.Errorf("expected invalid inbound got %#v", message.Data)
	}

	if err := json.Unmarshal([]byte(`{"data":{}}`), &message); err == nil {
		t.Error("expected error for missing type")
	}
}

func TestJsonIter_Follow(t *testing.T) {
	var message Message
	if err := json.Unmarshal([]byte(`{"type":"follow","data":{"position":{"x":3,"z":4}}}`), &message); err != nil {
		t.Fatal(err)
	}
	follow, ok := message.Data.(Follow)
	if !ok || follow.Position == nil || *follow.Position != (world.Vec2f{X: 3, Y: 4}) {
		t.Errorf("unexpected %#v", message.Data)
	}
}
