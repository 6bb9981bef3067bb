// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/driftland/server/terrain/stream"
	"github.com/SoftbearStudios/driftland/server/world"
	"github.com/chewxy/math32"
	"github.com/finnbear/moderation"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	nameLengthMin = 1
	nameLengthMax = 16

	// Observers further than this from the world origin are ignored, since
	// float32 vertex positions lose precision out there.
	maxObserverDistance = 1 << 20
)

// Make sure to register in init function
type (
	// Follow sets (or clears with null) the position whose ground height is
	// reported in each Update.
	Follow struct {
		Position *world.Vec2f `json:"position"`
	}

	// InvalidInbound means invalid message type from client (possibly out of date).
	// NOTE: Do not register, otherwise client could send type "invalidInbound"
	InvalidInbound struct {
		messageType messageType
	}

	// Observe moves the observer. Only the pilot may send it.
	Observe struct {
		Position world.Vec2f `json:"position"`
		Forward  world.Vec2f `json:"forward"`
	}

	// Pilot requests control of the observer under a name.
	// Humans take over from bots, never the other way around.
	Pilot struct {
		Name string `json:"name"`
	}

	// Trace sends client performance data to the server
	Trace struct {
		FPS float32 `json:"fps"`
	}
)

func init() {
	registerInbound(
		Follow{},
		Observe{},
		Pilot{},
		Trace{},
	)
}

var reservedNames = [...]string{
	"admin",
	"administrator",
	"console",
	"dev",
	"developer",
	"mod",
	"moderator",
	"owner",
	"root",
	"server",
	"staff",
	"system",
}

func (data Follow) Process(_ *Hub, _ Client, session *Session) {
	if data.Position != nil && !validPosition(*data.Position) {
		return
	}
	session.Follower = data.Position
}

func (data Observe) Process(h *Hub, client Client, _ *Session) {
	if h.pilot != client {
		return
	}

	if !validPosition(data.Position) || !finite(data.Forward) {
		return
	}

	// A zero forward has no sector, so keep facing the same way.
	forward := data.Forward
	if forward.LengthSquared() == 0 {
		if h.observer == nil {
			return
		}
		forward = h.observer.Forward
	}

	h.observer = &stream.Observer{Position: data.Position, Forward: forward}
}

func (data Pilot) Process(h *Hub, client Client, session *Session) {
	name, ok := sanitize(data.Name, true, nameLengthMin, nameLengthMax)
	// Invalid name
	if !ok {
		return
	}

	if !client.Bot() {
		lower := strings.ToLower(name)
		for _, reservedName := range reservedNames {
			if lower == reservedName {
				println("blocked reserved name", name)
				return // reserved
			}
		}
	}
	session.Name = name

	if h.pilot == client {
		return
	}

	// Bots only fly an empty seat
	if h.pilot != nil && (client.Bot() || !h.pilot.Bot()) {
		return
	}

	h.setPilot(client)
}

func (trace Trace) Process(_ *Hub, _ Client, session *Session) {
	if trace.FPS <= 0 {
		return
	}

	// Clamp to 60 for people possibly rendering above to not pollute average
	if trace.FPS > 60 {
		trace.FPS = 60
	}

	session.FPS = trace.FPS

	_ = AppendLog("/tmp/driftland-trace.log", unixMillis(), session.Name, trace.FPS)
}

func (data InvalidInbound) Process(_ *Hub, _ Client, _ *Session) {}

func finite(v world.Vec2f) bool {
	return !(math32.IsNaN(v.X) || math32.IsNaN(v.Y) || math32.IsInf(v.X, 0) || math32.IsInf(v.Y, 0))
}

func validPosition(v world.Vec2f) bool {
	return finite(v) && v.LengthSquared() < maxObserverDistance*maxObserverDistance
}

func trimUtf8(in string, low, high int) (str string, ok bool) {
	if !utf8.ValidString(in) {
		return "", false
	}

	// Remove spaces
	str = strings.TrimSpace(in)
	str = strings.TrimFunc(str, func(r rune) bool {
		// NOTE: The following characters are not detected by
		// unicode.IsSpace() but show up as blank

		// https://www.compart.com/en/unicode/U+2800
		// https://www.compart.com/en/unicode/U+200B
		return r == 0x2800 || r == 0x200B
	})

	// Too long but can resize down
	if len(str) > high {
		var builder strings.Builder
		for _, r := range str {
			if builder.Len()+utf8.RuneLen(r) > high {
				break
			}
			builder.WriteRune(r)
		}
		str = builder.String()
	}

	// Too short
	if len(str) < low {
		return "", false
	}
	ok = true
	return
}

func sanitize(text string, name bool, low, high int) (string, bool) {
	if name {
		// Remove these characters
		// Brackets are used in formatting
		// * is used for censoring
		const removals = "()[]{}*"
		for i := 0; i < len(removals); i++ {
			text = strings.ReplaceAll(text, removals[i:i+1], "")
		}
	}

	text = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, text)

	text, ok := trimUtf8(text, low, high)
	if !ok {
		return "", false
	}

	if name {
		// Censor name
		result := moderation.Scan(text)

		if result.Is(moderation.Inappropriate) {
			if result.Is(moderation.Inappropriate & moderation.Moderate) {
				return "", false
			}
			text, _ = moderation.Censor(text, moderation.Inappropriate)
		}
	}

	return text, true
}
