// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"fmt"
	"github.com/SoftbearStudios/driftland/server/terrain"
	"github.com/SoftbearStudios/driftland/server/terrain/scatter"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unsafe"
)

// Make sure functions get run first
var json = func() jsoniter.API {
	neverEmpty := func(pointer unsafe.Pointer) bool { return false }

	// Encoders
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(Message{}).String(), encodeMessage, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(terrain.GridPos{}).String(), encodeGridPos, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(terrain.Colour(0)).String(), encodeColour, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(terrain.Quadrant(0)).String(), encodeQuadrant, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(scatter.Category(0)).String(), encodeCategory, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(uuid.UUID{}).String(), encodeUUID, neverEmpty)

	// Decoders
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(Message{}).String(), decodeMessage)
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(terrain.GridPos{}).String(), decodeGridPos)
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(terrain.Colour(0)).String(), decodeColour)
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(terrain.Quadrant(0)).String(), decodeQuadrant)

	return jsoniter.Config{
		IndentionStep:                 0,
		MarshalFloatWith6Digits:       true,
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		UseNumber:                     false,
		DisallowUnknownFields:         false,
		TagKey:                        "json",
		OnlyTaggedField:               false,
		ValidateJsonRawMessage:        false,
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

func encodeMessage(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	message := (*Message)(ptr)
	stream.WriteVal(message.messageJSON())
}

// Grid positions are short "x,z" strings so they can double as map keys on the client.
func encodeGridPos(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	g := *(*terrain.GridPos)(ptr)
	buf := append(stream.Buffer(), '"')
	buf = strconv.AppendInt(buf, int64(g.X), 10)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, int64(g.Z), 10)
	stream.SetBuffer(append(buf, '"'))
}

func parseGridPos(s string) (terrain.GridPos, error) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return terrain.GridPos{}, fmt.Errorf("invalid grid position %q", s)
	}
	x, err := strconv.Atoi(s[:i])
	if err != nil {
		return terrain.GridPos{}, fmt.Errorf("invalid grid position %q: %w", s, err)
	}
	z, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return terrain.GridPos{}, fmt.Errorf("invalid grid position %q: %w", s, err)
	}
	return terrain.GridPos{X: x, Z: z}, nil
}

func decodeGridPos(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	g, err := parseGridPos(iter.ReadString())
	if err != nil {
		iter.ReportError("decode grid position", err.Error())
		return
	}
	*(*terrain.GridPos)(ptr) = g
}

func encodeColour(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString((*(*terrain.Colour)(ptr)).String())
}

func decodeColour(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	name := iter.ReadString()
	c, ok := terrain.ParseColour(name)
	if !ok {
		iter.ReportError("decode colour", "unknown colour "+name)
		return
	}
	*(*terrain.Colour)(ptr) = c
}

func encodeQuadrant(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString((*(*terrain.Quadrant)(ptr)).String())
}

func decodeQuadrant(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	name := iter.ReadString()
	q, ok := terrain.ParseQuadrant(name)
	if !ok {
		iter.ReportError("decode quadrant", "unknown quadrant "+name)
		return
	}
	*(*terrain.Quadrant)(ptr) = q
}

func encodeCategory(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString((*(*scatter.Category)(ptr)).String())
}

func encodeUUID(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString((*(*uuid.UUID)(ptr)).String())
}

// Buffers large enough to hold most inbounds
var decodeMessagePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 256)
		return &buf
	},
}

func decodeMessage(ptr unsafe.Pointer, topLevelIter *jsoniter.Iterator) {
	bufPtr := decodeMessagePool.Get().(*[]byte)

	// Read bytes so can read twice
	messageBytes := topLevelIter.SkipAndAppendBytes(*bufPtr)

	// Pool iterator with previous pool
	pool := topLevelIter.Pool()
	iter := pool.BorrowIterator(messageBytes)
	defer pool.ReturnIterator(iter)

	// Interface of *inbound
	var in interface{}

	// Doesn't have to read twice if type is first field
	// If type is found c is > 0
	for c := 0; c < 3; c++ {
		iter.ResetBytes(messageBytes)
		iter.ReadObjectCB(func(i *jsoniter.Iterator, field string) bool {
			if field == "type" {
				// Not already read
				if in == nil {
					messageTypeBytes := i.ReadStringAsSlice()
					inboundType, ok := inboundMessageTypes[messageType(messageTypeBytes)]
					if !ok {
						inboundType = reflect.TypeOf(InvalidInbound{})
					}
					in = reflect.New(inboundType).Interface()

					if !ok {
						in.(*InvalidInbound).messageType = messageType(messageTypeBytes)
					}

					c++
				} else {
					i.Skip()
				}
				return true
			} else if field == "data" {
				// Found type
				if c > 0 {
					i.ReadVal(in)
					c++
					return false // Finished
				} else {
					i.Skip()
				}
			} else {
				i.Skip()
			}
			return true
		})

		if err := iter.Error; err != nil {
			topLevelIter.Error = err
			return
		}

		// No message type
		if c == 0 {
			topLevelIter.Error = errors.New("no inbound message type")
			return
		}
	}

	// Pool messageBytes
	*bufPtr = messageBytes[:0]
	decodeMessagePool.Put(bufPtr)

	// Store data
	message := (*Message)(ptr)
	message.Data = reflect.Indirect(reflect.ValueOf(in)).Interface()
}
