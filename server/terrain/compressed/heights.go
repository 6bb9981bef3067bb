// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import (
	"fmt"
	"io"
	"math"
	"sync"
)

// Quantizer maps heights to 16 bit levels. Every chunk of a session uses the
// same Quantizer so vertices shared by neighbours decode to the same height.
type Quantizer struct {
	Min  float32 `json:"min"`
	Step float32 `json:"step"`
}

// NewQuantizer covers heights in [-2*amplitude, 2*amplitude].
func NewQuantizer(amplitude float32) Quantizer {
	return Quantizer{
		Min:  -2 * amplitude,
		Step: 4 * amplitude / math.MaxUint16,
	}
}

func (q Quantizer) Quantize(h float32) uint16 {
	level := math.Round(float64((h - q.Min) / q.Step))
	if level < 0 {
		return 0
	}
	if level > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(level)
}

func (q Quantizer) Dequantize(level uint16) float32 {
	return q.Min + float32(level)*q.Step
}

// Heights is the compressed height grid of one chunk, row major.
type Heights struct {
	Data   []byte `json:"data"`   // Data is delta encoded levels.
	Stride int    `json:"stride"` // Stride is vertices per row.
	Length int    `json:"length"` // Length is the number of vertices.
}

var heightsPool = sync.Pool{
	New: func() interface{} {
		return &Heights{
			Data: make([]byte, 0, 64),
		}
	},
}

// Encode compresses the heights (the Y component) of a row major vertex grid.
func Encode(positions [][3]float32, stride int, q Quantizer) *Heights {
	heights := heightsPool.Get().(*Heights)

	var buffer Buffer
	buffer.Reset(heights.Data[:0])
	buffer.Grow(len(positions))
	for _, p := range positions {
		buffer.WriteValue(q.Quantize(p[1]))
	}

	heights.Data = buffer.Buffer()
	heights.Stride = stride
	heights.Length = len(positions)
	return heights
}

// Decode appends the heights to dst.
func (heights *Heights) Decode(q Quantizer, dst []float32) ([]float32, error) {
	var buffer Buffer
	buffer.Reset(heights.Data)

	for i := 0; i < heights.Length; i++ {
		level, err := buffer.ReadValue()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return dst, fmt.Errorf("height %d of %d: %w", i, heights.Length, err)
		}
		dst = append(dst, q.Dequantize(level))
	}
	return dst, nil
}

// Pool returns heights to the pool. It must not be used afterwards.
func (heights *Heights) Pool() {
	*heights = Heights{
		Data: heights.Data[:0],
	}
	heightsPool.Put(heights)
}
