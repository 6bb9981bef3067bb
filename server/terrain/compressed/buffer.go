// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import (
	"encoding/binary"
	"io"
)

// Buffer stores a sequence of uint16 values as zigzag varint deltas from the
// previous value. Smooth height fields mostly take one byte per value.
type Buffer struct {
	buf  []byte
	off  int    // Read position
	last uint16 // Previous value written or read
}

func (buffer *Buffer) Reset(buf []byte) {
	buffer.buf = buf
	buffer.off = 0
	buffer.last = 0
}

func (buffer *Buffer) WriteValue(v uint16) {
	delta := int64(v) - int64(buffer.last)
	buffer.buf = binary.AppendVarint(buffer.buf, delta)
	buffer.last = v
}

func (buffer *Buffer) ReadValue() (uint16, error) {
	if buffer.off >= len(buffer.buf) {
		return 0, io.EOF
	}
	delta, n := binary.Varint(buffer.buf[buffer.off:])
	if n <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	buffer.off += n
	buffer.last = uint16(int64(buffer.last) + delta)
	return buffer.last, nil
}

// Grow makes space for about n values
func (buffer *Buffer) Grow(n int) {
	if old := buffer.buf; cap(old)-len(old) < n {
		buf := make([]byte, len(old), len(old)+n)
		copy(buf, old)
		buffer.buf = buf
	}
}

func (buffer *Buffer) Buffer() []byte {
	return buffer.buf[buffer.off:]
}
