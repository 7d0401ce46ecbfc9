// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package reader implements the unaligned little-endian cursor every other
// clrcore component reads metadata bytes through. It has no notion of PE
// sections, streams, or rows: it is a pure view over a byte span, grounded
// on the ReadUint8/16/32/64 and structUnpack helpers in the teacher's
// helper.go, generalized into a cursor that advances as it reads instead of
// taking an explicit offset on every call.
package reader

import (
	"encoding/binary"
	"errors"
)

// ErrOutOfBounds is returned when a read or skip would run past the end of
// the underlying span. Per spec this is always fatal to the caller; the
// reader itself never recovers from it.
var ErrOutOfBounds = errors.New("reader: read past end of span")

// Cursor is an unaligned little-endian reader over a byte span it does not
// own. The span must outlive every value decoded from it the way the
// metadata image outlives every descriptor derived from it.
type Cursor struct {
	data []byte
	pos  uint32
}

// New returns a Cursor starting at offset 0 of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// NewAt returns a Cursor over data starting at the given offset.
func NewAt(data []byte, offset uint32) *Cursor {
	return &Cursor{data: data, pos: offset}
}

// Pos returns the current cursor offset.
func (c *Cursor) Pos() uint32 { return c.pos }

// SeekTo repositions the cursor to an absolute offset.
func (c *Cursor) SeekTo(offset uint32) { c.pos = offset }

// Len returns the size of the underlying span.
func (c *Cursor) Len() uint32 { return uint32(len(c.data)) }

// Remaining returns how many bytes are left to read.
func (c *Cursor) Remaining() uint32 {
	if c.pos >= uint32(len(c.data)) {
		return 0
	}
	return uint32(len(c.data)) - c.pos
}

func (c *Cursor) require(n uint32) error {
	if n > c.Remaining() {
		return ErrOutOfBounds
	}
	return nil
}

// ReadUint8 reads one byte and advances the cursor.
func (c *Cursor) ReadUint8() (uint8, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

// ReadUint16 reads a little-endian uint16 and advances the cursor.
func (c *Cursor) ReadUint16() (uint16, error) {
	if err := c.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadUint32 reads a little-endian uint32 and advances the cursor.
func (c *Cursor) ReadUint32() (uint32, error) {
	if err := c.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadUint64 reads a little-endian uint64 and advances the cursor.
func (c *Cursor) ReadUint64() (uint64, error) {
	if err := c.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

// ReadBytes returns the next n bytes as a sub-slice (no copy) and advances
// the cursor.
func (c *Cursor) ReadBytes(n uint32) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	v := c.data[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

// Skip advances the cursor by n bytes without reading them.
func (c *Cursor) Skip(n uint32) error {
	if err := c.require(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// Align advances the cursor to the next multiple of base bytes.
func (c *Cursor) Align(base uint32) error {
	r := c.pos % base
	if r == 0 {
		return nil
	}
	return c.Skip(base - r)
}

// ReadCompressedUint32 reads an ECMA-335 §II.23.2 compressed unsigned
// integer. The top bits of the first byte distinguish three encodings:
//
//	0xxxxxxx                              -> 1 byte,  value in low 7 bits
//	10xxxxxx xxxxxxxx                     -> 2 bytes, value in low 14 bits
//	110xxxxx xxxxxxxx xxxxxxxx xxxxxxxx   -> 4 bytes, value in low 29 bits
func (c *Cursor) ReadCompressedUint32() (uint32, error) {
	first, err := c.ReadUint8()
	if err != nil {
		return 0, err
	}

	switch {
	case first&0x80 == 0:
		return uint32(first), nil

	case first&0xC0 == 0x80:
		second, err := c.ReadUint8()
		if err != nil {
			return 0, err
		}
		return uint32(first&0x3F)<<8 | uint32(second), nil

	case first&0xE0 == 0xC0:
		b2, err := c.ReadUint8()
		if err != nil {
			return 0, err
		}
		b3, err := c.ReadUint8()
		if err != nil {
			return 0, err
		}
		b4, err := c.ReadUint8()
		if err != nil {
			return 0, err
		}
		return uint32(first&0x1F)<<24 | uint32(b2)<<16 | uint32(b3)<<8 | uint32(b4), nil

	default:
		return 0, ErrOutOfBounds
	}
}

// ReadCompressedInt32 reads a signed compressed integer per ECMA-335
// §II.23.2.8: the underlying unsigned compressed value is rotated right by
// one bit, with bit 0 the sign flag.
func (c *Cursor) ReadCompressedInt32() (int32, error) {
	start := c.pos
	u, err := c.ReadCompressedUint32()
	if err != nil {
		return 0, err
	}
	width := c.pos - start

	negative := u&1 != 0
	u >>= 1
	if negative {
		// Sign-extend depending on which of the three encodings produced u,
		// mirrored from the ECMA-335 rotation rule applied per width.
		switch width {
		case 1:
			return int32(u) - 0x40, nil
		case 2:
			return int32(u) - 0x2000, nil
		default:
			return int32(u) - 0x10000000, nil
		}
	}
	return int32(u), nil
}
