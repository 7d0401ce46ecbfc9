// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrruntime

import "encoding/binary"

// String is the UTF-16 managed string layout spec.md §4.J describes:
// header, _stringLength (u32), padding to align the payload, then
// _stringLength+1 UTF-16 code units with a trailing zero terminator. It is
// the Go view over natsu-clr's String/_firstChar layout.
type String struct {
	*Object
}

const (
	stringLengthOffset = 0
	stringCharsOffset  = 4 // u32 length, then UTF-16 payload; no further padding needed on an 8-byte-aligned allocator
)

// FastAllocateString implements String._s_FastAllocateString: allocates a
// string of length code units and writes the trailing zero terminator,
// following "sizeof(String) + length*sizeof(Char)".
func FastAllocateString(vt *VTable, length int32) *String {
	payloadSize := uint32(stringCharsOffset) + uint32(length+1)*2
	obj := NewObject(vt, payloadSize)
	s := &String{Object: obj}
	binary.LittleEndian.PutUint32(s.Payload()[stringLengthOffset:], uint32(length))
	s.setChar(int(length), 0)
	return s
}

// NewStringFromUTF16 allocates a String carrying the given UTF-16 code
// units.
func NewStringFromUTF16(vt *VTable, units []uint16) *String {
	s := FastAllocateString(vt, int32(len(units)))
	for i, u := range units {
		s.setChar(i, u)
	}
	return s
}

// Length implements String.get_Length.
func (s *String) Length() int32 {
	return int32(binary.LittleEndian.Uint32(s.Payload()[stringLengthOffset:]))
}

func (s *String) charOffset(i int) int {
	return stringCharsOffset + i*2
}

func (s *String) setChar(i int, v uint16) {
	binary.LittleEndian.PutUint16(s.Payload()[s.charOffset(i):], v)
}

// GetChars implements String.get_Chars: bounds-checks index as unsigned so
// a negative index is rejected the same way an over-long one is.
func (s *String) GetChars(index int32) (uint16, error) {
	if uint32(index) >= uint32(s.Length()) {
		return 0, ErrOutOfRange
	}
	return binary.LittleEndian.Uint16(s.Payload()[s.charOffset(int(index)):]), nil
}

// UTF16 returns the string's code units, excluding the trailing zero
// terminator.
func (s *String) UTF16() []uint16 {
	n := s.Length()
	out := make([]uint16, n)
	for i := int32(0); i < n; i++ {
		out[i] = binary.LittleEndian.Uint16(s.Payload()[s.charOffset(int(i)):])
	}
	return out
}
