// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package metadata

import (
	"errors"

	"golang.org/x/text/encoding/unicode"

	"github.com/saferwall/clrcore/reader"
)

// ErrNoHeap is returned when a heap accessor is called on metadata that
// does not carry the corresponding stream.
var ErrNoHeap = errors.New("metadata: heap stream not present")

// String returns the zero-terminated UTF-8 string at offset idx of the
// #Strings heap.
func (m *Metadata) String(idx uint32) (string, error) {
	heap, ok := m.streamData["#Strings"]
	if !ok {
		return "", ErrNoHeap
	}
	if idx >= uint32(len(heap)) {
		return "", reader.ErrOutOfBounds
	}
	return cString(heap[idx:]), nil
}

// Blob returns the #Blob heap entry at offset idx: an ECMA-335 §II.23.2
// compressed length prefix followed by that many bytes.
func (m *Metadata) Blob(idx uint32) ([]byte, error) {
	heap, ok := m.streamData["#Blob"]
	if !ok {
		return nil, ErrNoHeap
	}
	c := reader.NewAt(heap, idx)
	n, err := c.ReadCompressedUint32()
	if err != nil {
		return nil, err
	}
	return c.ReadBytes(n)
}

// GUID returns the 1-based GUID at index idx of the #GUID heap. Index 0
// means "no GUID" per ECMA-335 §II.24.2.5.
func (m *Metadata) GUID(idx uint32) ([16]byte, error) {
	var g [16]byte
	if idx == 0 {
		return g, nil
	}
	heap, ok := m.streamData["#GUID"]
	if !ok {
		return g, ErrNoHeap
	}
	start := (idx - 1) * 16
	if start+16 > uint32(len(heap)) {
		return g, reader.ErrOutOfBounds
	}
	copy(g[:], heap[start:start+16])
	return g, nil
}

// UserString returns the UTF-16LE string literal at offset idx of the #US
// heap, decoded to UTF-8. The trailing encoding byte ECMA-335 §II.24.2.4
// reserves to flag non-ASCII content is not meaningful once decoded and is
// dropped.
func (m *Metadata) UserString(idx uint32) (string, error) {
	heap, ok := m.streamData["#US"]
	if !ok {
		return "", ErrNoHeap
	}
	c := reader.NewAt(heap, idx)
	n, err := c.ReadCompressedUint32()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	raw, err := c.ReadBytes(n)
	if err != nil {
		return "", err
	}
	// The last byte is the trailing flag, not part of the UTF-16 payload,
	// whenever n is odd (always true for a non-empty entry).
	payload := raw
	if len(payload)%2 == 1 {
		payload = payload[:len(payload)-1]
	}
	return decodeUTF16LE(payload)
}

// decodeUTF16LE decodes a UTF-16LE byte span to a UTF-8 Go string, the same
// golang.org/x/text decoder the teacher's DecodeUTF16String uses.
func decodeUTF16LE(b []byte) (string, error) {
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := decoder.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(s), nil
}
