// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrruntime

import "encoding/binary"

// Array is the single-dimension array layout spec.md §4.J/§4.K describes:
// header, Count (one word), then Count*ElementSize bytes of inline
// payload. It is the Go view over what natsu-clr calls RawSzArrayData.
type Array struct {
	*Object
}

// arrayCountOffset is Count's offset within the payload, i.e. relative to
// HeaderSize.
const arrayCountOffset = 0

// NewArray allocates an Array of count elements of vt.ElementSize bytes
// each, with its vtable's ElementSize/ContainsGCPointers describing the
// element type.
func NewArray(vt *VTable, count uint32) *Array {
	obj := NewObject(vt, wordSize+count*vt.ElementSize)
	a := &Array{Object: obj}
	a.setCount(count)
	return a
}

func (a *Array) setCount(count uint32) {
	binary.LittleEndian.PutUint64(a.Payload()[arrayCountOffset:], uint64(count))
}

// Count returns the number of elements, the field _s_GetRawArrayGeometry
// and GetLength both resolve through RawSzArrayData->Count.
func (a *Array) Count() uint32 {
	return uint32(binary.LittleEndian.Uint64(a.Payload()[arrayCountOffset:]))
}

// Data returns the inline element payload following Count.
func (a *Array) Data() []byte {
	return a.Payload()[wordSize:]
}

// GetLength implements Array.GetLength: dim must be 0 for this
// single-dimension-only runtime.
func (a *Array) GetLength(dim int32) (int32, error) {
	if dim != 0 {
		return 0, ErrOutOfRange
	}
	return int32(a.Count()), nil
}

// Rank always reports 1, matching Array.get_Rank's hard-coded return.
func (a *Array) Rank() int32 { return 1 }

// GetLowerBound implements Array.GetLowerBound: dim must be 0, and the
// lower bound of a single-dimension array is always 0.
func (a *Array) GetLowerBound(dim int32) (int32, error) {
	if dim != 0 {
		return 0, ErrOutOfRange
	}
	return 0, nil
}

// ArrayGeometry is the output tuple of Array._s_GetRawArrayGeometry.
type ArrayGeometry struct {
	Data               []byte
	Count              uint32
	ElementSize        uint32
	LowerBound         int32
	ContainsGCPointers bool
}

// GetRawArrayGeometry implements Array._s_GetRawArrayGeometry: a pointer
// to the element payload plus the count/element-size/lower-bound/
// contains-GC-pointers tuple a caller needs to walk it unsafely.
func (a *Array) GetRawArrayGeometry() ArrayGeometry {
	return ArrayGeometry{
		Data:               a.Data(),
		Count:              a.Count(),
		ElementSize:        a.VTable.ElementSize,
		LowerBound:         0,
		ContainsGCPointers: a.VTable.ContainsGCPointers,
	}
}
