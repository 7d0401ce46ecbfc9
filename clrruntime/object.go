// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package clrruntime defines the in-memory layout every managed allocation
// follows: an object header (vtable pointer, sync block), and the Array,
// String and MulticastDelegate shapes built on top of it. It is grounded
// on natsu-clr's gc_obj_ref<T>/RawSzArrayData/String layout as exercised by
// natsu.fcall.cpp's Array/String/MulticastDelegate intrinsics, translated
// from C++ struct-overlay semantics to explicit byte-offset accessors
// since Go has no equivalent of reinterpreting a pointer as a struct.
package clrruntime

import (
	"encoding/binary"
	"errors"
)

// wordSize is the pointer width this runtime model assumes. It is wider than
// the evalstack package's 4-byte slot.
const wordSize = 8

// Header field offsets, relative to the start of an allocation. Every
// object begins with a vtable pointer and a sync-block word, mirroring
// gc_obj_ref<T>'s header() accessor.
const (
	offVTable    = 0
	offSyncBlock = wordSize
	HeaderSize   = 2 * wordSize
)

// ErrOutOfRange is returned by accessors given an out-of-bounds dimension
// or index, the Go equivalent of throw_exception<IndexOutOfRangeException>.
var ErrOutOfRange = errors.New("clrruntime: index out of range")

// VTable is the per-type dispatch table every object header points to. It
// carries the array metadata natsu.fcall.cpp's _s_GetRawArrayGeometry reads
// (ElementSize, ContainsGCPointers) alongside a method slot table generic
// enough for an intrinsic to upcall a virtual method like
// IScheduler.get_TickCount.
type VTable struct {
	TypeName           string
	ElementSize        uint32
	ContainsGCPointers bool
	Methods            map[string]func(args []interface{}) (interface{}, error)
}

// Invoke calls a virtual method registered in the vtable's Methods table.
func (v *VTable) Invoke(name string, args []interface{}) (interface{}, error) {
	fn, ok := v.Methods[name]
	if !ok {
		return nil, errors.New("clrruntime: vtable has no method " + name)
	}
	return fn(args)
}

// Object is a managed allocation: a header followed by inline payload
// bytes. Array, String and MulticastDelegate are views over the same
// backing buffer, matching how the original reinterprets one gc_ptr as
// different typed pointers depending on context.
type Object struct {
	VTable *VTable
	data   []byte // header + payload, header occupies the first HeaderSize bytes
}

// NewObject allocates an Object with payloadSize bytes following the
// header, zero-initialized, with its vtable pointer set to vt.
func NewObject(vt *VTable, payloadSize uint32) *Object {
	return &Object{VTable: vt, data: make([]byte, HeaderSize+payloadSize)}
}

// Payload returns the bytes following the header.
func (o *Object) Payload() []byte {
	return o.data[HeaderSize:]
}

// SyncBlock returns the object's sync-block word, the monitor lock/hash
// slot every CLR object header reserves.
func (o *Object) SyncBlock() uint64 {
	return binary.LittleEndian.Uint64(o.data[offSyncBlock:])
}

// SetSyncBlock sets the sync-block word.
func (o *Object) SetSyncBlock(v uint64) {
	binary.LittleEndian.PutUint64(o.data[offSyncBlock:], v)
}
