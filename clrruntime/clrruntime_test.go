// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrruntime

import "testing"

func int32VTable() *VTable {
	return &VTable{TypeName: "System.Int32[]", ElementSize: 4, ContainsGCPointers: false}
}

func TestArrayGetLength(t *testing.T) {
	a := NewArray(int32VTable(), 3)
	if got := a.Count(); got != 3 {
		t.Fatalf("Count() = %d, want 3", got)
	}
	if got, err := a.GetLength(0); err != nil || got != 3 {
		t.Fatalf("GetLength(0) = %d, %v, want 3, nil", got, err)
	}
	if _, err := a.GetLength(1); err != ErrOutOfRange {
		t.Fatalf("GetLength(1) err = %v, want ErrOutOfRange", err)
	}
}

func TestArrayGetLowerBoundAndRank(t *testing.T) {
	a := NewArray(int32VTable(), 5)
	if a.Rank() != 1 {
		t.Fatalf("Rank() = %d, want 1", a.Rank())
	}
	if lb, err := a.GetLowerBound(0); err != nil || lb != 0 {
		t.Fatalf("GetLowerBound(0) = %d, %v, want 0, nil", lb, err)
	}
	if _, err := a.GetLowerBound(1); err != ErrOutOfRange {
		t.Fatalf("GetLowerBound(1) err = %v, want ErrOutOfRange", err)
	}
}

func TestArrayGeometry(t *testing.T) {
	vt := int32VTable()
	a := NewArray(vt, 4)
	g := a.GetRawArrayGeometry()
	if g.Count != 4 || g.ElementSize != 4 || g.LowerBound != 0 {
		t.Fatalf("unexpected geometry: %+v", g)
	}
	if len(g.Data) != 16 {
		t.Fatalf("Data length = %d, want 16", len(g.Data))
	}
}

func stringVTable() *VTable {
	return &VTable{TypeName: "System.String", ElementSize: 2, ContainsGCPointers: false}
}

func TestFastAllocateString(t *testing.T) {
	s := FastAllocateString(stringVTable(), 5)
	if s.Length() != 5 {
		t.Fatalf("Length() = %d, want 5", s.Length())
	}
	if c, err := s.GetChars(0); err != nil || c != 0 {
		t.Fatalf("GetChars(0) = %v, %v, want 0, nil", c, err)
	}
	if _, err := s.GetChars(5); err != ErrOutOfRange {
		t.Fatalf("GetChars(5) err = %v, want ErrOutOfRange", err)
	}
	if _, err := s.GetChars(-1); err != ErrOutOfRange {
		t.Fatalf("GetChars(-1) err = %v, want ErrOutOfRange", err)
	}
}

func TestNewStringFromUTF16RoundTrip(t *testing.T) {
	units := []uint16{'h', 'i'}
	s := NewStringFromUTF16(stringVTable(), units)
	if s.Length() != 2 {
		t.Fatalf("Length() = %d, want 2", s.Length())
	}
	got := s.UTF16()
	if len(got) != 2 || got[0] != 'h' || got[1] != 'i' {
		t.Fatalf("UTF16() = %v, want [h i]", got)
	}
}

func TestCreateDelegateLikeEmpty(t *testing.T) {
	vt := &VTable{TypeName: "System.MulticastDelegate"}
	if got := CreateDelegateLike(vt, nil); got != nil {
		t.Fatalf("expected nil for empty invocation list, got %+v", got)
	}
}

func TestCreateDelegateLikeSingle(t *testing.T) {
	vt := &VTable{TypeName: "System.MulticastDelegate"}
	entry := NewObject(vt, 0)
	got := CreateDelegateLike(vt, []*Object{entry})
	if got.Object != entry {
		t.Fatalf("expected single entry reinterpreted as the delegate")
	}
}

func TestCreateDelegateLikeMultiple(t *testing.T) {
	vt := &VTable{TypeName: "System.MulticastDelegate"}
	entries := []*Object{NewObject(vt, 0), NewObject(vt, 0)}
	got := CreateDelegateLike(vt, entries)
	if len(got.InvocationList) != 2 {
		t.Fatalf("InvocationList length = %d, want 2", len(got.InvocationList))
	}
}
