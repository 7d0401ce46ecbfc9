// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evalstack

import "testing"

func TestPushPopRoundTrip(t *testing.T) {
	s := New()
	Push[int32](s, 42)
	Push[int64](s, -7)
	Push[float64](s, 3.5)

	if got, err := Pop[float64](s); err != nil || got != 3.5 {
		t.Fatalf("Pop[float64] = %v, %v, want 3.5, nil", got, err)
	}
	if got, err := Pop[int64](s); err != nil || got != -7 {
		t.Fatalf("Pop[int64] = %v, %v, want -7, nil", got, err)
	}
	if got, err := Pop[int32](s); err != nil || got != 42 {
		t.Fatalf("Pop[int32] = %v, %v, want 42, nil", got, err)
	}
	if s.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", s.Size())
	}
}

func TestPushAlignsToWord(t *testing.T) {
	s := New()
	Push[uint8](s, 1)
	if s.Size() != 1 {
		t.Fatalf("pushing a 1-byte value should reserve 1 word, got size %d", s.Size())
	}
	Push[int64](s, 1)
	if s.Size() != 3 {
		t.Fatalf("pushing an 8-byte value should reserve 2 words, got size %d", s.Size())
	}
}

func TestPopUnderflow(t *testing.T) {
	s := New()
	if _, err := Pop[int32](s); err != ErrUnderflow {
		t.Fatalf("got %v, want ErrUnderflow", err)
	}
}

func TestGetFromTop(t *testing.T) {
	s := New()
	Push[int32](s, 1)
	Push[int32](s, 2)
	Push[int32](s, 3)

	top, err := s.GetFromTop(1)
	if err != nil {
		t.Fatalf("GetFromTop: %v", err)
	}
	if len(top) < 4 {
		t.Fatalf("GetFromTop returned too few bytes: %d", len(top))
	}
}

func TestPopCount(t *testing.T) {
	s := New()
	Push[int32](s, 1)
	Push[int32](s, 2)
	Push[int32](s, 3)

	if err := s.PopCount(2); err != nil {
		t.Fatalf("PopCount: %v", err)
	}
	if s.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", s.Size())
	}

	if err := s.PopCount(5); err != ErrUnderflow {
		t.Fatalf("got %v, want ErrUnderflow", err)
	}
}
