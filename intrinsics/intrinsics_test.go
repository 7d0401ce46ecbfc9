// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package intrinsics

import (
	"bytes"
	"testing"

	"github.com/saferwall/clrcore/clrruntime"
	"github.com/saferwall/clrcore/log"
)

func testHelper() *log.Helper {
	return log.NewHelper(log.NewFilter(log.NewStdLogger(bytes.NewBuffer(nil)), log.FilterLevel(log.LevelError)))
}

type fakeScheduler struct{ ticks int64 }

func (f *fakeScheduler) TickCount() int64 { return f.ticks }

type fakeExiter struct{ code int32 }

func (f *fakeExiter) Exit(code int32) { f.code = code }

func TestArrayIntrinsics(t *testing.T) {
	vt := &clrruntime.VTable{ElementSize: 4}
	a := clrruntime.NewArray(vt, 3)

	if got, err := ArrayGetLength(a, 0); err != nil || got != 3 {
		t.Fatalf("ArrayGetLength = %d, %v, want 3, nil", got, err)
	}
	if ArrayGetRank(a) != 1 {
		t.Fatalf("ArrayGetRank != 1")
	}
	if _, err := ArrayGetLowerBound(a, 1); err != clrruntime.ErrOutOfRange {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
	if err := ArrayCopy(a, 0, a, 0, 1, true); err != ErrInvalidOperation {
		t.Fatalf("ArrayCopy should always fail, got %v", err)
	}
}

func TestBufferMemcpyMemmove(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	dst := make([]byte, 4)
	BufferMemcpy(dst, src, 4)
	if !bytes.Equal(dst, src) {
		t.Fatalf("Memcpy result = %v, want %v", dst, src)
	}

	overlap := []byte{1, 2, 3, 4, 5}
	BufferMemmove(overlap[1:], overlap[:4], 4)
	if !bytes.Equal(overlap, []byte{1, 1, 2, 3, 4}) {
		t.Fatalf("Memmove result = %v", overlap)
	}
}

func TestStringGetChars(t *testing.T) {
	vt := &clrruntime.VTable{ElementSize: 2}
	s := clrruntime.FastAllocateString(vt, 3)
	if _, err := StringGetChars(s, 3); err != clrruntime.ErrOutOfRange {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
}

func TestMonitorStubsSucceed(t *testing.T) {
	obj := &clrruntime.Object{}
	if !Monitor.IsEntered(obj) {
		t.Fatalf("IsEntered should report true")
	}
	if !Monitor.ReliableEnter(obj) {
		t.Fatalf("ReliableEnter should report lockTaken=true")
	}
	if !Thread.Yield() {
		t.Fatalf("Yield should report true")
	}
}

func TestEnvironmentDelegatesToScheduler(t *testing.T) {
	sched := &fakeScheduler{ticks: 42}
	exiter := &fakeExiter{}
	env := &Environment{Scheduler: sched, Exiter: exiter}

	if got := env.TickCount64(); got != 42 {
		t.Fatalf("TickCount64() = %d, want 42", got)
	}
	if got := env.TickCount(); got != 42 {
		t.Fatalf("TickCount() = %d, want 42", got)
	}
	env.Exit(7)
	if exiter.code != 7 {
		t.Fatalf("Exit code = %d, want 7", exiter.code)
	}
}

func TestHostShimWrite(t *testing.T) {
	if r := Write(1, []byte("hi")); r.Return != 2 {
		t.Fatalf("Write to stdout = %+v, want Return=2", r)
	}
	if r := Write(99, []byte("hi")); r.Errno == 0 {
		t.Fatalf("Write to unknown fd should report an errno")
	}
}

func TestRegistryResolvesArrayGetLength(t *testing.T) {
	env := &Environment{Scheduler: &fakeScheduler{}, Exiter: &fakeExiter{}}
	debug := NewDebug(testHelper())
	reg := NewRegistry(env, debug)

	call, ok := reg.Lookup("System.Array::GetLength")
	if !ok {
		t.Fatalf("Array::GetLength not registered")
	}

	vt := &clrruntime.VTable{ElementSize: 4}
	a := clrruntime.NewArray(vt, 5)
	got, err := call.Invoke([]interface{}{a, int32(0)})
	if err != nil || got.(int32) != 5 {
		t.Fatalf("Invoke = %v, %v, want 5, nil", got, err)
	}
}
