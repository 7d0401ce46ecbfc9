// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package intrinsics

// Scheduler supplies the tick count System.Environment's native surface
// delegates to, the Go analogue of natsu-clr's IScheduler vtable upcall
// from _s_get_TickCount64.
type Scheduler interface {
	TickCount() int64
}

// Exiter terminates the process with a status code, letting tests
// substitute a non-fatal fake for Environment._s__Exit.
type Exiter interface {
	Exit(code int32)
}

// Environment implements System.Environment's native surface.
type Environment struct {
	Scheduler Scheduler
	Exiter    Exiter
}

// Exit implements Environment._s__Exit.
func (e *Environment) Exit(code int32) {
	e.Exiter.Exit(code)
}

// TickCount implements Environment._s_get_TickCount: the truncated 32-bit
// view of TickCount64.
func (e *Environment) TickCount() int32 {
	return int32(e.TickCount64())
}

// TickCount64 implements Environment._s_get_TickCount64, delegating to the
// scheduler intrinsic per spec.md §4.K.
func (e *Environment) TickCount64() int64 {
	return e.Scheduler.TickCount()
}
