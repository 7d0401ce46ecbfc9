// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Monitor and Thread are stubbed successes consistent with spec.md §5's
// single-threaded cooperative scheduling model: no operation here
// suspends, blocks, or synchronizes. clrcore assumes one execution thread
// drives the evaluation stack, so callers must not rely on these for real
// mutual exclusion.
package intrinsics

import "github.com/saferwall/clrcore/clrruntime"

// Monitor implements System.Threading.Monitor's native surface.
var Monitor = struct {
	Enter                func(obj *clrruntime.Object)
	ReliableEnter        func(obj *clrruntime.Object) (lockTaken bool)
	Exit                 func(obj *clrruntime.Object)
	ReliableEnterTimeout func(obj *clrruntime.Object, timeoutMS int32) (lockTaken bool)
	IsEntered            func(obj *clrruntime.Object) bool
	Wait                 func(obj *clrruntime.Object, timeoutMS int32) bool
	Pulse                func(obj *clrruntime.Object)
	PulseAll             func(obj *clrruntime.Object)
	LockContentionCount  func() int64
}{
	Enter:                func(*clrruntime.Object) {},
	ReliableEnter:         func(*clrruntime.Object) bool { return true },
	Exit:                  func(*clrruntime.Object) {},
	ReliableEnterTimeout:  func(*clrruntime.Object, int32) bool { return true },
	IsEntered:             func(*clrruntime.Object) bool { return true },
	Wait:                  func(*clrruntime.Object, int32) bool { return true },
	Pulse:                 func(*clrruntime.Object) {},
	PulseAll:              func(*clrruntime.Object) {},
	LockContentionCount:   func() int64 { return 0 },
}

// Thread implements System.Threading.Thread's native surface.
var Thread = struct {
	Sleep                            func(millisecondsTimeout int32)
	SpinWait                         func(iterations int32)
	Yield                            func() bool
	GetOptimalMaxSpinWaitsPerSpinIteration func() int32
}{
	Sleep:    func(int32) {},
	SpinWait: func(int32) {},
	Yield:    func() bool { return true },
	GetOptimalMaxSpinWaitsPerSpinIteration: func() int32 { return 1 },
}
