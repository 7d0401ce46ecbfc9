// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package intrinsics implements the native (ECall) side of the managed
// runtime's internal calls: Array/Buffer/String/Math/Monitor/Thread/
// Environment/Debug/MulticastDelegate, grounded on natsu-clr's
// natsu.fcall.cpp, and a small posix/libc shim surface grounded on
// src/Native/arch/armv7-m/crt.cpp. NewRegistry binds the entry points it
// lists into a loader.ECallRegistry under their Namespace.Type::Method
// identifiers; the others (for example AbsFloat32, Math.ModF, StringLength
// and the HostShim table) are not registered.
package intrinsics

import "math"

// Math implements the System.Math native surface, deterministic IEEE-754
// semantics equal to the underlying platform math primitives, carrying
// forward the original's full Math.* table rather than spec.md's generic
// "Math.*" mention.
var Math = struct {
	Abs     func(float64) float64
	Acos    func(float64) float64
	Acosh   func(float64) float64
	Asin    func(float64) float64
	Asinh   func(float64) float64
	Atan    func(float64) float64
	Atan2   func(y, x float64) float64
	Atanh   func(float64) float64
	Cbrt    func(float64) float64
	Ceiling func(float64) float64
	Cos     func(float64) float64
	Cosh    func(float64) float64
	Exp     func(float64) float64
	Floor   func(float64) float64
	Log     func(float64) float64
	Log10   func(float64) float64
	Pow     func(x, y float64) float64
	Sin     func(float64) float64
	Sinh    func(float64) float64
	Sqrt    func(float64) float64
	Tan     func(float64) float64
	Tanh    func(float64) float64
	FMod    func(x, y float64) float64
	ModF    func(x float64, y *float64) float64
}{
	Abs:     math.Abs,
	Acos:    math.Acos,
	Acosh:   math.Acosh,
	Asin:    math.Asin,
	Asinh:   math.Asinh,
	Atan:    math.Atan,
	Atan2:   math.Atan2,
	Atanh:   math.Atanh,
	Cbrt:    math.Cbrt,
	Ceiling: math.Ceil,
	Cos:     math.Cos,
	Cosh:    math.Cosh,
	Exp:     math.Exp,
	Floor:   math.Floor,
	Log:     math.Log,
	Log10:   math.Log10,
	Pow:     math.Pow,
	Sin:     math.Sin,
	Sinh:    math.Sinh,
	Sqrt:    math.Sqrt,
	Tan:     math.Tan,
	Tanh:    math.Tanh,
	FMod:    math.Mod,
	ModF: func(x float64, y *float64) float64 {
		ip, frac := math.Modf(x)
		*y = ip
		return frac
	},
}

// AbsFloat32 implements the float overload of Math.Abs, kept separate
// since Go's function-value struct above can't hold two overloads under
// one field name.
func AbsFloat32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
