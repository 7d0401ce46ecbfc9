// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package intrinsics

import (
	"github.com/saferwall/clrcore/clrruntime"
	"github.com/saferwall/clrcore/loader"
)

// Registry bundles the stateful intrinsic surfaces (Environment, Debug)
// with the stateless ones (Array, Buffer, String, Math, Monitor, Thread,
// MulticastDelegate) into one loader.ECallRegistry, the Go equivalent of
// natsu-clr registering its whole ECall table once at runtime start.
type Registry struct {
	Environment *Environment
	Debug       *Debug
	static      *loader.StaticECallRegistry
}

// NewRegistry builds a Registry with every ECall entry bound, ready to
// pass to loader.Load.
func NewRegistry(env *Environment, debug *Debug) *Registry {
	r := &Registry{Environment: env, Debug: debug, static: loader.NewStaticECallRegistry()}
	r.registerArray()
	r.registerBuffer()
	r.registerString()
	r.registerMath()
	r.registerMonitorThread()
	r.registerEnvironment()
	r.registerDebug()
	r.registerDelegate()
	return r
}

// Lookup implements loader.ECallRegistry.
func (r *Registry) Lookup(qualifiedName string) (loader.ECall, bool) {
	return r.static.Lookup(qualifiedName)
}

func (r *Registry) register(qualifiedName string, paramsCount int, fn func([]interface{}) (interface{}, error)) {
	r.static.Register(qualifiedName, loader.ECall{Name: qualifiedName, ParamsCount: paramsCount, Invoke: fn})
}

func (r *Registry) registerArray() {
	r.register("System.Array::GetLength", 2, func(args []interface{}) (interface{}, error) {
		return ArrayGetLength(args[0].(*clrruntime.Array), args[1].(int32))
	})
	r.register("System.Array::get_Rank", 1, func(args []interface{}) (interface{}, error) {
		return ArrayGetRank(args[0].(*clrruntime.Array)), nil
	})
	r.register("System.Array::GetLowerBound", 2, func(args []interface{}) (interface{}, error) {
		return ArrayGetLowerBound(args[0].(*clrruntime.Array), args[1].(int32))
	})
	r.register("System.Array::_s_Copy", 6, func(args []interface{}) (interface{}, error) {
		err := ArrayCopy(
			args[0].(*clrruntime.Array), args[1].(int32),
			args[2].(*clrruntime.Array), args[3].(int32),
			args[4].(int32), args[5].(bool),
		)
		return nil, err
	})
	r.register("System.Array::_s_GetRawArrayGeometry", 1, func(args []interface{}) (interface{}, error) {
		return ArrayGetRawArrayGeometry(args[0].(*clrruntime.Array)), nil
	})
}

func (r *Registry) registerBuffer() {
	r.register("System.Buffer::_s_Memcpy", 3, func(args []interface{}) (interface{}, error) {
		BufferMemcpy(args[0].([]byte), args[1].([]byte), args[2].(int32))
		return nil, nil
	})
	r.register("System.Buffer::_s_Memmove", 3, func(args []interface{}) (interface{}, error) {
		BufferMemmove(args[0].([]byte), args[1].([]byte), args[2].(int64))
		return nil, nil
	})
}

func (r *Registry) registerString() {
	r.register("System.String::get_Chars", 2, func(args []interface{}) (interface{}, error) {
		return StringGetChars(args[0].(*clrruntime.String), args[1].(int32))
	})
	r.register("System.String::_s_FastAllocateString", 2, func(args []interface{}) (interface{}, error) {
		return StringFastAllocateString(args[0].(*clrruntime.VTable), args[1].(int32)), nil
	})
}

func (r *Registry) registerMath() {
	unary := map[string]func(float64) float64{
		"Abs": Math.Abs, "Acos": Math.Acos, "Acosh": Math.Acosh, "Asin": Math.Asin,
		"Asinh": Math.Asinh, "Atan": Math.Atan, "Atanh": Math.Atanh, "Cbrt": Math.Cbrt,
		"Ceiling": Math.Ceiling, "Cos": Math.Cos, "Cosh": Math.Cosh, "Exp": Math.Exp,
		"Floor": Math.Floor, "Log": Math.Log, "Log10": Math.Log10, "Sin": Math.Sin,
		"Sinh": Math.Sinh, "Sqrt": Math.Sqrt, "Tan": Math.Tan, "Tanh": Math.Tanh,
	}
	for name, fn := range unary {
		fn := fn
		r.register("System.Math::_s_"+name, 1, func(args []interface{}) (interface{}, error) {
			return fn(args[0].(float64)), nil
		})
	}
	binary := map[string]func(a, b float64) float64{
		"Atan2": Math.Atan2, "Pow": Math.Pow, "FMod": Math.FMod,
	}
	for name, fn := range binary {
		fn := fn
		r.register("System.Math::_s_"+name, 2, func(args []interface{}) (interface{}, error) {
			return fn(args[0].(float64), args[1].(float64)), nil
		})
	}
}

func (r *Registry) registerMonitorThread() {
	r.register("System.Threading.Monitor::_s_Enter", 1, func(args []interface{}) (interface{}, error) {
		Monitor.Enter(args[0].(*clrruntime.Object))
		return nil, nil
	})
	r.register("System.Threading.Monitor::_s_Exit", 1, func(args []interface{}) (interface{}, error) {
		Monitor.Exit(args[0].(*clrruntime.Object))
		return nil, nil
	})
	r.register("System.Threading.Monitor::_s_IsEnteredNative", 1, func(args []interface{}) (interface{}, error) {
		return Monitor.IsEntered(args[0].(*clrruntime.Object)), nil
	})
	r.register("System.Threading.Thread::_s_YieldInternal", 0, func(args []interface{}) (interface{}, error) {
		return Thread.Yield(), nil
	})
	r.register("System.Threading.Thread::_s_SleepInternal", 1, func(args []interface{}) (interface{}, error) {
		Thread.Sleep(args[0].(int32))
		return nil, nil
	})
}

func (r *Registry) registerEnvironment() {
	r.register("System.Environment::_s__Exit", 1, func(args []interface{}) (interface{}, error) {
		r.Environment.Exit(args[0].(int32))
		return nil, nil
	})
	r.register("System.Environment::_s_get_TickCount64", 0, func(args []interface{}) (interface{}, error) {
		return r.Environment.TickCount64(), nil
	})
}

func (r *Registry) registerDebug() {
	r.register("System.Diagnostics.Debug::_s_WriteCore", 1, func(args []interface{}) (interface{}, error) {
		r.Debug.WriteCore(args[0].(string))
		return nil, nil
	})
	r.register("System.Diagnostics.Debug::_s_WriteLineCore", 1, func(args []interface{}) (interface{}, error) {
		r.Debug.WriteLineCore(args[0].(string))
		return nil, nil
	})
	r.register("System.Diagnostics.Debug::_s_FailCore", 2, func(args []interface{}) (interface{}, error) {
		r.Debug.FailCore(args[0].(string), args[1].(string))
		return nil, nil
	})
}

func (r *Registry) registerDelegate() {
	r.register("System.MulticastDelegate::_s_CreateDelegateLike", 2, func(args []interface{}) (interface{}, error) {
		return MulticastDelegateCreateDelegateLike(args[0].(*clrruntime.VTable), args[1].([]*clrruntime.Object)), nil
	})
}
