// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package loader

// ECall is one internal call's registry entry: a native entry point and
// its declared parameter count, the Go equivalent of natsu-clr's ECall
// table row (native function pointer + ParamCount).
type ECall struct {
	Name        string
	ParamsCount int
	Invoke      func(args []interface{}) (interface{}, error)
}

// ECallRegistry resolves a method marked InternalCall to its native
// implementation. Lookup is by the fully qualified Namespace.Type::Method
// identifier; a miss is fatal to Load per spec.md §4.H.
type ECallRegistry interface {
	Lookup(qualifiedName string) (ECall, bool)
}

// StaticECallRegistry is a fixed, build-time-populated ECallRegistry, the
// "static table" spec.md §4.H describes. Registration happens once, before
// any Load call, through NewStaticECallRegistry and Register.
type StaticECallRegistry struct {
	entries map[string]ECall
}

// NewStaticECallRegistry returns an empty registry ready for Register calls.
func NewStaticECallRegistry() *StaticECallRegistry {
	return &StaticECallRegistry{entries: make(map[string]ECall)}
}

// Register binds qualifiedName to call, overwriting any existing entry.
func (r *StaticECallRegistry) Register(qualifiedName string, call ECall) {
	r.entries[qualifiedName] = call
}

// Lookup implements ECallRegistry.
func (r *StaticECallRegistry) Lookup(qualifiedName string) (ECall, bool) {
	call, ok := r.entries[qualifiedName]
	return call, ok
}
