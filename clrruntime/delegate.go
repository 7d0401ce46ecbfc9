// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrruntime

// MulticastDelegate holds an invocation list of delegate-shaped objects,
// grounded on natsu-clr's MulticastDelegate::_s_CreateDelegateLike.
type MulticastDelegate struct {
	*Object
	InvocationList []*Object
}

// NewMulticastDelegate allocates a fresh MulticastDelegate referencing
// invocationList, the "else" branch of _s_CreateDelegateLike.
func NewMulticastDelegate(vt *VTable, invocationList []*Object) *MulticastDelegate {
	return &MulticastDelegate{
		Object:         NewObject(vt, 0),
		InvocationList: invocationList,
	}
}

// CreateDelegateLike implements MulticastDelegate._s_CreateDelegateLike:
// an empty invocation list yields nil; a single entry is reinterpreted as
// the multicast delegate itself; otherwise a fresh MulticastDelegate is
// allocated referencing the full list.
func CreateDelegateLike(vt *VTable, invocationList []*Object) *MulticastDelegate {
	switch len(invocationList) {
	case 0:
		return nil
	case 1:
		return &MulticastDelegate{Object: invocationList[0], InvocationList: invocationList}
	default:
		return NewMulticastDelegate(vt, invocationList)
	}
}
