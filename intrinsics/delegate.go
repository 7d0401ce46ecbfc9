// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package intrinsics

import "github.com/saferwall/clrcore/clrruntime"

// MulticastDelegateCreateDelegateLike implements
// System.MulticastDelegate._s_CreateDelegateLike.
func MulticastDelegateCreateDelegateLike(vt *clrruntime.VTable, invocationList []*clrruntime.Object) *clrruntime.MulticastDelegate {
	return clrruntime.CreateDelegateLike(vt, invocationList)
}
