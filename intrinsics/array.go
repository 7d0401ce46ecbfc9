// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package intrinsics

import (
	"errors"

	"github.com/saferwall/clrcore/clrruntime"
)

// ErrInvalidOperation is returned by the Array._s_Copy stub, matching the
// original's unconditional throw_exception<InvalidOperationException>.
var ErrInvalidOperation = errors.New("intrinsics: operation not supported")

// ArrayGetLength implements System.Array.GetLength(a, dim).
func ArrayGetLength(a *clrruntime.Array, dim int32) (int32, error) {
	return a.GetLength(dim)
}

// ArrayGetRank implements System.Array.get_Rank(a).
func ArrayGetRank(a *clrruntime.Array) int32 {
	return a.Rank()
}

// ArrayGetLowerBound implements System.Array.GetLowerBound(a, dim).
func ArrayGetLowerBound(a *clrruntime.Array, dim int32) (int32, error) {
	return a.GetLowerBound(dim)
}

// ArrayCopy implements System.Array._s_Copy. Kept as a stub that always
// fails, matching the original and the spec's explicit flag of this as a
// known gap rather than a silently wrong implementation.
func ArrayCopy(source *clrruntime.Array, sourceIndex int32, dest *clrruntime.Array, destIndex int32, length int32, reliable bool) error {
	return ErrInvalidOperation
}

// ArrayGetRawArrayGeometry implements System.Array._s_GetRawArrayGeometry.
func ArrayGetRawArrayGeometry(a *clrruntime.Array) clrruntime.ArrayGeometry {
	return a.GetRawArrayGeometry()
}
