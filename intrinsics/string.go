// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package intrinsics

import "github.com/saferwall/clrcore/clrruntime"

// StringGetChars implements System.String.get_Chars(s, i).
func StringGetChars(s *clrruntime.String, index int32) (uint16, error) {
	return s.GetChars(index)
}

// StringFastAllocateString implements System.String._s_FastAllocateString.
func StringFastAllocateString(vt *clrruntime.VTable, length int32) *clrruntime.String {
	return clrruntime.FastAllocateString(vt, length)
}

// StringLength implements System.String.get_Length.
func StringLength(s *clrruntime.String) int32 {
	return s.Length()
}
