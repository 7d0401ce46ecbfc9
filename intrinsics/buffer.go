// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package intrinsics

// BufferMemcpy implements System.Buffer._s_Memcpy: a byte-wise copy that
// assumes non-overlapping spans, matching the original's direct memcpy.
func BufferMemcpy(dest, src []byte, length int32) {
	copy(dest[:length], src[:length])
}

// BufferMemmove implements System.Buffer._s_Memmove: an overlap-safe
// byte-wise copy. Go's builtin copy is already overlap-safe, the same
// guarantee the original gets from memmove.
func BufferMemmove(dest, src []byte, length int64) {
	copy(dest[:length], src[:length])
}
