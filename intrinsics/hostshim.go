// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// hostshim.go carries the posix/libc shim surface
// src/Native/arch/armv7-m/crt.cpp exposes to a bare-metal CLR build:
// every syscall-shaped function returns ENOSYS except a write() to
// stdout/stderr, which succeeds; in the table below isatty and sbrk also
// return 0 with no errno. This process already runs under a real
// OS, so clrcore doesn't need syscalls faked — but the internal-call
// registry needs something concrete to bind Environment/Console-adjacent
// ECalls to in tests, and a named table of stub results is the Go
// equivalent of the original's weak-symbol aliasing.
package intrinsics

import "syscall"

// HostShimResult is one posix shim call's return value and errno.
type HostShimResult struct {
	Return int
	Errno  syscall.Errno
}

var enosys = HostShimResult{Return: -1, Errno: syscall.ENOSYS}

// HostShim is the named table of stub posix results, keyed the way the
// original's crt.cpp symbol names are: close, fstat, getpid, isatty, kill,
// lseek, open, read, gettimeofday, sbrk. write is not in the table; it is
// the Write function below.
var HostShim = map[string]func(args ...int) HostShimResult{
	"close":        func(args ...int) HostShimResult { return enosys },
	"fstat":        func(args ...int) HostShimResult { return enosys },
	"getpid":       func(args ...int) HostShimResult { return enosys },
	"isatty":       func(args ...int) HostShimResult { return HostShimResult{Return: 0} },
	"kill":         func(args ...int) HostShimResult { return enosys },
	"lseek":        func(args ...int) HostShimResult { return enosys },
	"open":         func(args ...int) HostShimResult { return enosys },
	"read":         func(args ...int) HostShimResult { return enosys },
	"gettimeofday": func(args ...int) HostShimResult { return enosys },
	"sbrk":         func(args ...int) HostShimResult { return HostShimResult{Return: 0} },
}

// stdoutFD and stderrFD match crt.cpp's STDOUT_FILENO/STDERR_FILENO.
const (
	stdoutFD = 1
	stderrFD = 2
)

// Write implements the write() shim: stdout/stderr always "succeed" by
// reporting the full length written; anything else is ENOSYS.
func Write(fd int, data []byte) HostShimResult {
	if fd == stdoutFD || fd == stderrFD {
		return HostShimResult{Return: len(data)}
	}
	return enosys
}
