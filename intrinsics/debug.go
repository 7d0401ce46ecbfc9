// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package intrinsics

import "github.com/saferwall/clrcore/log"

// Debug implements System.Diagnostics.Debug's native surface, delegating
// to the runtime logger rather than the original's kernel debug sink
// (Chino::Kernel::KernelDebug::_s_Write).
type Debug struct {
	logger *log.Helper
}

// NewDebug returns a Debug intrinsic surface writing through logger.
func NewDebug(logger *log.Helper) *Debug {
	return &Debug{logger: logger}
}

// WriteCore implements Debug._s_WriteCore.
func (d *Debug) WriteCore(message string) {
	d.logger.Debugf("%s", message)
}

// WriteLineCore implements Debug._s_WriteLineCore.
func (d *Debug) WriteLineCore(message string) {
	d.logger.Debugf("%s\n", message)
}

// FailCore implements Debug._s_FailCore.
func (d *Debug) FailCore(message, detailMessage string) {
	d.logger.Errorf("%s: %s", message, detailMessage)
}
