// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package image

import "os"

func openFile(path string) (*os.File, error) {
	return os.Open(path)
}
