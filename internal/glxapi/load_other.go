// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !(linux || freebsd)

package glxapi

import "errors"

// Load reports that GLX is unavailable on this platform. The function
// tables themselves are portable, so tests can still construct fakes.
func Load() (*API, error) {
	return nil, errors.New("glxapi: GLX is not supported on this platform")
}
