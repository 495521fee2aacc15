// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glx is the X11/GLX windowing backend for surfman.
//
// It creates OpenGL rendering contexts from GLX framebuffer configs,
// provisions pixmap- and window-backed surfaces for them, and tracks
// which surface each context is bound to. All native entry points are
// reached through explicit function tables (see internal/glxapi), loaded
// once per process without cgo.
//
// The package registers itself with the surfman backend registry under
// the name "glx"; a blank import is enough to activate it.
package glx
