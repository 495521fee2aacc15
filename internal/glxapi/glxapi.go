// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glxapi exposes the GLX, GL and Xlib entry points surfman needs
// as explicit function tables.
//
// The tables are plain structs of Go func values. Production code obtains
// a fully resolved table set from Load; tests substitute their own
// implementations. Passing the tables by reference into every native call
// site replaces the hidden thread-local function caches a C or Rust
// binding would use, while keeping "resolve once, reuse everywhere"
// semantics.
package glxapi

// Attribute lists passed to GLX are fixed-layout key/value pairs
// terminated by a single 0 sentinel: key, value, key, value, ..., 0.
// Constant names follow the native API with the GLX_/GL_ prefix dropped,
// as OpenGL bindings for Go conventionally do.
const (
	DOUBLEBUFFER = 5
	STEREO       = 6
	RED_SIZE     = 8
	GREEN_SIZE   = 9
	BLUE_SIZE    = 10
	ALPHA_SIZE   = 11
	DEPTH_SIZE   = 12
	STENCIL_SIZE = 13

	X_VISUAL_TYPE = 0x22
	TRUE_COLOR    = 0x8002

	DRAWABLE_TYPE = 0x8010
	RENDER_TYPE   = 0x8011
	X_RENDERABLE  = 0x8012
	FBCONFIG_ID   = 0x8013

	WINDOW_BIT = 0x01
	PIXMAP_BIT = 0x02
	RGBA_BIT   = 0x01

	// GLX_EXT_texture_from_pixmap
	BIND_TO_TEXTURE_RGBA_EXT    = 0x20D1
	BIND_TO_TEXTURE_TARGETS_EXT = 0x20D3
	TEXTURE_RECTANGLE_BIT_EXT   = 0x04

	// GLX_ARB_create_context
	CONTEXT_MAJOR_VERSION_ARB = 0x2091
	CONTEXT_MINOR_VERSION_ARB = 0x2092

	// GL integer queries
	MAJOR_VERSION = 0x821B
	MINOR_VERSION = 0x821C

	// Xlib booleans and status codes
	True    = 1
	False   = 0
	Success = 0
)

// GLX is the table of GLX entry points. Display, config, context and
// drawable handles are opaque native values carried as uintptr.
type GLX struct {
	// ChooseFBConfig returns a native-allocated array of framebuffer
	// configs matching the zero-terminated attribute list, or 0. The
	// array must be released with Xlib.Free. Native ordering is
	// authoritative; callers take the first element.
	ChooseFBConfig func(display uintptr, screen int32, attribs *int32, nitems *int32) uintptr

	// GetFBConfigs returns the native-allocated array of all framebuffer
	// configs on the screen. The array must be released with Xlib.Free.
	GetFBConfigs func(display uintptr, screen int32, nelements *int32) uintptr

	// GetFBConfigAttrib reads a single config attribute. Returns Success
	// or a GLX error code.
	GetFBConfigAttrib func(display uintptr, config uintptr, attribute int32, value *int32) int32

	// GetVisualFromFBConfig returns a native-allocated *XVisualInfo for
	// the config, or 0 if the config has no associated X visual. The
	// result must be released with Xlib.Free.
	GetVisualFromFBConfig func(display uintptr, config uintptr) uintptr

	// CreateContextAttribsARB creates a context targeting the version in
	// the zero-terminated attribute list. Returns 0 on failure.
	CreateContextAttribsARB func(display uintptr, config uintptr, shareContext uintptr, direct int32, attribs *int32) uintptr

	// DestroyContext destroys a context created by this library.
	DestroyContext func(display uintptr, ctx uintptr)

	// MakeCurrent binds drawable and context to the calling thread.
	// Passing 0 for both detaches. Returns True or False.
	MakeCurrent func(display uintptr, drawable uintptr, ctx uintptr) int32

	// GetCurrentDisplay returns the display of the calling thread's
	// current context, or 0.
	GetCurrentDisplay func() uintptr

	// GetCurrentContext returns the calling thread's current context,
	// or 0.
	GetCurrentContext func() uintptr

	// QueryContext reads a context attribute (e.g. FBCONFIG_ID).
	// Returns Success or a GLX error code.
	QueryContext func(display uintptr, ctx uintptr, attribute int32, value *int32) int32

	// CreatePixmap wraps an X pixmap in a GLX drawable. The attribute
	// list may be nil. Returns 0 on failure.
	CreatePixmap func(display uintptr, config uintptr, pixmap uintptr, attribs *int32) uintptr

	// DestroyPixmap releases a GLX pixmap drawable.
	DestroyPixmap func(display uintptr, pixmap uintptr)

	// SwapBuffers presents the back buffer of the drawable.
	SwapBuffers func(display uintptr, drawable uintptr)

	// GetProcAddress resolves a GL or GLX extension entry point by name.
	GetProcAddress func(name string) uintptr
}

// GL is the table of core GL entry points surfman itself calls.
type GL struct {
	// GetIntegerv reads an integer state value (e.g. MAJOR_VERSION).
	GetIntegerv func(pname uint32, data *int32)

	// Flush forces execution of pending GL commands.
	Flush func()
}

// Xlib is the table of Xlib entry points surfman itself calls.
type Xlib struct {
	// OpenDisplay opens a connection to the X server. An empty name
	// selects the DISPLAY environment variable. Returns 0 on failure.
	OpenDisplay func(name string) uintptr

	// CloseDisplay closes a connection opened with OpenDisplay.
	CloseDisplay func(display uintptr) int32

	// DefaultScreen returns the default screen number of the display.
	DefaultScreen func(display uintptr) int32

	// RootWindow returns the root window of the screen.
	RootWindow func(display uintptr, screen int32) uintptr

	// CreatePixmap allocates an off-screen pixmap of the given depth.
	// Returns 0 on failure.
	CreatePixmap func(display uintptr, drawable uintptr, width, height uint32, depth uint32) uintptr

	// FreePixmap releases a pixmap created with CreatePixmap.
	FreePixmap func(display uintptr, pixmap uintptr) int32

	// Free releases memory allocated by Xlib or GLX on the caller's
	// behalf (config arrays, visual infos).
	Free func(data uintptr) int32
}

// VisualInfo mirrors the memory layout of Xlib's XVisualInfo. The C
// unsigned long fields are pointer-sized on every platform Xlib runs on,
// so uintptr keeps the layout correct for both 32- and 64-bit builds.
type VisualInfo struct {
	Visual       uintptr
	VisualID     uintptr
	Screen       int32
	Depth        int32
	Class        int32
	RedMask      uintptr
	GreenMask    uintptr
	BlueMask     uintptr
	ColormapSize int32
	BitsPerRGB   int32
}

// API bundles the three function tables. A Device holds one *API and
// threads it through every native call.
type API struct {
	GLX GLX
	GL  GL
	X   Xlib
}
