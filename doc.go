// Package surfman manages the lifecycle of GPU rendering contexts and
// their attached drawing surfaces.
//
// # Overview
//
// surfman is a Pure Go library for creating and managing native OpenGL
// rendering contexts on config-based windowing APIs, designed to integrate
// with the GoGPU ecosystem. It reconciles three independent resource
// lifetimes: the native rendering context, the native drawable (pixmap or
// window), and the logical "currently bound" relationship between them.
//
// Destruction is always explicit. A Context that becomes unreachable
// without Device.DestroyContext is a bug in the calling program and is
// reported loudly; nothing is cleaned up behind the caller's back.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/surfman"
//		"github.com/gogpu/surfman/glx"
//	)
//
//	conn, err := glx.NewConnection()
//	if err != nil { ... }
//	defer conn.Close()
//
//	device, err := glx.NewDevice(conn)
//	if err != nil { ... }
//
//	desc, err := device.CreateContextDescriptor(surfman.ContextAttributes{
//		Flags:   surfman.AttrAlpha | surfman.AttrDepth,
//		Version: surfman.GLVersion{Major: 3, Minor: 2},
//	})
//	if err != nil { ... }
//
//	ctx, err := device.CreateContext(desc)
//	if err != nil { ... }
//	defer device.DestroyContext(ctx)
//
//	if err := device.MakeContextCurrent(ctx); err != nil { ... }
//	// issue rendering calls
//
// # Backends
//
// Windowing backends register themselves with the root package, typically
// from an init function activated by a blank import:
//
//	import _ "github.com/gogpu/surfman/glx" // enables the X11/GLX backend
//
// surfman.Open picks the highest-priority backend available on the running
// system. The glx package is the only backend in this module; external
// backends (Wayland/EGL, ANGLE) can register through the same mechanism.
//
// # Concurrency
//
// All operations are synchronous, blocking foreign calls. Context identity
// assignment is the only serialized section; every other operation requires
// the caller to arrange exclusive access to the Context involved. The
// "current context" set by MakeContextCurrent is thread-scoped in the
// native API, so callers that render must pin their goroutine with
// runtime.LockOSThread.
package surfman
