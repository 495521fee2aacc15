// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glx

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/gogpu/surfman"
	"github.com/gogpu/surfman/internal/glxapi"
)

// dummyPixmapSize is the extent of the scratch drawable every context
// carries so it can be made current with no surface bound.
const dummyPixmapSize = 16

// Context creation is serialized process-wide: identity assignment must
// stay monotonic, and some drivers misbehave when their context creation
// entry point races with itself.
var (
	createContextMu sync.Mutex
	nextContextID   surfman.ContextID
)

// ContextDescriptor is an immutable, copyable selection of a framebuffer
// config and a target GL version. Two descriptors with the same config id
// and version are interchangeable.
type ContextDescriptor struct {
	fbConfigID uintptr
	glVersion  surfman.GLVersion
}

// GLVersion returns the GL version the descriptor targets.
func (desc ContextDescriptor) GLVersion() surfman.GLVersion { return desc.glVersion }

// nativeContext is the owned-or-borrowed capability over the raw GLX
// context handle. A borrowed handle came from outside the library and is
// never passed to glXDestroyContext.
type nativeContext struct {
	handle    uintptr
	owned     bool
	destroyed bool
}

type framebufferKind uint8

const (
	// fbUnbound: no surface attached; rendering goes to the scratch drawable.
	fbUnbound framebufferKind = iota

	// fbBound: the context exclusively owns the attached surface.
	fbBound

	// fbExternal: the context was adopted and its real render target is
	// opaque to surfman. Binding operations always fail.
	fbExternal
)

// framebuffer is the tagged binding state; surface is set iff kind is fbBound.
type framebuffer struct {
	kind    framebufferKind
	surface *Surface
}

// Context is a GLX rendering context.
//
// Contexts must be destroyed explicitly with Device.DestroyContext before
// being discarded. A Context is not safe for concurrent use; the caller
// arranges exclusive access.
type Context struct {
	native         nativeContext
	id             surfman.ContextID
	fb             framebuffer
	glVersion      surfman.GLVersion
	dummyGLXPixmap uintptr
	dummyPixmap    uintptr
}

// armDestroyCheck makes a context that becomes garbage without an
// explicit DestroyContext fail loudly. Native contexts cannot be released
// safely from a finalizer (the wrong thread, the display may be gone), so
// leaking one silently is never acceptable.
func armDestroyCheck(ctx *Context) {
	runtime.SetFinalizer(ctx, func(c *Context) {
		if !c.native.destroyed {
			panic(fmt.Sprintf("glx: context %d became unreachable without DestroyContext; contexts must be destroyed explicitly", c.id))
		}
	})
}

func disarmDestroyCheck(ctx *Context) {
	runtime.SetFinalizer(ctx, nil)
}

// CreateContextDescriptor selects a framebuffer config matching the
// requested attributes and wraps its id with the requested GL version.
// Returns surfman.ErrNoMatchingConfig if the native layer has no config
// satisfying them.
func (d *Device) CreateContextDescriptor(attrs surfman.ContextAttributes) (ContextDescriptor, error) {
	var alphaSize, depthSize, stencilSize int32
	if attrs.Flags.Has(surfman.AttrAlpha) {
		alphaSize = 8
	}
	if attrs.Flags.Has(surfman.AttrDepth) {
		depthSize = 24
	}
	if attrs.Flags.Has(surfman.AttrStencil) {
		stencilSize = 8
	}

	attribs := []int32{
		glxapi.RED_SIZE, 8,
		glxapi.GREEN_SIZE, 8,
		glxapi.BLUE_SIZE, 8,
		glxapi.ALPHA_SIZE, alphaSize,
		glxapi.DEPTH_SIZE, depthSize,
		glxapi.STENCIL_SIZE, stencilSize,
		glxapi.DRAWABLE_TYPE, glxapi.PIXMAP_BIT | glxapi.WINDOW_BIT,
		glxapi.X_RENDERABLE, glxapi.True,
		glxapi.X_VISUAL_TYPE, glxapi.TRUE_COLOR,
		glxapi.RENDER_TYPE, glxapi.RGBA_BIT,
		glxapi.STEREO, glxapi.False,
		glxapi.BIND_TO_TEXTURE_RGBA_EXT, glxapi.True,
		glxapi.BIND_TO_TEXTURE_TARGETS_EXT, glxapi.TEXTURE_RECTANGLE_BIT_EXT,
		// Pixmap surfaces should not need double buffering, but Mesa
		// exhibits synchronization glitches without it. Requested
		// unconditionally as a workaround, not a real requirement.
		glxapi.DOUBLEBUFFER, glxapi.True,
		0,
	}

	id, err := d.chooseFBConfigID(attribs)
	if err != nil {
		return ContextDescriptor{}, err
	}
	surfman.Logger().Debug("glx: matched framebuffer config", "id", id, "flags", uint8(attrs.Flags))
	return ContextDescriptor{fbConfigID: id, glVersion: attrs.Version}, nil
}

// ContextDescriptorAttributes resolves a descriptor back to the context
// attributes it satisfies. The reported flags reflect the chosen config's
// actual channel sizes, so they round-trip with CreateContextDescriptor.
func (d *Device) ContextDescriptorAttributes(desc ContextDescriptor) surfman.ContextAttributes {
	config := d.fbConfigFromID(desc.fbConfigID)

	var flags surfman.ContextAttributeFlags
	if d.getConfigAttr(config, glxapi.ALPHA_SIZE) != 0 {
		flags |= surfman.AttrAlpha
	}
	if d.getConfigAttr(config, glxapi.DEPTH_SIZE) != 0 {
		flags |= surfman.AttrDepth
	}
	if d.getConfigAttr(config, glxapi.STENCIL_SIZE) != 0 {
		flags |= surfman.AttrStencil
	}

	return surfman.ContextAttributes{Flags: flags, Version: desc.glVersion}
}

// CreateContext creates a rendering context from a descriptor. The
// context starts with no surface bound. It must eventually be destroyed
// with DestroyContext.
func (d *Device) CreateContext(desc ContextDescriptor) (*Context, error) {
	createContextMu.Lock()
	defer createContextMu.Unlock()

	config := d.fbConfigFromID(desc.fbConfigID)
	attribs := []int32{
		glxapi.CONTEXT_MAJOR_VERSION_ARB, int32(desc.glVersion.Major),
		glxapi.CONTEXT_MINOR_VERSION_ARB, int32(desc.glVersion.Minor),
		0,
	}
	handle := d.api.GLX.CreateContextAttribsARB(d.display(), config, 0, glxapi.True, &attribs[0])
	if handle == 0 {
		return nil, fmt.Errorf("%w: glXCreateContextAttribsARB returned a null handle", surfman.ErrContextCreationFailed)
	}

	glxPixmap, xPixmap, err := d.createPixmaps(config, image.Pt(dummyPixmapSize, dummyPixmapSize))
	if err != nil {
		d.api.GLX.DestroyContext(d.display(), handle)
		return nil, err
	}

	ctx := &Context{
		native:         nativeContext{handle: handle, owned: true},
		id:             nextContextID,
		glVersion:      desc.glVersion,
		dummyGLXPixmap: glxPixmap,
		dummyPixmap:    xPixmap,
	}
	nextContextID++
	armDestroyCheck(ctx)

	surfman.Logger().Info("glx: context created",
		"id", uint64(ctx.id), "version", desc.glVersion.String())
	return ctx, nil
}

// FromCurrentContext wraps the GLX context current on the calling thread
// (for example, one created by a host embedding this library) in a Device
// and Context.
//
// The native context is not retained; the caller must keep it and its
// display alive for the lifetime of the returned Context. The context's
// real render target is opaque to surfman, so surface operations on it
// fail with surfman.ErrExternalRenderTarget, and DestroyContext releases
// only surfman's own bookkeeping, never the native context.
func FromCurrentContext() (*Device, *Context, error) {
	api, err := glxapi.Load()
	if err != nil {
		return nil, nil, err
	}
	return fromCurrentContext(api)
}

func fromCurrentContext(api *glxapi.API) (*Device, *Context, error) {
	createContextMu.Lock()
	defer createContextMu.Unlock()

	display := api.GLX.GetCurrentDisplay()
	if display == 0 {
		return nil, nil, surfman.ErrNoCurrentContext
	}
	handle := api.GLX.GetCurrentContext()
	if handle == 0 {
		return nil, nil, surfman.ErrNoCurrentContext
	}

	device := &Device{conn: adoptConnection(api, display), api: api}

	var major, minor int32
	api.GL.GetIntegerv(glxapi.MAJOR_VERSION, &major)
	api.GL.GetIntegerv(glxapi.MINOR_VERSION, &minor)

	var fbConfigID int32
	if st := api.GLX.QueryContext(display, handle, glxapi.FBCONFIG_ID, &fbConfigID); st != glxapi.Success {
		panic(fmt.Sprintf("glx: glXQueryContext(FBCONFIG_ID) failed with status %d", st))
	}
	config := device.fbConfigFromID(uintptr(fbConfigID))

	glxPixmap, xPixmap, err := device.createPixmaps(config, image.Pt(dummyPixmapSize, dummyPixmapSize))
	if err != nil {
		return nil, nil, err
	}

	ctx := &Context{
		native:         nativeContext{handle: handle, owned: false},
		id:             nextContextID,
		fb:             framebuffer{kind: fbExternal},
		glVersion:      surfman.GLVersion{Major: uint8(major), Minor: uint8(minor)},
		dummyGLXPixmap: glxPixmap,
		dummyPixmap:    xPixmap,
	}
	nextContextID++
	armDestroyCheck(ctx)

	surfman.Logger().Info("glx: adopted current context",
		"id", uint64(ctx.id), "version", ctx.glVersion.String())
	return device, ctx, nil
}

// DestroyContext destroys a context, any surface still bound to it, and
// its scratch drawable. This is the only sanctioned way to release a
// Context; it is idempotent, and a second call performs no native work.
func (d *Device) DestroyContext(ctx *Context) error {
	if ctx.native.destroyed {
		return nil
	}

	if ctx.fb.kind == fbBound {
		surface := ctx.fb.surface
		ctx.fb = framebuffer{}
		if err := d.DestroySurface(ctx, surface); err != nil {
			return err
		}
	}

	d.api.GLX.DestroyPixmap(d.display(), ctx.dummyGLXPixmap)
	ctx.dummyGLXPixmap = 0
	d.api.X.FreePixmap(d.display(), ctx.dummyPixmap)
	ctx.dummyPixmap = 0

	if ctx.native.owned {
		// Detach first: destroying the current context leaves it alive
		// until it stops being current.
		d.api.GLX.MakeCurrent(d.display(), 0, 0)
		d.api.GLX.DestroyContext(d.display(), ctx.native.handle)
	}
	ctx.native.handle = 0
	ctx.native.destroyed = true
	disarmDestroyCheck(ctx)

	surfman.Logger().Info("glx: context destroyed", "id", uint64(ctx.id))
	return nil
}

// ContextID returns the process-unique identity of the context.
func (d *Device) ContextID(ctx *Context) surfman.ContextID { return ctx.id }

// ContextDescriptor reconstructs the descriptor a live context was
// created from. Pure read; no side effects.
func (d *Device) ContextDescriptor(ctx *Context) ContextDescriptor {
	var fbConfigID int32
	if st := d.api.GLX.QueryContext(d.display(), ctx.native.handle, glxapi.FBCONFIG_ID, &fbConfigID); st != glxapi.Success {
		panic(fmt.Sprintf("glx: glXQueryContext(FBCONFIG_ID) failed with status %d", st))
	}
	return ContextDescriptor{fbConfigID: uintptr(fbConfigID), glVersion: ctx.glVersion}
}

// MakeContextCurrent makes the context current on the calling thread,
// targeting the bound surface's drawable, or the scratch drawable when no
// surface is bound. Callers should pin the goroutine with
// runtime.LockOSThread for as long as the context stays current.
func (d *Device) MakeContextCurrent(ctx *Context) error {
	var drawable uintptr
	switch ctx.fb.kind {
	case fbBound:
		drawable = ctx.fb.surface.glxDrawable()
	case fbUnbound:
		drawable = ctx.dummyGLXPixmap
	case fbExternal:
		// The adopted context renders to a target surfman knows nothing
		// about; it must never be replaced.
		return surfman.ErrExternalRenderTarget
	}

	if d.api.GLX.MakeCurrent(d.display(), drawable, ctx.native.handle) == glxapi.False {
		return fmt.Errorf("%w: glXMakeCurrent reported failure", surfman.ErrMakeCurrentFailed)
	}
	return nil
}

// MakeNoContextCurrent detaches the calling thread's current context.
func (d *Device) MakeNoContextCurrent() error {
	if d.api.GLX.MakeCurrent(d.display(), 0, 0) == glxapi.False {
		return fmt.Errorf("%w: glXMakeCurrent(None) reported failure", surfman.ErrMakeCurrentFailed)
	}
	return nil
}

// BindSurfaceToContext attaches a surface to a context with no surface
// bound. The surface must have been created for this exact context. On
// failure the binding state is unchanged.
func (d *Device) BindSurfaceToContext(ctx *Context, s *Surface) error {
	if s.contextID != ctx.id {
		return surfman.ErrIncompatibleSurface
	}

	switch ctx.fb.kind {
	case fbUnbound:
		ctx.fb = framebuffer{kind: fbBound, surface: s}
		return nil
	case fbExternal:
		return surfman.ErrExternalRenderTarget
	default:
		return surfman.ErrSurfaceAlreadyBound
	}
}

// UnbindSurfaceFromContext detaches and returns the bound surface,
// transferring ownership back to the caller. Returns nil if nothing was
// bound. Pending rendering on the surface is flushed best-effort first;
// a flush failure does not prevent unbinding.
func (d *Device) UnbindSurfaceFromContext(ctx *Context) (*Surface, error) {
	if err := d.flushBoundSurface(ctx); err != nil {
		surfman.Logger().Warn("glx: flush before unbind failed", "error", err)
	}

	switch ctx.fb.kind {
	case fbBound:
		s := ctx.fb.surface
		ctx.fb = framebuffer{}
		return s, nil
	case fbExternal:
		return nil, surfman.ErrExternalRenderTarget
	default:
		return nil, nil
	}
}

// flushBoundSurface pushes pending rendering on the bound surface to its
// drawable. Pixmap surfaces need an explicit flush and buffer swap;
// window surfaces are presented by the windowing system. No-op when
// nothing is bound.
func (d *Device) flushBoundSurface(ctx *Context) error {
	if ctx.fb.kind != fbBound {
		return nil
	}
	if err := d.MakeContextCurrent(ctx); err != nil {
		return err
	}
	s := ctx.fb.surface
	if s.window == 0 {
		d.api.GL.Flush()
		d.api.GLX.SwapBuffers(d.display(), s.glxPixmap)
	}
	return nil
}

// ContextSurfaceInfo describes the surface bound to the context, or nil
// if none is bound.
func (d *Device) ContextSurfaceInfo(ctx *Context) (*surfman.SurfaceInfo, error) {
	switch ctx.fb.kind {
	case fbBound:
		info := d.SurfaceInfo(ctx.fb.surface)
		return &info, nil
	case fbExternal:
		return nil, surfman.ErrExternalRenderTarget
	default:
		return nil, nil
	}
}
