// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glx

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/surfman"
	"github.com/gogpu/surfman/internal/glxapi"
)

// Surface is a drawable a context renders into: either an off-screen
// X pixmap wrapped in a GLX pixmap, or an on-screen X window owned by the
// caller. A surface carries the identity of the context it was created
// for and can only be bound to that context.
type Surface struct {
	size      image.Point
	contextID surfman.ContextID
	format    gputypes.TextureFormat

	// Pixmap surfaces own both handles; window surfaces only record the
	// caller's window and own nothing native.
	glxPixmap uintptr
	pixmap    uintptr
	window    uintptr
}

// ID returns the surface's native drawable identity.
func (s *Surface) ID() surfman.SurfaceID {
	if s.window != 0 {
		return surfman.SurfaceID(s.window)
	}
	return surfman.SurfaceID(s.glxPixmap)
}

// Size returns the surface extent in pixels.
func (s *Surface) Size() image.Point { return s.size }

// glxDrawable returns the handle to pass to glXMakeCurrent.
func (s *Surface) glxDrawable() uintptr {
	if s.window != 0 {
		return s.window
	}
	return s.glxPixmap
}

// CreateSurface creates an off-screen surface for the context: an X
// pixmap at the context config's visual depth, wrapped in a GLX pixmap.
func (d *Device) CreateSurface(ctx *Context, size image.Point) (*Surface, error) {
	config := d.contextFBConfig(ctx)
	glxPixmap, xPixmap, err := d.createPixmaps(config, size)
	if err != nil {
		return nil, err
	}

	s := &Surface{
		size:      size,
		contextID: ctx.id,
		format:    surfaceFormat(d.getConfigAttr(config, glxapi.ALPHA_SIZE)),
		glxPixmap: glxPixmap,
		pixmap:    xPixmap,
	}
	surfman.Logger().Debug("glx: surface created",
		"context", uint64(ctx.id), "drawable", glxPixmap, "size", size.String())
	return s, nil
}

// CreateSurfaceFromWindow creates an on-screen surface wrapping an X
// window owned by the caller. The window must outlive the surface and
// must have been created with a visual compatible with the context's
// config.
func (d *Device) CreateSurfaceFromWindow(ctx *Context, window uintptr, size image.Point) (*Surface, error) {
	if window == 0 {
		return nil, fmt.Errorf("%w: window handle is nil", surfman.ErrSurfaceCreationFailed)
	}
	config := d.contextFBConfig(ctx)
	return &Surface{
		size:      size,
		contextID: ctx.id,
		format:    surfaceFormat(d.getConfigAttr(config, glxapi.ALPHA_SIZE)),
		window:    window,
	}, nil
}

// DestroySurface releases the surface's native drawables. The surface
// must belong to the given context and must not be bound to it (unbind
// first, or let DestroyContext tear both down). Window surfaces own
// nothing native, so only the record is cleared.
func (d *Device) DestroySurface(ctx *Context, s *Surface) error {
	if s.contextID != ctx.id {
		return surfman.ErrIncompatibleSurface
	}

	if s.glxPixmap != 0 {
		d.api.GLX.DestroyPixmap(d.display(), s.glxPixmap)
		s.glxPixmap = 0
	}
	if s.pixmap != 0 {
		d.api.X.FreePixmap(d.display(), s.pixmap)
		s.pixmap = 0
	}
	s.window = 0
	return nil
}

// SurfaceInfo returns a snapshot of the surface's observable properties.
func (d *Device) SurfaceInfo(s *Surface) surfman.SurfaceInfo {
	return surfman.SurfaceInfo{
		Size:      s.size,
		ID:        s.ID(),
		ContextID: s.contextID,
		Format:    s.format,
	}
}

// surfaceFormat maps a config's alpha size to the pixel layout of the
// backing store. X true-color drawables store pixels BGRA on little-endian
// servers; without alpha the X channel is undefined and the closest wgpu
// format is the opaque RGBA8 layout.
func surfaceFormat(alphaSize int32) gputypes.TextureFormat {
	if alphaSize != 0 {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}

// createPixmaps allocates the X pixmap / GLX pixmap pair backing an
// off-screen drawable for the given config.
func (d *Device) createPixmaps(config uintptr, size image.Point) (glxPixmap, xPixmap uintptr, err error) {
	visualPtr := d.api.GLX.GetVisualFromFBConfig(d.display(), config)
	if visualPtr == 0 {
		return 0, 0, fmt.Errorf("%w: framebuffer config has no X visual", surfman.ErrSurfaceCreationFailed)
	}
	depth := uint32((*glxapi.VisualInfo)(unsafe.Pointer(visualPtr)).Depth)
	d.api.X.Free(visualPtr)

	screen := d.api.X.DefaultScreen(d.display())
	root := d.api.X.RootWindow(d.display(), screen)

	xPixmap = d.api.X.CreatePixmap(d.display(), root, uint32(size.X), uint32(size.Y), depth)
	if xPixmap == 0 {
		return 0, 0, fmt.Errorf("%w: XCreatePixmap failed", surfman.ErrSurfaceCreationFailed)
	}
	glxPixmap = d.api.GLX.CreatePixmap(d.display(), config, xPixmap, nil)
	if glxPixmap == 0 {
		d.api.X.FreePixmap(d.display(), xPixmap)
		return 0, 0, fmt.Errorf("%w: glXCreatePixmap failed", surfman.ErrSurfaceCreationFailed)
	}
	return glxPixmap, xPixmap, nil
}
