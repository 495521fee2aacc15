// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glx

import (
	"sort"
	"sync"
	"unsafe"

	"github.com/gogpu/surfman/internal/glxapi"
)

// fakeConfig models one native framebuffer config.
type fakeConfig struct {
	id    int32
	attrs map[int32]int32
	depth int32 // X visual depth
}

// fakeNative simulates the GLX/Xlib layer behind a glxapi.API, so the
// full context lifecycle can be exercised without an X server or GPU.
type fakeNative struct {
	mu sync.Mutex

	api     *glxapi.API
	display uintptr
	configs []*fakeConfig
	handles uintptr

	contexts   map[uintptr]int32   // live context handle -> config id
	xPixmaps   map[uintptr]bool    // live X pixmaps
	glxPixmaps map[uintptr]uintptr // live GLX pixmap -> backing X pixmap

	currentDisplay  uintptr
	currentCtx      uintptr
	currentDrawable uintptr

	makeCurrentCalls    int
	destroyContextCalls int
	flushCalls          int
	swapCalls           int
	closeDisplayCalls   int

	failMakeCurrent  bool
	glMajor, glMinor int32

	// Backing storage kept alive while callers hold raw "native" pointers.
	configArrays [][]uintptr
	visuals      []*glxapi.VisualInfo
}

// newFakeNative builds a fake with the eight alpha/depth/stencil config
// combinations a real GLX implementation would typically offer.
func newFakeNative() *fakeNative {
	f := &fakeNative{
		display:    0xD15,
		handles:    0x1000,
		contexts:   make(map[uintptr]int32),
		xPixmaps:   make(map[uintptr]bool),
		glxPixmaps: make(map[uintptr]uintptr),
		glMajor:    4,
		glMinor:    6,
	}

	id := int32(1)
	for _, alpha := range []int32{0, 8} {
		for _, depth := range []int32{0, 24} {
			for _, stencil := range []int32{0, 8} {
				visualDepth := int32(24)
				if alpha != 0 {
					visualDepth = 32
				}
				f.configs = append(f.configs, &fakeConfig{
					id:    id,
					depth: visualDepth,
					attrs: map[int32]int32{
						glxapi.RED_SIZE:      8,
						glxapi.GREEN_SIZE:    8,
						glxapi.BLUE_SIZE:     8,
						glxapi.ALPHA_SIZE:    alpha,
						glxapi.DEPTH_SIZE:    depth,
						glxapi.STENCIL_SIZE:  stencil,
						glxapi.DOUBLEBUFFER:  1,
						glxapi.STEREO:        0,
						glxapi.X_RENDERABLE:  1,
						glxapi.X_VISUAL_TYPE: glxapi.TRUE_COLOR,
						glxapi.DRAWABLE_TYPE: glxapi.PIXMAP_BIT | glxapi.WINDOW_BIT,
						glxapi.RENDER_TYPE:   glxapi.RGBA_BIT,
						glxapi.FBCONFIG_ID:   id,
					},
				})
				id++
			}
		}
	}

	f.api = &glxapi.API{
		GLX: glxapi.GLX{
			ChooseFBConfig:          f.chooseFBConfig,
			GetFBConfigs:            f.getFBConfigs,
			GetFBConfigAttrib:       f.getFBConfigAttrib,
			GetVisualFromFBConfig:   f.getVisualFromFBConfig,
			CreateContextAttribsARB: f.createContextAttribsARB,
			DestroyContext:          f.destroyContext,
			MakeCurrent:             f.makeCurrent,
			GetCurrentDisplay:       func() uintptr { return f.currentDisplay },
			GetCurrentContext:       func() uintptr { return f.currentCtx },
			QueryContext:            f.queryContext,
			CreatePixmap:            f.createGLXPixmap,
			DestroyPixmap:           f.destroyGLXPixmap,
			SwapBuffers:             f.swapBuffers,
			GetProcAddress:          func(name string) uintptr { return 0 },
		},
		GL: glxapi.GL{
			GetIntegerv: f.getIntegerv,
			Flush:       f.flush,
		},
		X: glxapi.Xlib{
			OpenDisplay:   func(name string) uintptr { return f.display },
			CloseDisplay:  f.closeDisplay,
			DefaultScreen: func(display uintptr) int32 { return 0 },
			RootWindow:    func(display uintptr, screen int32) uintptr { return 0x99 },
			CreatePixmap:  f.createXPixmap,
			FreePixmap:    f.freeXPixmap,
			Free:          func(data uintptr) int32 { return 1 },
		},
	}
	return f
}

// newFakeDevice returns a Device wired to the fake native layer.
func newFakeDevice(f *fakeNative) *Device {
	d, err := NewDevice(adoptConnection(f.api, f.display))
	if err != nil {
		panic(err)
	}
	return d
}

// setCurrent registers a live "external" context using the config with
// the given id and makes it the thread's current context.
func (f *fakeNative) setCurrent(configID int32) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle := f.next()
	f.contexts[handle] = configID
	f.currentDisplay = f.display
	f.currentCtx = handle
	return handle
}

// next returns a fresh native handle. Callers hold f.mu.
func (f *fakeNative) next() uintptr {
	f.handles++
	return f.handles
}

// readAttribList parses a zero-terminated key/value attribute list.
func readAttribList(p *int32) map[int32]int32 {
	attrs := make(map[int32]int32)
	for *p != 0 {
		key := *p
		p = (*int32)(unsafe.Add(unsafe.Pointer(p), unsafe.Sizeof(int32(0))))
		val := *p
		p = (*int32)(unsafe.Add(unsafe.Pointer(p), unsafe.Sizeof(int32(0))))
		attrs[key] = val
	}
	return attrs
}

func (c *fakeConfig) matches(req map[int32]int32) bool {
	for key, want := range req {
		got, known := c.attrs[key]
		switch key {
		case glxapi.RED_SIZE, glxapi.GREEN_SIZE, glxapi.BLUE_SIZE,
			glxapi.ALPHA_SIZE, glxapi.DEPTH_SIZE, glxapi.STENCIL_SIZE:
			// Sizes are minimums.
			if got < want {
				return false
			}
		case glxapi.DRAWABLE_TYPE, glxapi.RENDER_TYPE:
			// Bit masks.
			if got&want != want {
				return false
			}
		case glxapi.DOUBLEBUFFER, glxapi.STEREO, glxapi.X_RENDERABLE, glxapi.X_VISUAL_TYPE:
			if known && got != want {
				return false
			}
		default:
			// Extension attributes the fake does not model are satisfied.
		}
	}
	return true
}

// score orders matching configs the way GLX does for our purposes:
// when a size of zero was requested, configs with smaller actual sizes
// are preferred.
func (c *fakeConfig) score(req map[int32]int32) int32 {
	var s int32
	for _, key := range []int32{glxapi.ALPHA_SIZE, glxapi.DEPTH_SIZE, glxapi.STENCIL_SIZE} {
		if req[key] == 0 {
			s += c.attrs[key]
		}
	}
	return s
}

func (f *fakeNative) configHandle(c *fakeConfig) uintptr {
	// Config handles are stable small values derived from the id.
	return uintptr(0xC0000) + uintptr(c.id)
}

func (f *fakeNative) configByHandle(handle uintptr) *fakeConfig {
	for _, c := range f.configs {
		if f.configHandle(c) == handle {
			return c
		}
	}
	return nil
}

// pinConfigArray stores a config handle slice and returns a raw pointer
// to its first element, emulating a native-allocated array.
func (f *fakeNative) pinConfigArray(arr []uintptr) uintptr {
	f.configArrays = append(f.configArrays, arr)
	return uintptr(unsafe.Pointer(&arr[0]))
}

func (f *fakeNative) chooseFBConfig(display uintptr, screen int32, attribs *int32, nitems *int32) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()

	req := readAttribList(attribs)
	var matches []*fakeConfig
	for _, c := range f.configs {
		if c.matches(req) {
			matches = append(matches, c)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score(req) < matches[j].score(req)
	})

	*nitems = int32(len(matches))
	if len(matches) == 0 {
		return 0
	}
	arr := make([]uintptr, len(matches))
	for i, c := range matches {
		arr[i] = f.configHandle(c)
	}
	return f.pinConfigArray(arr)
}

func (f *fakeNative) getFBConfigs(display uintptr, screen int32, nelements *int32) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()

	arr := make([]uintptr, len(f.configs))
	for i, c := range f.configs {
		arr[i] = f.configHandle(c)
	}
	*nelements = int32(len(arr))
	return f.pinConfigArray(arr)
}

func (f *fakeNative) getFBConfigAttrib(display uintptr, config uintptr, attribute int32, value *int32) int32 {
	c := f.configByHandle(config)
	if c == nil {
		return 1 // GLXBadFBConfig
	}
	*value = c.attrs[attribute]
	return glxapi.Success
}

func (f *fakeNative) getVisualFromFBConfig(display uintptr, config uintptr) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.configByHandle(config)
	if c == nil {
		return 0
	}
	vi := &glxapi.VisualInfo{Depth: c.depth}
	f.visuals = append(f.visuals, vi)
	return uintptr(unsafe.Pointer(vi))
}

func (f *fakeNative) createContextAttribsARB(display uintptr, config uintptr, shareContext uintptr, direct int32, attribs *int32) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.configByHandle(config)
	if c == nil {
		return 0
	}
	handle := f.next()
	f.contexts[handle] = c.id
	return handle
}

func (f *fakeNative) destroyContext(display uintptr, ctx uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.contexts, ctx)
	f.destroyContextCalls++
}

func (f *fakeNative) makeCurrent(display uintptr, drawable uintptr, ctx uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.makeCurrentCalls++
	if f.failMakeCurrent {
		return glxapi.False
	}
	f.currentDisplay = display
	f.currentDrawable = drawable
	f.currentCtx = ctx
	return glxapi.True
}

func (f *fakeNative) queryContext(display uintptr, ctx uintptr, attribute int32, value *int32) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.contexts[ctx]
	if !ok || attribute != glxapi.FBCONFIG_ID {
		return 1 // GLXBadContext
	}
	*value = id
	return glxapi.Success
}

func (f *fakeNative) createGLXPixmap(display uintptr, config uintptr, pixmap uintptr, attribs *int32) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.configByHandle(config) == nil || !f.xPixmaps[pixmap] {
		return 0
	}
	handle := f.next()
	f.glxPixmaps[handle] = pixmap
	return handle
}

func (f *fakeNative) destroyGLXPixmap(display uintptr, pixmap uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.glxPixmaps, pixmap)
}

func (f *fakeNative) swapBuffers(display uintptr, drawable uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swapCalls++
}

func (f *fakeNative) getIntegerv(pname uint32, data *int32) {
	switch pname {
	case glxapi.MAJOR_VERSION:
		*data = f.glMajor
	case glxapi.MINOR_VERSION:
		*data = f.glMinor
	}
}

func (f *fakeNative) flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCalls++
}

func (f *fakeNative) closeDisplay(display uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeDisplayCalls++
	return 0
}

func (f *fakeNative) createXPixmap(display uintptr, drawable uintptr, width, height uint32, depth uint32) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle := f.next()
	f.xPixmaps[handle] = true
	return handle
}

func (f *fakeNative) freeXPixmap(display uintptr, pixmap uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.xPixmaps, pixmap)
	return 1
}
