// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux || freebsd

package glxapi

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	loadOnce sync.Once
	loaded   *API
	loadErr  error
)

// Load resolves the native function tables from libGL and libX11.
// Resolution happens once per process and is cached; a missing required
// symbol is a fatal initialization error reported by every call.
func Load() (*API, error) {
	loadOnce.Do(func() { loaded, loadErr = load() })
	return loaded, loadErr
}

func load() (*API, error) {
	libGL, err := dlopenFirst("libGL.so.1", "libGL.so")
	if err != nil {
		return nil, err
	}
	libX11, err := dlopenFirst("libX11.so.6", "libX11.so")
	if err != nil {
		return nil, err
	}

	// Every GL and GLX entry point is resolved through glXGetProcAddress,
	// which also covers extension functions invisible to dlsym.
	gpaAddr, err := purego.Dlsym(libGL, "glXGetProcAddressARB")
	if err != nil || gpaAddr == 0 {
		gpaAddr, err = purego.Dlsym(libGL, "glXGetProcAddress")
		if err != nil {
			return nil, fmt.Errorf("glxapi: glXGetProcAddress: %w", err)
		}
	}
	var getProcAddress func(name string) uintptr
	purego.RegisterFunc(&getProcAddress, gpaAddr)

	api := &API{}
	api.GLX.GetProcAddress = getProcAddress

	var resolveErr error
	gl := func(fptr any, name string) {
		if resolveErr != nil {
			return
		}
		addr := getProcAddress(name)
		if addr == 0 {
			resolveErr = fmt.Errorf("glxapi: missing required symbol %s", name)
			return
		}
		purego.RegisterFunc(fptr, addr)
	}
	x11 := func(fptr any, name string) {
		if resolveErr != nil {
			return
		}
		addr, err := purego.Dlsym(libX11, name)
		if err != nil {
			resolveErr = fmt.Errorf("glxapi: missing required symbol %s: %w", name, err)
			return
		}
		purego.RegisterFunc(fptr, addr)
	}

	gl(&api.GLX.ChooseFBConfig, "glXChooseFBConfig")
	gl(&api.GLX.GetFBConfigs, "glXGetFBConfigs")
	gl(&api.GLX.GetFBConfigAttrib, "glXGetFBConfigAttrib")
	gl(&api.GLX.GetVisualFromFBConfig, "glXGetVisualFromFBConfig")
	gl(&api.GLX.CreateContextAttribsARB, "glXCreateContextAttribsARB")
	gl(&api.GLX.DestroyContext, "glXDestroyContext")
	gl(&api.GLX.MakeCurrent, "glXMakeCurrent")
	gl(&api.GLX.GetCurrentDisplay, "glXGetCurrentDisplay")
	gl(&api.GLX.GetCurrentContext, "glXGetCurrentContext")
	gl(&api.GLX.QueryContext, "glXQueryContext")
	gl(&api.GLX.CreatePixmap, "glXCreatePixmap")
	gl(&api.GLX.DestroyPixmap, "glXDestroyPixmap")
	gl(&api.GLX.SwapBuffers, "glXSwapBuffers")
	gl(&api.GL.GetIntegerv, "glGetIntegerv")
	gl(&api.GL.Flush, "glFlush")

	x11(&api.X.OpenDisplay, "XOpenDisplay")
	x11(&api.X.CloseDisplay, "XCloseDisplay")
	x11(&api.X.DefaultScreen, "XDefaultScreen")
	x11(&api.X.RootWindow, "XRootWindow")
	x11(&api.X.CreatePixmap, "XCreatePixmap")
	x11(&api.X.FreePixmap, "XFreePixmap")
	x11(&api.X.Free, "XFree")

	if resolveErr != nil {
		return nil, resolveErr
	}
	return api, nil
}

func dlopenFirst(names ...string) (uintptr, error) {
	var firstErr error
	for _, name := range names {
		h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return h, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return 0, fmt.Errorf("glxapi: cannot load %s: %w", names[0], firstErr)
}
