// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glx

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/surfman"
	"github.com/gogpu/surfman/internal/glxapi"
)

// Device provides access to GLX contexts and surfaces on a Connection.
//
// A Device carries the resolved native function tables and threads them
// into every native call; it holds no other mutable state. Methods that
// operate on a Context require the caller to arrange exclusive access to
// that Context.
type Device struct {
	conn *Connection
	api  *glxapi.API
}

// NewDevice creates a device on an open connection. The connection must
// remain valid for the lifetime of the device.
func NewDevice(conn *Connection) (*Device, error) {
	if conn == nil {
		return nil, errors.New("glx: nil connection")
	}
	return &Device{conn: conn, api: conn.api}, nil
}

// Connection returns the connection the device was built on.
func (d *Device) Connection() *Connection { return d.conn }

// GetProcAddress resolves a GL or GLX entry point by name, for callers
// that load their own GL function bindings against a context created by
// this device.
func (d *Device) GetProcAddress(name string) uintptr {
	return d.api.GLX.GetProcAddress(name)
}

func (d *Device) display() uintptr { return d.conn.display }

// getConfigAttr reads a single attribute of a framebuffer config. A
// well-formed config answers every attribute query; failure here means
// the driver state is corrupt, which is outside the error model.
func (d *Device) getConfigAttr(config uintptr, attr int32) int32 {
	var value int32
	if st := d.api.GLX.GetFBConfigAttrib(d.display(), config, attr, &value); st != glxapi.Success {
		panic(fmt.Sprintf("glx: glXGetFBConfigAttrib(0x%x) failed with status %d", attr, st))
	}
	return value
}

// chooseFBConfigID queries the native layer for configs satisfying the
// zero-terminated attribute list and returns the config id of the first
// match. Native ordering is accepted as authoritative.
func (d *Device) chooseFBConfigID(attribs []int32) (uintptr, error) {
	screen := d.api.X.DefaultScreen(d.display())
	var count int32
	configs := d.api.GLX.ChooseFBConfig(d.display(), screen, &attribs[0], &count)
	if configs == 0 || count == 0 {
		return 0, surfman.ErrNoMatchingConfig
	}
	config := *(*uintptr)(unsafe.Pointer(configs))
	d.api.X.Free(configs)
	return uintptr(d.getConfigAttr(config, glxapi.FBCONFIG_ID)), nil
}

// fbConfigFromID scans all configs on the screen for the one with the
// given id. Linear, but config counts are small in practice.
func (d *Device) fbConfigFromID(id uintptr) uintptr {
	screen := d.api.X.DefaultScreen(d.display())
	var count int32
	configs := d.api.GLX.GetFBConfigs(d.display(), screen, &count)
	if configs == 0 || count == 0 {
		panic("glx: glXGetFBConfigs returned no framebuffer configs")
	}
	defer d.api.X.Free(configs)

	for _, config := range unsafe.Slice((*uintptr)(unsafe.Pointer(configs)), int(count)) {
		if uintptr(d.getConfigAttr(config, glxapi.FBCONFIG_ID)) == id {
			return config
		}
	}
	panic(fmt.Sprintf("glx: framebuffer config with id 0x%x not found", id))
}

// contextFBConfig resolves the framebuffer config a live context was
// created from.
func (d *Device) contextFBConfig(ctx *Context) uintptr {
	var id int32
	if st := d.api.GLX.QueryContext(d.display(), ctx.native.handle, glxapi.FBCONFIG_ID, &id); st != glxapi.Success {
		panic(fmt.Sprintf("glx: glXQueryContext(FBCONFIG_ID) failed with status %d", st))
	}
	return d.fbConfigFromID(uintptr(id))
}
