// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glx

import (
	"fmt"
	"os"

	"github.com/gogpu/surfman"
	"github.com/gogpu/surfman/internal/glxapi"
)

// BackendName is the name this backend registers under.
const BackendName = "glx"

func init() {
	surfman.Register(BackendName, 100, func() (surfman.Connection, error) {
		return NewConnection()
	}, available)
}

// available reports whether an X server is reachable. The native
// libraries are only probed when a connection is actually opened.
func available() bool {
	return os.Getenv("DISPLAY") != ""
}

// Connection is a live connection to an X server. It owns the native
// display unless it was adopted from a context created elsewhere, in
// which case the display's lifetime belongs to the caller.
type Connection struct {
	api     *glxapi.API
	display uintptr
	owned   bool
	closed  bool
}

// ConnectionOption configures a Connection during creation.
type ConnectionOption func(*connectionOptions)

type connectionOptions struct {
	displayName string
}

// WithDisplayName selects an explicit X display (e.g. ":1") instead of
// the DISPLAY environment variable.
func WithDisplayName(name string) ConnectionOption {
	return func(o *connectionOptions) {
		o.displayName = name
	}
}

// NewConnection opens a connection to the X server.
func NewConnection(opts ...ConnectionOption) (*Connection, error) {
	var o connectionOptions
	for _, opt := range opts {
		opt(&o)
	}

	api, err := glxapi.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", surfman.ErrConnectionFailed, err)
	}

	display := api.X.OpenDisplay(o.displayName)
	if display == 0 {
		return nil, fmt.Errorf("%w: cannot open X display %q", surfman.ErrConnectionFailed, o.displayName)
	}

	surfman.Logger().Info("glx: connection opened", "display", o.displayName)
	return &Connection{api: api, display: display, owned: true}, nil
}

// adoptConnection wraps a display owned elsewhere. Close never closes an
// adopted display; the caller must keep it alive for the lifetime of any
// device built on it.
func adoptConnection(api *glxapi.API, display uintptr) *Connection {
	return &Connection{api: api, display: display}
}

// Backend returns the backend name, "glx".
func (c *Connection) Backend() string { return BackendName }

// NativeDisplay returns the native X display handle.
func (c *Connection) NativeDisplay() uintptr { return c.display }

// Close releases the connection. Close is idempotent; adopted displays
// are left open.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.owned {
		c.api.X.CloseDisplay(c.display)
		surfman.Logger().Info("glx: connection closed")
	}
	return nil
}

var _ surfman.Connection = (*Connection)(nil)
