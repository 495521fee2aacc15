// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surfman

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// GLVersion identifies an OpenGL version as a major/minor pair.
type GLVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version in "major.minor" form.
func (v GLVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ContextAttributeFlags selects optional framebuffer channels for a
// rendering context. The flags request presence only; the backend picks
// the concrete bit depths.
type ContextAttributeFlags uint8

const (
	// AttrAlpha requests an alpha channel.
	AttrAlpha ContextAttributeFlags = 1 << iota

	// AttrDepth requests a depth buffer.
	AttrDepth

	// AttrStencil requests a stencil buffer.
	AttrStencil
)

// Has reports whether all bits in flag are set.
func (f ContextAttributeFlags) Has(flag ContextAttributeFlags) bool {
	return f&flag == flag
}

// ContextAttributes describes a requested rendering context: which
// optional channels it needs and which GL version it targets.
// Passed by value; no hidden state.
type ContextAttributes struct {
	Flags   ContextAttributeFlags
	Version GLVersion
}

// ContextID is a process-unique context identity. IDs are assigned
// monotonically under a single process-wide lock and never reused.
type ContextID uint64

// SurfaceID identifies a surface by its native drawable handle.
type SurfaceID uintptr

// SurfaceInfo is a snapshot of a surface's observable properties.
type SurfaceInfo struct {
	// Size is the surface extent in pixels.
	Size image.Point

	// ID is the surface's native drawable identity.
	ID SurfaceID

	// ContextID identifies the context the surface was created for.
	// Binding the surface to any other context fails.
	ContextID ContextID

	// Format is the pixel layout of the surface's backing store.
	Format gputypes.TextureFormat
}
