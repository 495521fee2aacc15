// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surfman

import "errors"

// Errors returned by surfman backends. All are returned to the immediate
// caller; nothing is retried internally. Native failure detail is wrapped
// around these sentinels, so match with errors.Is.
var (
	// ErrNoMatchingConfig indicates that no native pixel format satisfies
	// the requested context attributes.
	ErrNoMatchingConfig = errors.New("surfman: no matching framebuffer config")

	// ErrNoCurrentContext indicates that context adoption was attempted
	// with no native context current on the calling thread.
	ErrNoCurrentContext = errors.New("surfman: no current context")

	// ErrContextCreationFailed indicates that the native context creation
	// entry point returned a null handle.
	ErrContextCreationFailed = errors.New("surfman: context creation failed")

	// ErrMakeCurrentFailed indicates that the native make-current call
	// reported failure.
	ErrMakeCurrentFailed = errors.New("surfman: make current failed")

	// ErrIncompatibleSurface indicates a surface/context identity mismatch:
	// the surface was created for a different context.
	ErrIncompatibleSurface = errors.New("surfman: surface is incompatible with context")

	// ErrSurfaceAlreadyBound indicates a bind attempt while another
	// surface is already bound to the context.
	ErrSurfaceAlreadyBound = errors.New("surfman: a surface is already bound to context")

	// ErrExternalRenderTarget indicates an operation that is not permitted
	// on a context adopted from outside the library, whose render target
	// is opaque to surfman.
	ErrExternalRenderTarget = errors.New("surfman: render target belongs to an external context")

	// ErrConnectionFailed indicates that the native display connection
	// could not be opened.
	ErrConnectionFailed = errors.New("surfman: connection failed")

	// ErrSurfaceCreationFailed indicates that a native drawable could not
	// be allocated.
	ErrSurfaceCreationFailed = errors.New("surfman: surface creation failed")
)
