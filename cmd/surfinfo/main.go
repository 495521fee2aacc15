// Command surfinfo opens a GLX connection, creates a rendering context
// with the requested attributes, and prints what the driver actually
// provided. Useful for checking what a machine's GLX stack supports.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/gogpu/surfman"
	"github.com/gogpu/surfman/glx"
)

func main() {
	var (
		alpha   = flag.Bool("alpha", true, "request an alpha channel")
		depth   = flag.Bool("depth", true, "request a depth buffer")
		stencil = flag.Bool("stencil", false, "request a stencil buffer")
		major   = flag.Int("glmajor", 3, "GL major version")
		minor   = flag.Int("glminor", 2, "GL minor version")
		size    = flag.Int("size", 256, "off-screen surface extent")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		surfman.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	// GLX contexts are bound to the OS thread they are current on.
	runtime.LockOSThread()

	conn, err := glx.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	device, err := glx.NewDevice(conn)
	if err != nil {
		log.Fatalf("Failed to create device: %v", err)
	}

	var flags surfman.ContextAttributeFlags
	if *alpha {
		flags |= surfman.AttrAlpha
	}
	if *depth {
		flags |= surfman.AttrDepth
	}
	if *stencil {
		flags |= surfman.AttrStencil
	}

	desc, err := device.CreateContextDescriptor(surfman.ContextAttributes{
		Flags:   flags,
		Version: surfman.GLVersion{Major: uint8(*major), Minor: uint8(*minor)},
	})
	if err != nil {
		log.Fatalf("No matching framebuffer config: %v", err)
	}

	got := device.ContextDescriptorAttributes(desc)
	fmt.Printf("GL version:  %s\n", got.Version)
	fmt.Printf("alpha:       %v\n", got.Flags.Has(surfman.AttrAlpha))
	fmt.Printf("depth:       %v\n", got.Flags.Has(surfman.AttrDepth))
	fmt.Printf("stencil:     %v\n", got.Flags.Has(surfman.AttrStencil))

	ctx, err := device.CreateContext(desc)
	if err != nil {
		log.Fatalf("Failed to create context: %v", err)
	}
	defer func() {
		if err := device.DestroyContext(ctx); err != nil {
			log.Printf("Failed to destroy context: %v", err)
		}
	}()

	surface, err := device.CreateSurface(ctx, image.Pt(*size, *size))
	if err != nil {
		log.Fatalf("Failed to create surface: %v", err)
	}
	if err := device.BindSurfaceToContext(ctx, surface); err != nil {
		log.Fatalf("Failed to bind surface: %v", err)
	}

	if err := device.MakeContextCurrent(ctx); err != nil {
		log.Fatalf("Failed to make context current: %v", err)
	}

	info, err := device.ContextSurfaceInfo(ctx)
	if err != nil {
		log.Fatalf("Failed to query surface: %v", err)
	}
	fmt.Printf("context id:  %d\n", info.ContextID)
	fmt.Printf("surface:     %dx%d drawable %#x format %v\n",
		info.Size.X, info.Size.Y, uintptr(info.ID), info.Format)

	if err := device.MakeNoContextCurrent(); err != nil {
		log.Printf("Failed to release context: %v", err)
	}
}
