package luma

import (
	"errors"
	"image"
	"image/draw"
	"sync/atomic"
)

// Surface is the drawing target handed out by a Canvas: any mutable image
// with pixel get/put. Drawing primitives come from the standard image/draw
// package and golang.org/x/image.
type Surface = draw.Image

// CanvasOpts configures a Canvas.
type CanvasOpts struct {
	// FrameBuffer is the update strategy. Default: DiffToPrevious.
	FrameBuffer FrameBuffer

	// Background pre-fills the surface before each drawing session, for
	// devices whose idle state is not black. Must match the device size.
	Background image.Image

	// Dither enables error-diffusion dithering when reducing to Mono.
	Dither bool
}

// Canvas owns a drawing surface sized to a device and pushes finished
// frames through a FrameBuffer strategy. It is the single render path:
// everything that reaches the device goes through Render, so a failed
// write never leaves a half-committed frame behind.
type Canvas struct {
	dev        Device
	fb         FrameBuffer
	mode       ColorMode
	background image.Image
	dither     bool
	surface    *image.RGBA
	busy       atomic.Bool
}

// NewCanvas creates a Canvas for d. opts can be nil for defaults.
func NewCanvas(d Device, opts *CanvasOpts) (*Canvas, error) {
	if opts == nil {
		opts = &CanvasOpts{}
	}
	bounds := d.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errFrameSize("device bounds", bounds, bounds)
	}

	fb := opts.FrameBuffer
	if fb == nil {
		var err error
		if fb, err = NewDiffToPrevious(d); err != nil {
			return nil, err
		}
	}
	if opts.Background != nil {
		bg := opts.Background.Bounds()
		if bg.Dx() != bounds.Dx() || bg.Dy() != bounds.Dy() {
			return nil, errFrameSize("background", bg, bounds)
		}
	}

	return &Canvas{
		dev:        d,
		fb:         fb,
		mode:       ModeOf(d),
		background: opts.Background,
		dither:     opts.Dither,
		surface:    image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy())),
	}, nil
}

// Bounds returns the device bounds.
func (c *Canvas) Bounds() image.Rectangle {
	return c.dev.Bounds()
}

// Draw runs one drawing session: it hands fn a surface pre-filled with the
// background (black by default) and, if fn returns nil, renders the result
// to the device. When fn fails its error is returned and nothing reaches
// the device. The surface is owned by the Canvas and must not be retained
// after fn returns.
func (c *Canvas) Draw(fn func(Surface) error) error {
	if !c.busy.CompareAndSwap(false, true) {
		return errors.New("luma: canvas: render already in progress")
	}
	defer c.busy.Store(false)

	c.reset()
	if err := fn(c.surface); err != nil {
		return err
	}
	return c.render(c.surface)
}

// Render pushes a finished image through the frame buffer to the device.
// img must match the device size. On a device write failure the frame
// buffer keeps its previous baseline, so the dirty region is retransmitted
// on the next call.
func (c *Canvas) Render(img image.Image) error {
	if !c.busy.CompareAndSwap(false, true) {
		return errors.New("luma: canvas: render already in progress")
	}
	defer c.busy.Store(false)
	return c.render(img)
}

func (c *Canvas) render(img image.Image) error {
	bounds := c.dev.Bounds()
	if b := img.Bounds(); b.Dx() != bounds.Dx() || b.Dy() != bounds.Dy() {
		return errFrameSize("image", b, bounds)
	}

	frame, err := snapshot(img, c.mode, c.dither)
	if err != nil {
		return err
	}
	dirty, err := c.fb.ComputeDirtyRegion(frame)
	if err != nil {
		return err
	}
	if !dirty.Empty() {
		if err := c.dev.Write(dirty, frame.Bytes(dirty)); err != nil {
			return err
		}
	}
	c.fb.Commit(frame)
	return nil
}

func (c *Canvas) reset() {
	if c.background != nil {
		draw.Draw(c.surface, c.surface.Bounds(), c.background, c.background.Bounds().Min, draw.Src)
		return
	}
	draw.Draw(c.surface, c.surface.Bounds(), image.Black, image.Point{}, draw.Src)
}
