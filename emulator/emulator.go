// Package emulator provides pseudo-devices that act like a physical
// display, except that the pixel stream ends up somewhere observable: a
// series of PNG files, an animated GIF, or a live terminal window. They
// implement luma.Device, so any pipeline runs against them unchanged.
package emulator

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/rm-hull/luma.core"
)

// Opts configures an emulated display. The zero value of each field picks
// the default.
type Opts struct {
	// W and H are the panel size in pixels. Default: 128x64.
	W, H int

	// Mode is the wire format accepted by Write. Default: RGB.
	Mode luma.ColorMode

	// Scale is the integer upscaling factor applied to the rendered
	// output, so tiny panels stay legible. Default: 2. Term ignores it.
	Scale int
}

// DefaultOpts is a 128x64 RGB panel rendered at twice its size.
var DefaultOpts = Opts{W: 128, H: 64, Mode: luma.RGB, Scale: 2}

func withDefaults(opts *Opts) Opts {
	o := DefaultOpts
	if opts == nil {
		return o
	}
	if opts.W > 0 {
		o.W = opts.W
	}
	if opts.H > 0 {
		o.H = opts.H
	}
	o.Mode = opts.Mode
	if opts.Scale > 0 {
		o.Scale = opts.Scale
	}
	return o
}

// emulated is the shared core of the pseudo-devices: a shadow frame that
// accumulates writes the way panel RAM would.
type emulated struct {
	opts Opts
	img  *image.RGBA
}

func newEmulated(opts *Opts) emulated {
	o := withDefaults(opts)
	img := image.NewRGBA(image.Rect(0, 0, o.W, o.H))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	return emulated{opts: o, img: img}
}

// Bounds implements luma.Device.
func (e *emulated) Bounds() image.Rectangle {
	return image.Rect(0, 0, e.opts.W, e.opts.H)
}

// ColorMode reports the wire format accepted by Write.
func (e *emulated) ColorMode() luma.ColorMode {
	return e.opts.Mode
}

// apply patches a validated write into the shadow frame.
func (e *emulated) apply(r image.Rectangle, pix []byte) error {
	if r.Empty() || !r.In(e.Bounds()) {
		return fmt.Errorf("emulator: write region %v outside display bounds %v", r, e.Bounds())
	}
	src, err := luma.DecodePixels(e.opts.Mode, r, pix)
	if err != nil {
		return err
	}
	draw.Draw(e.img, r, src, r.Min, draw.Src)
	return nil
}

// scaled returns a copy of the shadow frame upscaled by the configured
// factor.
func (e *emulated) scaled() *image.RGBA {
	if e.opts.Scale <= 1 {
		out := image.NewRGBA(e.img.Bounds())
		copy(out.Pix, e.img.Pix)
		return out
	}
	out := image.NewRGBA(image.Rect(0, 0, e.opts.W*e.opts.Scale, e.opts.H*e.opts.Scale))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), e.img, e.img.Bounds(), xdraw.Src, nil)
	return out
}
