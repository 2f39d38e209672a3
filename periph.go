package luma

import (
	"image"

	"periph.io/x/conn/v3/display"
)

// WrapOpts configures WrapDrawer.
type WrapOpts struct {
	// Mode is the wire format the wrapper advertises. The default, RGB, is
	// always safe because periph drivers convert incoming pixels through
	// their own color model. Passing DetectMode(d.ColorModel()) instead
	// shrinks frames to one byte per pixel on gray and mono panels and
	// turns on dithering in pipelines that ask for it.
	Mode ColorMode

	// Alignment widens dirty regions so column extents land on multiples
	// of n. Controllers that address multiple pixels per data byte need
	// this; for example a four-bit grayscale panel packs two columns per
	// byte and wants 2.
	Alignment int
}

// DrawerDevice adapts a periph.io display driver to the Device interface,
// so hardware registered under periph.io/x/devices can sit at the end of a
// Canvas or Viewport pipeline.
type DrawerDevice struct {
	d     display.Drawer
	rect  image.Rectangle
	mode  ColorMode
	align int
}

// WrapDrawer wraps d. opts can be nil for RGB frames and no alignment.
func WrapDrawer(d display.Drawer, opts *WrapOpts) *DrawerDevice {
	if opts == nil {
		opts = &WrapOpts{}
	}
	b := d.Bounds()
	return &DrawerDevice{
		d:     d,
		rect:  image.Rect(0, 0, b.Dx(), b.Dy()),
		mode:  opts.Mode,
		align: opts.Alignment,
	}
}

// Bounds returns the driver's size with a zero origin.
func (w *DrawerDevice) Bounds() image.Rectangle {
	return w.rect
}

// ColorMode returns the advertised wire format.
func (w *DrawerDevice) ColorMode() ColorMode {
	return w.mode
}

// Alignment returns the advertised dirty-region alignment.
func (w *DrawerDevice) Alignment() int {
	return w.align
}

// Write hands the region to the driver's Draw without copying the pixel
// data.
func (w *DrawerDevice) Write(r image.Rectangle, pix []byte) error {
	src, err := DecodePixels(w.mode, r, pix)
	if err != nil {
		return err
	}
	return w.d.Draw(r, src, r.Min)
}

// Halt turns the underlying display off.
func (w *DrawerDevice) Halt() error {
	return w.d.Halt()
}

func (w *DrawerDevice) String() string {
	return w.d.String()
}
