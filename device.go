package luma

import (
	"image"
	"image/color"

	periphbit "periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/rm-hull/luma.core/image1bit"
)

// ColorMode selects the wire format of pixel data sent to a Device.
//
// The zero value is RGB, the most permissive mode. Pixels are packed
// row-major with no padding between rows:
//
//	RGB:  3 bytes per pixel, R then G then B
//	Gray: 1 byte per pixel, 8-bit luminance
//	Mono: 1 byte per pixel, 0x00 or 0xFF
type ColorMode int

const (
	RGB ColorMode = iota
	Gray
	Mono
)

// BytesPerPixel returns the packed size of one pixel in this mode.
func (m ColorMode) BytesPerPixel() int {
	if m == RGB {
		return 3
	}
	return 1
}

func (m ColorMode) String() string {
	switch m {
	case RGB:
		return "RGB"
	case Gray:
		return "Gray"
	case Mono:
		return "Mono"
	default:
		return "ColorMode(?)"
	}
}

// Device is the output end of the render pipeline: a fixed-size pixel sink
// that accepts partial updates. Bounds has a zero origin. Write receives
// the packed pixels for the rectangle r, laid out row-major in the device's
// color mode. r is always contained in Bounds.
//
// Implementations that fail a Write must leave their own state recoverable;
// the pipeline retransmits the affected region on the next render.
type Device interface {
	Bounds() image.Rectangle
	Write(r image.Rectangle, pix []byte) error
}

// HasColorMode is implemented by devices with a native color mode other
// than RGB.
type HasColorMode interface {
	ColorMode() ColorMode
}

// HasAlignment is implemented by devices whose update rectangles must start
// and end on a multiple of N pixels horizontally, such as controllers that
// address multiple pixels per transfer word.
type HasAlignment interface {
	Alignment() int
}

// ModeOf returns the color mode d expects, defaulting to RGB.
func ModeOf(d Device) ColorMode {
	if m, ok := d.(HasColorMode); ok {
		return m.ColorMode()
	}
	return RGB
}

// AlignmentOf returns the horizontal update alignment d requires,
// defaulting to 1 (no constraint).
func AlignmentOf(d Device) int {
	if a, ok := d.(HasAlignment); ok {
		if n := a.Alignment(); n > 1 {
			return n
		}
	}
	return 1
}

// DetectMode maps a color model to the closest ColorMode. Models that are
// neither grayscale nor 1-bit report RGB.
func DetectMode(m color.Model) ColorMode {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return Gray
	case periphbit.BitModel, image1bit.BitModel:
		return Mono
	default:
		return RGB
	}
}
