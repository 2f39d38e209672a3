package luma

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rm-hull/luma.core/image1bit"
)

// Frame is an immutable snapshot of pixel data in a device color mode.
// Frames are what FrameBuffer strategies compare and what devices receive,
// sliced down to the dirty region.
type Frame struct {
	mode ColorMode
	rect image.Rectangle
	pix  []byte
}

// NewFrame wraps packed pixel data in a Frame. pix must hold exactly
// r.Dx()*r.Dy() pixels in mode's layout; the Frame takes ownership of it.
// The frame is normalized to a zero origin.
func NewFrame(mode ColorMode, r image.Rectangle, pix []byte) (*Frame, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("luma: frame bounds %v are empty: %w", r, ErrInvalidFrame)
	}
	if want := r.Dx() * r.Dy() * mode.BytesPerPixel(); len(pix) != want {
		return nil, fmt.Errorf("luma: frame has %d pixel bytes, %v in %v needs %d: %w",
			len(pix), r, mode, want, ErrInvalidFrame)
	}
	return &Frame{mode: mode, rect: image.Rect(0, 0, r.Dx(), r.Dy()), pix: pix}, nil
}

// Snapshot captures img into a Frame in the given color mode. Mono capture
// thresholds at mid intensity; alpha is ignored. The returned frame is
// normalized to a zero origin.
func Snapshot(img image.Image, mode ColorMode) (*Frame, error) {
	return snapshot(img, mode, false)
}

func snapshot(img image.Image, mode ColorMode, dither bool) (*Frame, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("luma: cannot snapshot empty image %v: %w", b, ErrInvalidFrame)
	}

	var pix []byte
	switch mode {
	case RGB:
		pix = capturePixRGB(img)
	case Gray:
		pix = grayscale(img).Pix
	case Mono:
		g := grayscale(img)
		if dither {
			floydSteinberg(g)
		} else {
			threshold(g, 0x80)
		}
		pix = g.Pix
	default:
		return nil, fmt.Errorf("luma: unknown color mode %d: %w", mode, ErrInvalidFrame)
	}
	return &Frame{mode: mode, rect: image.Rect(0, 0, w, h), pix: pix}, nil
}

// Mode returns the frame's color mode.
func (f *Frame) Mode() ColorMode {
	return f.mode
}

// Bounds returns the frame's bounds.
func (f *Frame) Bounds() image.Rectangle {
	return f.rect
}

// Bytes extracts the packed pixels of region r into a contiguous row-major
// slice, ready for Device.Write. r must be contained in the frame bounds.
func (f *Frame) Bytes(r image.Rectangle) []byte {
	r = r.Intersect(f.rect)
	if r.Empty() {
		return nil
	}
	bpp := f.mode.BytesPerPixel()
	stride := f.rect.Dx() * bpp
	rowLen := r.Dx() * bpp

	out := make([]byte, rowLen*r.Dy())
	di := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := (y-f.rect.Min.Y)*stride + (r.Min.X-f.rect.Min.X)*bpp
		copy(out[di:di+rowLen], f.pix[si:si+rowLen])
		di += rowLen
	}
	return out
}

// Image returns a read-only view of the frame as an image.Image.
func (f *Frame) Image() image.Image {
	img, _ := DecodePixels(f.mode, f.rect, f.pix)
	return img
}

// DecodePixels wraps packed pixel bytes for rectangle r in an image.Image
// view without copying. The view stays valid only as long as pix is not
// modified. Device implementations use this to consume Write payloads with
// the standard image machinery.
func DecodePixels(mode ColorMode, r image.Rectangle, pix []byte) (image.Image, error) {
	if want := r.Dx() * r.Dy() * mode.BytesPerPixel(); len(pix) != want {
		return nil, fmt.Errorf("luma: %d pixel bytes for %v in %v, need %d: %w",
			len(pix), r, mode, want, ErrInvalidFrame)
	}
	switch mode {
	case Mono, Gray:
		return &image.Gray{Pix: pix, Stride: r.Dx(), Rect: r}, nil
	case RGB:
		return &rgbImage{pix: pix, stride: r.Dx() * 3, rect: r}, nil
	default:
		return nil, fmt.Errorf("luma: unknown color mode %d: %w", mode, ErrInvalidFrame)
	}
}

// rgbImage is a read-only image view over packed 24-bit RGB bytes.
type rgbImage struct {
	pix    []byte
	stride int
	rect   image.Rectangle
}

func (p *rgbImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (p *rgbImage) Bounds() image.Rectangle {
	return p.rect
}

func (p *rgbImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(p.rect)) {
		return color.RGBA{}
	}
	i := (y-p.rect.Min.Y)*p.stride + (x-p.rect.Min.X)*3
	return color.RGBA{R: p.pix[i], G: p.pix[i+1], B: p.pix[i+2], A: 0xFF}
}

// capturePixRGB packs img into 3 bytes per pixel, dropping alpha.
func capturePixRGB(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*3)

	if src, ok := img.(*image.RGBA); ok {
		di := 0
		for y := 0; y < h; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				out[di] = src.Pix[si]
				out[di+1] = src.Pix[si+1]
				out[di+2] = src.Pix[si+2]
				di += 3
				si += 4
			}
		}
		return out
	}

	di := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out[di] = byte(r >> 8)
			out[di+1] = byte(g >> 8)
			out[di+2] = byte(bl >> 8)
			di += 3
		}
	}
	return out
}

// grayscale converts img to an 8-bit luminance image with a zero origin.
func grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[si:si+w])
		}
	case *image.RGBA:
		di := 0
		for y := 0; y < h; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				out.Pix[di] = luminance(src.Pix[si], src.Pix[si+1], src.Pix[si+2])
				di++
				si += 4
			}
		}
	case *image1bit.HorizontalMSB:
		di := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if src.BitAt(x, y) {
					out.Pix[di] = 0xFF
				}
				di++
			}
		}
	default:
		di := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				out.Pix[di] = luminance(byte(r>>8), byte(g>>8), byte(bl>>8))
				di++
			}
		}
	}
	return out
}

// luminance applies the standard grayscale conversion 0.299R + 0.587G + 0.114B.
func luminance(r, g, b byte) byte {
	return byte((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
}
