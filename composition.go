package luma

import (
	"image"
	"image/draw"
)

// ComposableImage is a positionable, croppable source image for an
// ImageComposition. Position places the image on the composition; Offset
// selects which part of the source is shown. Scrolling tickers advance the
// offset between refreshes instead of re-rendering their content.
type ComposableImage struct {
	src    image.Image
	pos    image.Point
	offset image.Point
}

// NewComposableImage wraps src for compositing at position (0,0) with no
// offset.
func NewComposableImage(src image.Image) *ComposableImage {
	return &ComposableImage{src: src}
}

// SetPosition moves the image's top-left corner on the composition.
func (ci *ComposableImage) SetPosition(x, y int) {
	ci.pos = image.Pt(x, y)
}

// Position returns the image's top-left corner on the composition.
func (ci *ComposableImage) Position() image.Point {
	return ci.pos
}

// SetOffset scrolls the visible part of the source image.
func (ci *ComposableImage) SetOffset(x, y int) {
	ci.offset = image.Pt(x, y)
}

// Offset returns the current scroll offset into the source image.
func (ci *ComposableImage) Offset() image.Point {
	return ci.offset
}

// Width returns the source image width.
func (ci *ComposableImage) Width() int {
	return ci.src.Bounds().Dx()
}

// Height returns the source image height.
func (ci *ComposableImage) Height() int {
	return ci.src.Bounds().Dy()
}

// ImageComposition layers ComposableImages onto a device-sized backing
// image. Refresh recomposites everything in insertion order, later images
// over earlier ones. The result is fed to a Canvas or Viewport by the
// caller; the composition itself never touches the device.
type ImageComposition struct {
	backing *image.RGBA
	images  []*ComposableImage
}

// NewImageComposition creates a composition sized to d.
func NewImageComposition(d Device) *ImageComposition {
	b := d.Bounds()
	return NewImageCompositionSize(b.Dx(), b.Dy())
}

// NewImageCompositionSize creates a w x h composition with no device
// attached, for use inside hotspots or other intermediate surfaces.
func NewImageCompositionSize(w, h int) *ImageComposition {
	return &ImageComposition{
		backing: image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

// Add appends ci to the composition. Images added later are drawn over
// earlier ones.
func (c *ImageComposition) Add(ci *ComposableImage) {
	c.images = append(c.images, ci)
}

// Remove takes ci out of the composition. Unknown images are ignored.
func (c *ImageComposition) Remove(ci *ComposableImage) {
	for i, cur := range c.images {
		if cur == ci {
			c.images = append(c.images[:i], c.images[i+1:]...)
			return
		}
	}
}

// Refresh clears the backing image and recomposites all images.
func (c *ImageComposition) Refresh() {
	draw.Draw(c.backing, c.backing.Bounds(), image.Black, image.Point{}, draw.Src)
	limit := c.backing.Bounds().Size()
	for _, ci := range c.images {
		srcB := ci.src.Bounds()
		w := min(limit.X, srcB.Dx())
		h := min(limit.Y, srcB.Dy())
		dst := image.Rect(ci.pos.X, ci.pos.Y, ci.pos.X+w, ci.pos.Y+h)
		draw.Draw(c.backing, dst, ci.src, srcB.Min.Add(ci.offset), draw.Src)
	}
}

// Image returns the composed backing image.
func (c *ImageComposition) Image() image.Image {
	return c.backing
}
