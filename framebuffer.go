package luma

import (
	"bytes"
	"fmt"
	"image"
)

// FrameBuffer decides which part of a frame must be retransmitted to the
// device. Strategies are two-phase: ComputeDirtyRegion inspects the
// candidate frame without side effects, and Commit records it as
// transmitted once the device write succeeded. A failed write therefore
// leaves the comparison baseline untouched and the region stays dirty for
// the next render.
type FrameBuffer interface {
	// ComputeDirtyRegion returns the bounding box of pixels that differ
	// from the last committed frame, empty when nothing changed. The
	// rectangle is always contained in the device bounds.
	ComputeDirtyRegion(next *Frame) (image.Rectangle, error)

	// Commit records next as the frame now shown on the device.
	Commit(next *Frame)
}

// FullFrame retransmits the entire frame on every render. It keeps no
// history and never reports a frame as unchanged, trading bus bandwidth
// for zero bookkeeping. Suited to devices where partial updates are as
// expensive as full ones.
type FullFrame struct {
	bounds image.Rectangle
	mode   ColorMode
}

// NewFullFrame returns a FullFrame strategy for d.
func NewFullFrame(d Device) *FullFrame {
	return &FullFrame{bounds: d.Bounds(), mode: ModeOf(d)}
}

func (f *FullFrame) ComputeDirtyRegion(next *Frame) (image.Rectangle, error) {
	if err := checkFrame(next, f.bounds, f.mode); err != nil {
		return image.Rectangle{}, err
	}
	return f.bounds, nil
}

func (f *FullFrame) Commit(next *Frame) {}

// DiffToPrevious retains the last committed frame and narrows each render
// to the smallest rectangle covering every changed pixel, padded outward to
// the device's horizontal alignment. The first render is always the whole
// frame. Devices whose redraws are slow or visible benefit most: unchanged
// regions never flicker and the bus carries only modified pixels.
type DiffToPrevious struct {
	bounds image.Rectangle
	mode   ColorMode
	align  int
	prev   *Frame
}

// NewDiffToPrevious returns a differential strategy for d. Devices that
// report a horizontal alignment must have a width divisible by it,
// otherwise a padded rectangle could overrun the frame.
func NewDiffToPrevious(d Device) (*DiffToPrevious, error) {
	bounds := d.Bounds()
	align := AlignmentOf(d)
	if align > 1 && bounds.Dx()%align != 0 {
		return nil, fmt.Errorf("luma: device width %d is not a multiple of its alignment %d", bounds.Dx(), align)
	}
	return &DiffToPrevious{bounds: bounds, mode: ModeOf(d), align: align}, nil
}

func (f *DiffToPrevious) ComputeDirtyRegion(next *Frame) (image.Rectangle, error) {
	if err := checkFrame(next, f.bounds, f.mode); err != nil {
		return image.Rectangle{}, err
	}
	if f.prev == nil {
		// Nothing committed yet, the whole frame is dirty.
		return f.bounds, nil
	}

	width := f.bounds.Dx()
	height := f.bounds.Dy()
	bpp := f.mode.BytesPerPixel()
	stride := width * bpp

	minRow, maxRow := height, -1
	minCol, maxCol := width, -1

	// Scan row by row, skipping identical rows wholesale.
	for y := 0; y < height; y++ {
		rowStart := y * stride
		rowEnd := rowStart + stride
		prevRow := f.prev.pix[rowStart:rowEnd]
		nextRow := next.pix[rowStart:rowEnd]

		if bytes.Equal(prevRow, nextRow) {
			continue
		}
		if y < minRow {
			minRow = y
		}
		maxRow = y

		if minCol == 0 && maxCol == width-1 {
			// Column span cannot widen any further.
			continue
		}

		// Walk in from both ends to the first and last differing bytes.
		lo := 0
		for prevRow[lo] == nextRow[lo] {
			lo++
		}
		hi := stride - 1
		for hi > lo && prevRow[hi] == nextRow[hi] {
			hi--
		}
		if c := lo / bpp; c < minCol {
			minCol = c
		}
		if c := hi / bpp; c > maxCol {
			maxCol = c
		}
	}

	if maxRow < 0 {
		return image.Rectangle{}, nil
	}

	r := image.Rect(minCol, minRow, maxCol+1, maxRow+1)
	if f.align > 1 {
		r.Min.X -= r.Min.X % f.align
		if rem := r.Max.X % f.align; rem != 0 {
			r.Max.X += f.align - rem
		}
	}
	return r, nil
}

func (f *DiffToPrevious) Commit(next *Frame) {
	f.prev = next
}

func checkFrame(next *Frame, bounds image.Rectangle, mode ColorMode) error {
	if next == nil {
		return fmt.Errorf("luma: nil frame: %w", ErrInvalidFrame)
	}
	if next.rect.Dx() != bounds.Dx() || next.rect.Dy() != bounds.Dy() {
		return errFrameSize("frame", next.rect, bounds)
	}
	if next.mode != mode {
		return fmt.Errorf("luma: frame mode %v, device expects %v: %w", next.mode, mode, ErrInvalidFrame)
	}
	return nil
}
