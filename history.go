package luma

import (
	"errors"
	"fmt"
	"image"
)

// History wraps a device with a savepoint stack, so the screen can be
// rolled back to an earlier state. It is mostly useful for transient
// error or dialog overlays that are later dismissed.
//
// History reconstructs full frames from the write stream it forwards, so
// it composes with partial updates from a differential FrameBuffer. Note
// that Restore writes to the device behind any Canvas sitting above the
// wrapper, leaving that canvas's differential baseline stale; after a
// restore, resume drawing through the canvas only after re-rendering a
// full frame.
type History struct {
	dev    Device
	bounds image.Rectangle
	mode   ColorMode

	shadow     []byte
	dirty      bool
	savepoints [][]byte
}

// NewHistory wraps d. The wrapper starts from an all-black shadow frame.
func NewHistory(d Device) *History {
	b := d.Bounds()
	mode := ModeOf(d)
	return &History{
		dev:    d,
		bounds: b,
		mode:   mode,
		shadow: make([]byte, b.Dx()*b.Dy()*mode.BytesPerPixel()),
	}
}

// Bounds returns the wrapped device's bounds.
func (h *History) Bounds() image.Rectangle {
	return h.bounds
}

// ColorMode returns the wrapped device's color mode.
func (h *History) ColorMode() ColorMode {
	return h.mode
}

// Alignment returns the wrapped device's dirty-region alignment.
func (h *History) Alignment() int {
	return AlignmentOf(h.dev)
}

// Write forwards the update and patches it into the shadow frame. The
// shadow only changes when the device accepted the write.
func (h *History) Write(r image.Rectangle, pix []byte) error {
	bpp := h.mode.BytesPerPixel()
	if r.Empty() || !r.In(h.bounds) {
		return fmt.Errorf("luma: write region %v outside device bounds %v", r, h.bounds)
	}
	if len(pix) != r.Dx()*r.Dy()*bpp {
		return fmt.Errorf("luma: write payload is %d bytes, want %d", len(pix), r.Dx()*r.Dy()*bpp)
	}
	if err := h.dev.Write(r, pix); err != nil {
		return err
	}

	rowLen := r.Dx() * bpp
	stride := h.bounds.Dx() * bpp
	for y := 0; y < r.Dy(); y++ {
		off := (r.Min.Y+y)*stride + r.Min.X*bpp
		copy(h.shadow[off:off+rowLen], pix[y*rowLen:(y+1)*rowLen])
	}
	h.dirty = true
	return nil
}

// Savepoint records the currently displayed frame. It is a no-op when
// nothing has been written since the previous savepoint, so repeated calls
// do not stack duplicates.
func (h *History) Savepoint() {
	if !h.dirty {
		return
	}
	snap := make([]byte, len(h.shadow))
	copy(snap, h.shadow)
	h.savepoints = append(h.savepoints, snap)
	h.dirty = false
}

// Restore discards drop savepoints and replays the next one onto the
// device as a full-frame write. The replayed savepoint is only consumed if
// the device accepts the write, and counts as displayed content, so a
// following Savepoint records it again.
func (h *History) Restore(drop int) error {
	if drop < 0 {
		return errors.New("luma: drop must not be negative")
	}
	if drop+1 > len(h.savepoints) {
		return fmt.Errorf("luma: %d savepoints held, cannot drop %d and restore", len(h.savepoints), drop)
	}
	h.savepoints = h.savepoints[:len(h.savepoints)-drop]

	snap := h.savepoints[len(h.savepoints)-1]
	if err := h.dev.Write(h.bounds, snap); err != nil {
		return err
	}
	h.savepoints = h.savepoints[:len(h.savepoints)-1]
	copy(h.shadow, snap)
	h.dirty = true
	return nil
}

// Len returns the number of savepoints retained.
func (h *History) Len() int {
	return len(h.savepoints)
}
