// Package lumatest provides in-memory doubles for exercising display
// pipelines in tests: a device that records every write it receives and a
// manually advanced clock.
package lumatest

import (
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/rm-hull/luma.core"
)

// Write is one recorded device write.
type Write struct {
	Rect image.Rectangle
	Pix  []byte
}

// Device implements luma.Device in memory. It validates each write the way
// a strict driver would, keeps a log of accepted writes, and can replay
// the log into an image to show what a real panel would display.
type Device struct {
	W, H  int
	Mode  luma.ColorMode
	Align int

	// WriteErr, when set, is returned by every Write, and nothing is
	// recorded. Use it to simulate a failing bus.
	WriteErr error

	mu     sync.Mutex
	writes []Write
}

// NewDevice returns a w x h test device using the given wire format.
func NewDevice(w, h int, mode luma.ColorMode) *Device {
	return &Device{W: w, H: h, Mode: mode}
}

// Bounds implements luma.Device.
func (d *Device) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.W, d.H)
}

// ColorMode reports the device's wire format.
func (d *Device) ColorMode() luma.ColorMode {
	return d.Mode
}

// Alignment reports the device's dirty-region alignment.
func (d *Device) Alignment() int {
	return d.Align
}

// Write validates and records the update.
func (d *Device) Write(r image.Rectangle, pix []byte) error {
	if d.WriteErr != nil {
		return d.WriteErr
	}
	if r.Empty() || !r.In(d.Bounds()) {
		return fmt.Errorf("lumatest: write region %v outside device bounds %v", r, d.Bounds())
	}
	if want := r.Dx() * r.Dy() * d.Mode.BytesPerPixel(); len(pix) != want {
		return fmt.Errorf("lumatest: write payload is %d bytes, want %d", len(pix), want)
	}
	cp := make([]byte, len(pix))
	copy(cp, pix)
	d.mu.Lock()
	d.writes = append(d.writes, Write{Rect: r, Pix: cp})
	d.mu.Unlock()
	return nil
}

// Writes returns a copy of the write log in arrival order.
func (d *Device) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Write, len(d.writes))
	copy(out, d.writes)
	return out
}

// Len returns the number of recorded writes.
func (d *Device) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.writes)
}

// Reset clears the write log.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = nil
}

// Image replays the write log onto a black frame and returns the result,
// which is what the panel would show after all recorded updates.
func (d *Device) Image() *image.RGBA {
	out := image.NewRGBA(d.Bounds())
	draw.Draw(out, out.Bounds(), image.Black, image.Point{}, draw.Src)
	for _, w := range d.Writes() {
		src, err := luma.DecodePixels(d.Mode, w.Rect, w.Pix)
		if err != nil {
			continue // cannot happen, writes are validated on entry
		}
		draw.Draw(out, w.Rect, src, w.Rect.Min, draw.Src)
	}
	return out
}

// Clock implements luma.Clock with a manually controlled current time,
// so interval-based behavior can be tested without sleeping.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock reading start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the clock's current time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
