package emulator

import (
	"errors"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"time"
)

// GIFAnim is a pseudo-device that records a frame on every device write
// and assembles the collection into an animated GIF when closed. Color is
// reduced to an indexed palette, as the format demands.
type GIFAnim struct {
	emulated
	w      io.Writer
	delay  int // per frame, in 100ths of a second
	frames []*image.Paletted
	closed bool
}

// NewGIFAnim creates a GIFAnim writing to w on Close. delay is how long
// each frame shows; values below 10ms round up to it. opts can be nil.
func NewGIFAnim(w io.Writer, delay time.Duration, opts *Opts) *GIFAnim {
	hundredths := int(delay / (time.Second / 100))
	if hundredths < 1 {
		hundredths = 1
	}
	return &GIFAnim{emulated: newEmulated(opts), w: w, delay: hundredths}
}

// Write patches the update into the shadow frame and records the result as
// the next animation frame.
func (g *GIFAnim) Write(r image.Rectangle, pix []byte) error {
	if g.closed {
		return errors.New("emulator: animation already written")
	}
	if err := g.apply(r, pix); err != nil {
		return err
	}
	frame := g.scaled()
	pal := image.NewPaletted(frame.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pal, frame.Bounds(), frame, image.Point{})
	g.frames = append(g.frames, pal)
	return nil
}

// Len returns the number of frames recorded so far.
func (g *GIFAnim) Len() int {
	return len(g.frames)
}

// Close assembles the recorded frames into a GIF that loops forever and
// writes it out. Closing with no frames writes nothing. Close is
// idempotent; only the first call encodes.
func (g *GIFAnim) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	if len(g.frames) == 0 {
		return nil
	}
	anim := &gif.GIF{LoopCount: 0}
	for _, f := range g.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, g.delay)
	}
	return gif.EncodeAll(g.w, anim)
}
