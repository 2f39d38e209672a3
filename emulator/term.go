package emulator

import (
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Term is a pseudo-device that paints the pixel stream into a live
// terminal window. Each character cell shows two vertically stacked pixels
// through the upper-half-block rune, so a 128x64 panel occupies 128x32
// cells. Scale is ignored.
//
// Key events arrive on Keys, letting an animation loop watch for a quit
// key without owning the terminal.
type Term struct {
	emulated
	screen tcell.Screen
	keys   chan *tcell.EventKey
	once   sync.Once
}

// NewTerm creates a Term on the process's terminal. opts can be nil.
func NewTerm(opts *Opts) (*Term, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTermScreen(screen, opts)
}

// NewTermScreen creates a Term on the given screen, which must not be
// initialized yet; the Term owns it from here on and tears it down in
// Close. Tests pass a tcell simulation screen.
func NewTermScreen(s tcell.Screen, opts *Opts) (*Term, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	t := &Term{
		emulated: newEmulated(opts),
		screen:   s,
		keys:     make(chan *tcell.EventKey, 16),
	}
	go t.pump()
	return t, nil
}

// Write patches the update into the shadow frame and repaints the affected
// terminal rows.
func (t *Term) Write(r image.Rectangle, pix []byte) error {
	if err := t.apply(r, pix); err != nil {
		return err
	}
	for cy := r.Min.Y / 2; cy <= (r.Max.Y-1)/2; cy++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			top := t.img.RGBAAt(x, 2*cy)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B)))
			if 2*cy+1 < t.opts.H {
				bot := t.img.RGBAAt(x, 2*cy+1)
				style = style.Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			} else {
				style = style.Background(tcell.ColorBlack)
			}
			t.screen.SetContent(x, cy, '▀', nil, style)
		}
	}
	t.screen.Show()
	return nil
}

// Keys delivers key events. When nobody drains the channel, events are
// dropped rather than blocking the terminal.
func (t *Term) Keys() <-chan *tcell.EventKey {
	return t.keys
}

// pump forwards terminal events until the screen is torn down.
func (t *Term) pump() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			select {
			case t.keys <- ev:
			default:
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

// Close restores the terminal. Safe to call multiple times.
func (t *Term) Close() error {
	t.once.Do(t.screen.Fini)
	return nil
}
