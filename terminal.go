package luma

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ansiPalette holds the eight basic SGR colors (30-37 foreground, 40-47
// background).
var ansiPalette = [8]color.RGBA{
	{0x00, 0x00, 0x00, 0xFF}, // black
	{0xFF, 0x00, 0x00, 0xFF}, // red
	{0x00, 0x80, 0x00, 0xFF}, // green
	{0xFF, 0xFF, 0x00, 0xFF}, // yellow
	{0x00, 0x00, 0xFF, 0xFF}, // blue
	{0xFF, 0x00, 0xFF, 0xFF}, // magenta
	{0x00, 0xFF, 0xFF, 0xFF}, // cyan
	{0xFF, 0xFF, 0xFF, 0xFF}, // white
}

// TerminalOpts configures a Terminal.
type TerminalOpts struct {
	// Color and BGColor are the default text colors. Default: white on
	// black.
	Color   color.Color
	BGColor color.Color

	// TabStop is the soft tab width in columns. Default: 4.
	TabStop int

	// Cols and Rows force the character grid instead of deriving it from
	// the font metrics. Either can be set independently.
	Cols, Rows int

	// FrameBuffer is the device update strategy. Default: DiffToPrevious.
	FrameBuffer FrameBuffer
}

// Terminal is a scrolling, line-buffered text surface rendered through the
// canvas pipeline. The character grid is derived from the font metrics:
// the cell width is the widest ASCII glyph advance, the cell height the
// font's ascent plus descent.
//
// Printed text is word-wrapped: a word that would cross the right edge is
// moved to the next line whole, unless it is wider than the whole line, in
// which case it is split. Scrolling is deferred, so printing exactly Rows
// lines leaves all of them visible and the next line pushes the oldest
// one off.
//
// Text may contain ANSI SGR sequences (ESC[...m) selecting the eight basic
// foreground/background colors plus reset (0), bold (1) and reverse video
// (7). Unsupported sequences are consumed silently; malformed ones degrade
// to plain text. Carriage return, backspace and tab are honored.
type Terminal struct {
	canvas  *Canvas
	face    font.Face
	backing *image.RGBA

	cw, ch     int
	cols, rows int
	ascent     int
	cx, cy     int
	tabstop    int

	defFg, defBg color.Color
	fg, bg       color.Color
	bold         bool

	parser ansiParser
}

// NewTerminal creates a terminal covering d and clears the display. opts
// can be nil for defaults.
func NewTerminal(d Device, face font.Face, opts *TerminalOpts) (*Terminal, error) {
	if opts == nil {
		opts = &TerminalOpts{}
	}
	canvas, err := NewCanvas(d, &CanvasOpts{FrameBuffer: opts.FrameBuffer})
	if err != nil {
		return nil, err
	}

	bounds := d.Bounds()
	cw, ch := cellMetrics(face)
	cols, rows := opts.Cols, opts.Rows
	if cols > 0 {
		cw = bounds.Dx() / cols
	} else if cw > 0 {
		cols = bounds.Dx() / cw
	}
	if rows > 0 {
		ch = bounds.Dy() / rows
	} else if ch > 0 {
		rows = bounds.Dy() / ch
	}
	if cols < 1 || rows < 1 || cw < 1 || ch < 1 {
		return nil, fmt.Errorf("luma: font cell %dx%d does not fit device %dx%d",
			cw, ch, bounds.Dx(), bounds.Dy())
	}

	fg := opts.Color
	if fg == nil {
		fg = color.White
	}
	bg := opts.BGColor
	if bg == nil {
		bg = color.Black
	}
	tabstop := opts.TabStop
	if tabstop < 1 {
		tabstop = 4
	}

	t := &Terminal{
		canvas:  canvas,
		face:    face,
		backing: image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy())),
		cw:      cw,
		ch:      ch,
		cols:    cols,
		rows:    rows,
		ascent:  face.Metrics().Ascent.Ceil(),
		tabstop: tabstop,
		defFg:   fg,
		defBg:   bg,
		fg:      fg,
		bg:      bg,
	}
	if err := t.Clear(); err != nil {
		return nil, err
	}
	return t, nil
}

// cellMetrics sizes a character cell for face: the widest printable ASCII
// advance by the line height.
func cellMetrics(face font.Face) (cw, ch int) {
	for r := rune(' '); r <= '~'; r++ {
		if adv, ok := face.GlyphAdvance(r); ok {
			if a := adv.Ceil(); a > cw {
				cw = a
			}
		}
	}
	m := face.Metrics()
	ch = (m.Ascent + m.Descent).Ceil()
	return cw, ch
}

// Size returns the character grid dimensions.
func (t *Terminal) Size() (cols, rows int) {
	return t.cols, t.rows
}

// CellSize returns the pixel dimensions of one character cell.
func (t *Terminal) CellSize() (w, h int) {
	return t.cw, t.ch
}

// Print writes text at the cursor and flushes the result to the device.
func (t *Terminal) Print(text string) error {
	t.execute(t.parse(text))
	return t.flush()
}

// Println writes text at the cursor followed by a newline, then flushes.
func (t *Terminal) Println(text string) error {
	t.execute(t.parse(text))
	t.newline()
	return t.flush()
}

// Clear erases the display with the current background color and homes the
// cursor.
func (t *Terminal) Clear() error {
	t.cx, t.cy = 0, 0
	draw.Draw(t.backing, t.backing.Bounds(), image.NewUniform(t.bg), image.Point{}, draw.Src)
	return t.flush()
}

func (t *Terminal) parse(text string) []directive {
	var dirs []directive
	for _, r := range text {
		dirs = t.parser.feed(r, dirs)
	}
	return dirs
}

// execute applies a directive stream with word wrapping: before drawing a
// word it measures the run of printable characters up to the next space and
// breaks the line early when the word would not fit.
func (t *Terminal) execute(dirs []directive) {
	for i := 0; i < len(dirs); {
		d := dirs[i]
		if d.kind == dirPutch && isWordRune(d.ch) {
			j, width := i, 0
			for j < len(dirs) {
				n := dirs[j]
				if n.kind == dirPutch {
					if !isWordRune(n.ch) {
						break
					}
					width++
				}
				j++
			}
			if t.cx+width > t.cols && width <= t.cols {
				t.newline()
			}
			for ; i < j; i++ {
				t.apply(dirs[i])
			}
			continue
		}
		t.apply(d)
		i++
	}
}

func isWordRune(r rune) bool {
	return r > ' '
}

func (t *Terminal) apply(d directive) {
	if d.kind == dirSGR {
		t.applySGR(d.args)
		return
	}
	switch d.ch {
	case '\n':
		t.newline()
	case '\r':
		t.cx = 0
	case '\b':
		t.backspace()
	case '\t':
		t.tab()
	default:
		if d.ch >= ' ' {
			t.putch(d.ch)
		}
	}
}

func (t *Terminal) applySGR(args []int) {
	for _, code := range args {
		switch {
		case code == 0:
			t.fg, t.bg = t.defFg, t.defBg
			t.bold = false
		case code == 1:
			t.bold = true
		case code == 7:
			t.fg, t.bg = t.bg, t.fg
		case code >= 30 && code <= 37:
			t.fg = ansiPalette[code-30]
		case code >= 40 && code <= 47:
			t.bg = ansiPalette[code-40]
		}
	}
}

func (t *Terminal) putch(r rune) {
	if t.cx >= t.cols {
		t.newline()
	}
	t.ensureRow()
	t.eraseCell(t.cx, t.cy)
	t.drawGlyph(r)
	t.cx++
}

// newline moves the cursor to the start of the next row. The scroll for a
// row below the grid is deferred until something is drawn there, so the
// last printed line stays visible.
func (t *Terminal) newline() {
	t.cx = 0
	if t.cy >= t.rows {
		t.scrollUp()
		return
	}
	t.cy++
}

// ensureRow scrolls a pending off-grid cursor row into view.
func (t *Terminal) ensureRow() {
	if t.cy >= t.rows {
		t.scrollUp()
		t.cy = t.rows - 1
	}
}

func (t *Terminal) backspace() {
	if t.cx > 0 {
		t.cx--
		t.eraseCell(t.cx, t.cy)
	}
}

func (t *Terminal) tab() {
	n := t.tabstop - t.cx%t.tabstop
	for i := 0; i < n; i++ {
		t.putch(' ')
	}
}

func (t *Terminal) eraseCell(cx, cy int) {
	r := image.Rect(cx*t.cw, cy*t.ch, (cx+1)*t.cw, (cy+1)*t.ch)
	draw.Draw(t.backing, r, image.NewUniform(t.bg), image.Point{}, draw.Src)
}

func (t *Terminal) drawGlyph(r rune) {
	d := font.Drawer{
		Dst:  t.backing,
		Src:  image.NewUniform(t.fg),
		Face: t.face,
		Dot:  fixed.P(t.cx*t.cw, t.cy*t.ch+t.ascent),
	}
	d.DrawString(string(r))
	if t.bold {
		// Classic double-strike bold: repaint one pixel to the right.
		d.Dot = fixed.P(t.cx*t.cw+1, t.cy*t.ch+t.ascent)
		d.DrawString(string(r))
	}
}

// scrollUp discards the top text row, shifting everything up one row and
// clearing the vacated strip with the current background.
func (t *Terminal) scrollUp() {
	shift := t.ch * t.backing.Stride
	copy(t.backing.Pix, t.backing.Pix[shift:])
	bottom := image.Rect(0, (t.rows-1)*t.ch, t.backing.Rect.Dx(), t.backing.Rect.Dy())
	draw.Draw(t.backing, bottom, image.NewUniform(t.bg), image.Point{}, draw.Src)
}

func (t *Terminal) flush() error {
	return t.canvas.Render(t.backing)
}
