package emulator

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/rm-hull/luma.core"
)

func TestWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   *Opts
		want Opts
	}{
		{"nil", nil, Opts{W: 128, H: 64, Mode: luma.RGB, Scale: 2}},
		{"zero value", &Opts{}, Opts{W: 128, H: 64, Mode: luma.RGB, Scale: 2}},
		{"width only", &Opts{W: 32}, Opts{W: 32, H: 64, Mode: luma.RGB, Scale: 2}},
		{"mono unscaled", &Opts{W: 8, H: 8, Mode: luma.Mono, Scale: 1}, Opts{W: 8, H: 8, Mode: luma.Mono, Scale: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withDefaults(tt.in); got != tt.want {
				t.Errorf("withDefaults(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEmulatedApplyAndScale(t *testing.T) {
	e := newEmulated(&Opts{W: 2, H: 2, Mode: luma.Gray, Scale: 2})
	if err := e.apply(image.Rect(0, 0, 2, 2), []byte{0xFF, 0x00, 0x00, 0xFF}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	out := e.scaled()
	if got := out.Bounds(); got != image.Rect(0, 0, 4, 4) {
		t.Fatalf("scaled bounds = %v, want 4x4", got)
	}
	// Nearest neighbor doubles each source pixel into a 2x2 block.
	if c := out.RGBAAt(1, 1); c.R != 0xFF {
		t.Errorf("pixel (1,1) = %v, want white block", c)
	}
	if c := out.RGBAAt(2, 1); c.R != 0x00 {
		t.Errorf("pixel (2,1) = %v, want black block", c)
	}

	if err := e.apply(image.Rect(1, 1, 3, 3), []byte{0, 0, 0, 0}); err == nil {
		t.Error("apply outside bounds should fail")
	}
}

func TestScaledCopiesWhenUnscaled(t *testing.T) {
	e := newEmulated(&Opts{W: 2, H: 1, Mode: luma.Gray, Scale: 1})
	out := e.scaled()
	out.SetRGBA(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
	if c := e.img.RGBAAt(0, 0); c.R != 0 {
		t.Error("mutating the scaled copy leaked into the shadow frame")
	}
}

func TestCaptureWritesNumberedFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewCapture(filepath.Join(dir, "frame_%03d.png"), &Opts{W: 4, H: 2, Mode: luma.Gray, Scale: 1})

	if err := c.Write(image.Rect(0, 0, 4, 2), []byte{0xAA, 0, 0, 0, 0, 0, 0, 0}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := c.Write(image.Rect(0, 0, 1, 1), []byte{0x55}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := c.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}

	f, err := os.Open(filepath.Join(dir, "frame_001.png"))
	if err != nil {
		t.Fatalf("first frame missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 4, 2) {
		t.Errorf("decoded bounds = %v, want 4x2", got)
	}
	rgba := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	if rgba.R != 0xAA {
		t.Errorf("decoded pixel (0,0) = %v, want gray 0xAA", rgba)
	}

	if _, err := os.Stat(filepath.Join(dir, "frame_002.png")); err != nil {
		t.Errorf("second frame missing: %v", err)
	}
}

func TestCaptureScalesOutput(t *testing.T) {
	dir := t.TempDir()
	c := NewCapture(filepath.Join(dir, "s_%d.png"), &Opts{W: 4, H: 2, Mode: luma.Gray, Scale: 3})
	if err := c.Write(image.Rect(0, 0, 4, 2), make([]byte, 8)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "s_1.png"))
	if err != nil {
		t.Fatalf("frame missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 12, 6) {
		t.Errorf("decoded bounds = %v, want 3x upscale 12x6", got)
	}
}

func TestCaptureRejectsInvalidWrite(t *testing.T) {
	dir := t.TempDir()
	c := NewCapture(filepath.Join(dir, "bad_%d.png"), &Opts{W: 2, H: 2, Mode: luma.Gray, Scale: 1})
	if err := c.Write(image.Rect(0, 0, 4, 4), make([]byte, 16)); err == nil {
		t.Fatal("out-of-bounds write accepted")
	}
	if got := c.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("files written = %d, want none", len(entries))
	}
}

func TestGIFAnimAssembles(t *testing.T) {
	var buf bytes.Buffer
	g := NewGIFAnim(&buf, 60*time.Millisecond, &Opts{W: 2, H: 1, Mode: luma.Gray, Scale: 1})

	for _, v := range []byte{0x00, 0x80, 0xFF} {
		if err := g.Write(image.Rect(0, 0, 2, 1), []byte{v, v}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if got := g.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	anim, err := gif.DecodeAll(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("gif.DecodeAll: %v", err)
	}
	if got := len(anim.Image); got != 3 {
		t.Errorf("decoded frames = %d, want 3", got)
	}
	if got := anim.LoopCount; got != 0 {
		t.Errorf("LoopCount = %d, want 0 (loop forever)", got)
	}
	for i, d := range anim.Delay {
		if d != 6 {
			t.Errorf("Delay[%d] = %d, want 6 hundredths", i, d)
		}
	}
	if got := anim.Image[0].Bounds(); got != image.Rect(0, 0, 2, 1) {
		t.Errorf("frame bounds = %v, want 2x1", got)
	}

	// Closed animations accept no more frames and encode only once.
	if err := g.Write(image.Rect(0, 0, 2, 1), []byte{0, 0}); err == nil {
		t.Error("Write after Close accepted")
	}
	size := buf.Len()
	if err := g.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if buf.Len() != size {
		t.Error("second Close encoded again")
	}
}

func TestGIFAnimMinimumDelay(t *testing.T) {
	var buf bytes.Buffer
	g := NewGIFAnim(&buf, time.Millisecond, &Opts{W: 1, H: 1, Mode: luma.Gray, Scale: 1})
	if err := g.Write(image.Rect(0, 0, 1, 1), []byte{0xFF}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	anim, err := gif.DecodeAll(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("gif.DecodeAll: %v", err)
	}
	if got := anim.Delay[0]; got != 1 {
		t.Errorf("Delay[0] = %d, want the 10ms floor", got)
	}
}

func TestGIFAnimEmptyCloseWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	g := NewGIFAnim(&buf, 60*time.Millisecond, nil)
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("bytes written = %d, want 0", buf.Len())
	}
}

func TestTermRendersHalfBlocks(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	term, err := NewTermScreen(s, &Opts{W: 4, H: 4, Mode: luma.RGB})
	if err != nil {
		t.Fatalf("NewTermScreen: %v", err)
	}
	defer term.Close()

	// Row 0 red, row 1 blue, rows 2-3 black.
	pix := make([]byte, 4*4*3)
	for x := 0; x < 4; x++ {
		pix[x*3] = 0xFF
		pix[(4+x)*3+2] = 0xFF
	}
	if err := term.Write(image.Rect(0, 0, 4, 4), pix); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r, _, style, _ := s.GetContent(0, 0)
	if r != '▀' {
		t.Errorf("cell rune = %q, want the upper half block", r)
	}
	fg, bg, _ := style.Decompose()
	if got := fg.Hex(); got != 0xFF0000 {
		t.Errorf("foreground = %#06x, want red top pixel", got)
	}
	if got := bg.Hex(); got != 0x0000FF {
		t.Errorf("background = %#06x, want blue bottom pixel", got)
	}

	_, _, style, _ = s.GetContent(0, 1)
	fg, bg, _ = style.Decompose()
	if fg.Hex() != 0 || bg.Hex() != 0 {
		t.Errorf("cell (0,1) = fg %#06x bg %#06x, want black", fg.Hex(), bg.Hex())
	}
}

func TestTermOddHeightBottomRow(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	term, err := NewTermScreen(s, &Opts{W: 2, H: 3, Mode: luma.Gray})
	if err != nil {
		t.Fatalf("NewTermScreen: %v", err)
	}
	defer term.Close()

	if err := term.Write(image.Rect(0, 0, 2, 3), []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// The last pixel row has no partner; its cell background stays black.
	_, _, style, _ := s.GetContent(0, 1)
	fg, bg, _ := style.Decompose()
	if fg.Hex() != 0xFFFFFF {
		t.Errorf("foreground = %#06x, want white", fg.Hex())
	}
	if bg.Hex() != 0x000000 {
		t.Errorf("background = %#06x, want black filler", bg.Hex())
	}
}

func TestTermDeliversKeys(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	term, err := NewTermScreen(s, &Opts{W: 2, H: 2})
	if err != nil {
		t.Fatalf("NewTermScreen: %v", err)
	}
	defer term.Close()

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case ev := <-term.Keys():
		if ev.Rune() != 'q' {
			t.Errorf("key rune = %q, want 'q'", ev.Rune())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no key event delivered")
	}

	s.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case ev := <-term.Keys():
		if ev.Key() != tcell.KeyEscape {
			t.Errorf("key = %v, want escape", ev.Key())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no escape event delivered")
	}
}

func TestTermCloseIdempotent(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	term, err := NewTermScreen(s, nil)
	if err != nil {
		t.Fatalf("NewTermScreen: %v", err)
	}
	if err := term.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := term.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
