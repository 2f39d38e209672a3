package luma

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

type drawCall struct {
	r   image.Rectangle
	sp  image.Point
	img image.Image
}

// fakeDrawer implements display.Drawer the way a periph.io panel driver
// does.
type fakeDrawer struct {
	bounds image.Rectangle
	model  color.Model
	err    error

	draws  []drawCall
	halted bool
}

func (f *fakeDrawer) String() string          { return "fake" }
func (f *fakeDrawer) Halt() error             { f.halted = true; return nil }
func (f *fakeDrawer) ColorModel() color.Model { return f.model }
func (f *fakeDrawer) Bounds() image.Rectangle { return f.bounds }

func (f *fakeDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if f.err != nil {
		return f.err
	}
	f.draws = append(f.draws, drawCall{r: r, sp: sp, img: src})
	return nil
}

func TestWrapDrawerNormalizesBounds(t *testing.T) {
	f := &fakeDrawer{bounds: image.Rect(2, 2, 130, 66), model: color.RGBAModel}
	dev := WrapDrawer(f, nil)
	if got := dev.Bounds(); got != image.Rect(0, 0, 128, 64) {
		t.Errorf("Bounds() = %v, want zero origin 128x64", got)
	}
}

func TestWrapDrawerCapabilities(t *testing.T) {
	f := &fakeDrawer{bounds: image.Rect(0, 0, 8, 8), model: color.GrayModel}

	dev := WrapDrawer(f, nil)
	if got := ModeOf(dev); got != RGB {
		t.Errorf("default ModeOf = %v, want RGB", got)
	}
	if got := AlignmentOf(dev); got != 1 {
		t.Errorf("default AlignmentOf = %d, want 1", got)
	}

	dev = WrapDrawer(f, &WrapOpts{Mode: DetectMode(f.ColorModel()), Alignment: 2})
	if got := ModeOf(dev); got != Gray {
		t.Errorf("ModeOf = %v, want Gray", got)
	}
	if got := AlignmentOf(dev); got != 2 {
		t.Errorf("AlignmentOf = %d, want 2", got)
	}
}

func TestWrapDrawerWrite(t *testing.T) {
	f := &fakeDrawer{bounds: image.Rect(0, 0, 8, 4), model: color.GrayModel}
	dev := WrapDrawer(f, &WrapOpts{Mode: Gray})

	if err := dev.Write(image.Rect(1, 0, 3, 1), []byte{0xAA, 0xBB}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(f.draws) != 1 {
		t.Fatalf("draw calls = %d, want 1", len(f.draws))
	}
	call := f.draws[0]
	if call.r != image.Rect(1, 0, 3, 1) {
		t.Errorf("draw region = %v, want (1,0)-(3,1)", call.r)
	}
	if call.sp != image.Pt(1, 0) {
		t.Errorf("draw source point = %v, want (1,0)", call.sp)
	}
	if got := call.img.At(1, 0).(color.Gray).Y; got != 0xAA {
		t.Errorf("source pixel (1,0) = %#02x, want 0xAA", got)
	}
	if got := call.img.At(2, 0).(color.Gray).Y; got != 0xBB {
		t.Errorf("source pixel (2,0) = %#02x, want 0xBB", got)
	}
}

func TestWrapDrawerWriteValidatesPayload(t *testing.T) {
	f := &fakeDrawer{bounds: image.Rect(0, 0, 8, 4), model: color.GrayModel}
	dev := WrapDrawer(f, &WrapOpts{Mode: Gray})

	if err := dev.Write(image.Rect(0, 0, 2, 1), []byte{0x01}); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("short payload error = %v, want ErrInvalidFrame", err)
	}
	if len(f.draws) != 0 {
		t.Errorf("draw calls = %d, want none for an invalid payload", len(f.draws))
	}
}

func TestWrapDrawerDrawErrorPropagates(t *testing.T) {
	boom := errors.New("spi timeout")
	f := &fakeDrawer{bounds: image.Rect(0, 0, 8, 4), model: color.GrayModel, err: boom}
	dev := WrapDrawer(f, &WrapOpts{Mode: Gray})

	if err := dev.Write(image.Rect(0, 0, 1, 1), []byte{0x01}); !errors.Is(err, boom) {
		t.Errorf("Write = %v, want %v", err, boom)
	}
}

func TestWrapDrawerResourcePassthrough(t *testing.T) {
	f := &fakeDrawer{bounds: image.Rect(0, 0, 8, 4), model: color.GrayModel}
	dev := WrapDrawer(f, nil)

	if got := dev.String(); got != "fake" {
		t.Errorf("String() = %q, want %q", got, "fake")
	}
	if err := dev.Halt(); err != nil {
		t.Fatalf("Halt: %v", err)
	}
	if !f.halted {
		t.Error("Halt did not reach the driver")
	}
}

func TestWrapDrawerThroughCanvas(t *testing.T) {
	f := &fakeDrawer{bounds: image.Rect(0, 0, 4, 2), model: color.GrayModel}
	dev := WrapDrawer(f, &WrapOpts{Mode: DetectMode(f.ColorModel())})

	canvas, err := NewCanvas(dev, nil)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	if err := canvas.Draw(func(s Surface) error { return nil }); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(f.draws) != 1 || f.draws[0].r != image.Rect(0, 0, 4, 2) {
		t.Fatalf("draws = %+v, want one full-frame draw", f.draws)
	}

	if err := canvas.Draw(func(s Surface) error {
		s.Set(2, 1, color.White)
		return nil
	}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(f.draws) != 2 || f.draws[1].r != image.Rect(2, 1, 3, 2) {
		t.Fatalf("draws = %+v, want a one-pixel differential draw", f.draws)
	}
}
