package luma

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidFrame is wrapped by errors returned when pixel data does not
// match the receiving device: zero-sized images, dimension mismatches and
// short pixel buffers. Device write failures are never wrapped; they
// propagate unchanged from the Device.
var ErrInvalidFrame = errors.New("luma: invalid frame")

// HotspotError reports a hotspot whose content generator failed during a
// viewport refresh. The failing hotspot is skipped for that cycle and its
// last rendered content is left on screen.
type HotspotError struct {
	Hotspot Hotspot
	At      image.Point
	Err     error
}

func (e *HotspotError) Error() string {
	return fmt.Sprintf("luma: hotspot at (%d,%d): %v", e.At.X, e.At.Y, e.Err)
}

func (e *HotspotError) Unwrap() error {
	return e.Err
}

func errFrameSize(what string, got, want image.Rectangle) error {
	return fmt.Errorf("luma: %s is %dx%d, device expects %dx%d: %w",
		what, got.Dx(), got.Dy(), want.Dx(), want.Dy(), ErrInvalidFrame)
}
