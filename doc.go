// Package luma implements a rendering pipeline for small OLED and LCD
// panels: it turns ordinary image.Image drawing into minimal pixel writes
// against a display device.
//
// The package is display-agnostic. Anything that exposes a bounded pixel
// rectangle and accepts raw pixel writes can sit at the end of the
// pipeline, from a periph.io hardware driver to the bundled emulators.
//
// # Basic Usage
//
// Example of driving an SSD1306 OLED over I2C:
//
//	package main
//
//	import (
//		"image"
//		"image/color"
//
//		"github.com/rm-hull/luma.core"
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/devices/v3/ssd1306"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Open the I2C bus and create the driver
//		bus, _ := i2creg.Open("")
//		drv, _ := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
//
//		// Adapt the driver to the pipeline and draw through a canvas
//		dev := luma.WrapDrawer(drv, nil)
//		canvas, _ := luma.NewCanvas(dev, nil)
//
//		canvas.Draw(func(s luma.Surface) error {
//			for x := 0; x < 20; x++ {
//				s.Set(10+x, 10, color.White)
//				s.Set(10+x, 30, color.White)
//			}
//			return nil
//		})
//	}
//
// Each Draw call hands out a surface pre-filled with the background, runs
// the drawing function, and flushes the result to the device.
//
// # Differential Updates
//
// By default a Canvas routes frames through a DiffToPrevious frame buffer,
// which compares each frame against the previous one and only sends the
// modified pixels for the smallest enclosing rectangle, to economize bus
// bandwidth. A display whose controller addresses several pixels per data
// byte can declare an alignment, and dirty regions are widened outward to
// honor it.
//
// Devices that cannot address sub-rectangles use FullFrame instead, which
// marks the whole display dirty on every frame:
//
//	canvas, _ := luma.NewCanvas(dev, &luma.CanvasOpts{
//		FrameBuffer: luma.NewFullFrame(dev),
//	})
//
// # Virtual Surfaces
//
// A Viewport is a drawing surface larger than the display, with a movable
// window onto it. Hotspots render themselves into the viewport when due,
// so a dashboard composes independently refreshing widgets:
//
//	vp, _ := luma.NewViewport(dev, 512, 64, nil)
//	vp.AddHotspot(clockWidget, 0, 0)
//	vp.AddHotspot(cpuWidget, 256, 0)
//
//	for {
//		vp.Refresh(false)
//		vp.SetPosition(x, 0) // pan across the virtual surface
//	}
//
// Terminal layers a scrolling text console with ANSI SGR color support
// over a Canvas, and ImageComposition pastes positioned images onto a
// shared backing surface for ticker-style effects.
//
// # Sprites and Timing
//
// SpriteSheet slices a film-strip image into frames and plays back named
// animation sequences declared in JSON. SpriteScheduler advances frames on
// a timetable, and Regulator holds an animation loop at a steady frame
// rate:
//
//	regulator := luma.NewRegulator(nil)
//	for {
//		canvas.Draw(drawFrame)
//		regulator.Wait()
//	}
//
// # Emulators
//
// The emulator subpackage renders the pixel stream without hardware:
// Capture writes numbered PNG files, GIFAnim records an animated GIF, and
// Term paints into a terminal window. The lumatest subpackage provides a
// scriptable in-memory device for tests.
//
// # Compatibility with periph.io
//
// WrapDrawer adapts any periph.io display.Drawer to the Device interface:
// https://pkg.go.dev/periph.io/x/conn/v3/display
//
// The ssd1306 driver in periph.io/x/devices has been tested; any driver
// honoring the Draw contract works.
package luma
