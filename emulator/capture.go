package emulator

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Capture is a pseudo-device that writes the frame to a numbered PNG file
// on every device write.
type Capture struct {
	emulated
	template string
	count    int
}

// NewCapture creates a Capture. fileTemplate is an fmt pattern receiving
// the frame number; empty means "luma_%06d.png". opts can be nil.
func NewCapture(fileTemplate string, opts *Opts) *Capture {
	if fileTemplate == "" {
		fileTemplate = "luma_%06d.png"
	}
	return &Capture{emulated: newEmulated(opts), template: fileTemplate}
}

// Write patches the update into the shadow frame and dumps the whole frame
// to the next numbered file.
func (c *Capture) Write(r image.Rectangle, pix []byte) error {
	if err := c.apply(r, pix); err != nil {
		return err
	}
	c.count++
	name := fmt.Sprintf(c.template, c.count)
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("emulator: %w", err)
	}
	if err := png.Encode(f, c.scaled()); err != nil {
		f.Close()
		return fmt.Errorf("emulator: encode %s: %w", name, err)
	}
	return f.Close()
}

// Count returns the number of files written.
func (c *Capture) Count() int {
	return c.count
}
