package luma

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"
	"math"
	"sync"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Hotspot is a region of a viewport's virtual surface bound to an
// independent content generator. The viewport asks Due whether the content
// wants redrawing this cycle and, when it does, calls Render with a fresh
// surface of exactly Size at a zero origin.
//
// Render may be called from a worker goroutine when the viewport runs with
// a pool, but never concurrently with Due for the same refresh cycle.
type Hotspot interface {
	Size() (w, h int)
	Due(now time.Time) bool
	Render(now time.Time, dst Surface) error
}

// funcHotspot redraws on every refresh cycle.
type funcHotspot struct {
	w, h int
	fn   func(Surface) error
}

// NewHotspot returns a Hotspot that is due on every refresh cycle. fn draws
// one full frame into the surface it is given.
func NewHotspot(w, h int, fn func(Surface) error) Hotspot {
	return &funcHotspot{w: w, h: h, fn: fn}
}

func (h *funcHotspot) Size() (int, int) {
	return h.w, h.h
}

func (h *funcHotspot) Due(time.Time) bool {
	return true
}

func (h *funcHotspot) Render(_ time.Time, dst Surface) error {
	return h.fn(dst)
}

// SnapshotHotspot is a Hotspot that limits how often its content is
// regenerated. It is due when at least interval has elapsed since the last
// successful render, and always on the first cycle. A failed render does not
// count, so the content is retried on the next refresh.
type SnapshotHotspot struct {
	w, h     int
	interval time.Duration
	fn       func(Surface) error

	mu   sync.Mutex
	last time.Time
}

// NewSnapshot returns a Hotspot redrawn at most once per interval.
func NewSnapshot(w, h int, interval time.Duration, fn func(Surface) error) *SnapshotHotspot {
	return &SnapshotHotspot{w: w, h: h, interval: interval, fn: fn}
}

func (s *SnapshotHotspot) Size() (int, int) {
	return s.w, s.h
}

func (s *SnapshotHotspot) Due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.IsZero() || now.Sub(s.last) >= s.interval
}

func (s *SnapshotHotspot) Render(now time.Time, dst Surface) error {
	if err := s.fn(dst); err != nil {
		return err
	}
	s.mu.Lock()
	s.last = now
	s.mu.Unlock()
	return nil
}

// LastUpdated returns the time of the last successful render, zero before
// the first one.
func (s *SnapshotHotspot) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// ViewportOpts configures a Viewport.
type ViewportOpts struct {
	// Clock is the time source for hotspot scheduling. Default: SystemClock.
	Clock Clock

	// Workers > 0 gives the viewport its own pool of that many workers for
	// hotspot generation, closed by Viewport.Close.
	Workers int

	// Pool is an externally owned worker pool, shared e.g. with sprite
	// pre-fetching. Takes precedence over Workers and is not closed by the
	// viewport.
	Pool *Pool

	// OnError receives a *HotspotError when a content generator fails. The
	// failing hotspot is skipped for the cycle. Default: log.Printf.
	OnError func(error)

	// FrameBuffer is the device update strategy. Default: DiffToPrevious.
	FrameBuffer FrameBuffer

	// Dither enables error-diffusion dithering when reducing to Mono.
	Dither bool
}

type placedHotspot struct {
	h  Hotspot
	at image.Point
}

// Viewport maintains a virtual drawing surface larger than the device and
// projects a device-sized window of it onto the display. Hotspots composite
// generated content into the virtual surface; moving the window pans across
// it. Only one goroutine may drive a viewport.
type Viewport struct {
	dev      Device
	canvas   *Canvas
	clock    Clock
	backing  *image.RGBA
	size     image.Point
	pos      image.Point
	hotspots []placedHotspot
	onError  func(error)
	pool     *Pool
	ownPool  bool
	scroll   *scrollAnim
}

// NewViewport creates a viewport with a w x h virtual surface for d. The
// virtual surface must be at least as large as the device. opts can be nil
// for defaults.
func NewViewport(d Device, w, h int, opts *ViewportOpts) (*Viewport, error) {
	if opts == nil {
		opts = &ViewportOpts{}
	}
	bounds := d.Bounds()
	if w < bounds.Dx() || h < bounds.Dy() {
		return nil, fmt.Errorf("luma: virtual surface %dx%d is smaller than device %dx%d",
			w, h, bounds.Dx(), bounds.Dy())
	}

	canvas, err := NewCanvas(d, &CanvasOpts{FrameBuffer: opts.FrameBuffer, Dither: opts.Dither})
	if err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	onError := opts.OnError
	if onError == nil {
		onError = func(err error) { log.Printf("%v", err) }
	}

	pool := opts.Pool
	ownPool := false
	if pool == nil && opts.Workers > 0 {
		pool = NewPool(opts.Workers, 2*opts.Workers)
		ownPool = true
	}

	backing := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(backing, backing.Bounds(), image.Black, image.Point{}, draw.Src)

	return &Viewport{
		dev:     d,
		canvas:  canvas,
		clock:   clock,
		backing: backing,
		size:    image.Pt(bounds.Dx(), bounds.Dy()),
		onError: onError,
		pool:    pool,
		ownPool: ownPool,
	}, nil
}

// Bounds returns the bounds of the virtual surface.
func (v *Viewport) Bounds() image.Rectangle {
	return v.backing.Bounds()
}

// Position returns the top-left corner of the visible window.
func (v *Viewport) Position() image.Point {
	return v.pos
}

// Visible returns the rectangle of the virtual surface currently projected
// onto the device.
func (v *Viewport) Visible() image.Rectangle {
	return image.Rectangle{Min: v.pos, Max: v.pos.Add(v.size)}
}

// SetPosition moves the visible window so its top-left corner sits at
// (x, y), clamped to keep the window inside the virtual surface. It reports
// whether the window actually moved; the move becomes visible on the next
// Refresh.
func (v *Viewport) SetPosition(x, y int) bool {
	p := v.clampPos(x, y)
	if p == v.pos {
		return false
	}
	v.pos = p
	return true
}

func (v *Viewport) clampPos(x, y int) image.Point {
	b := v.backing.Bounds()
	maxX := b.Dx() - v.size.X
	maxY := b.Dy() - v.size.Y
	if x < 0 {
		x = 0
	} else if x > maxX {
		x = maxX
	}
	if y < 0 {
		y = 0
	} else if y > maxY {
		y = maxY
	}
	return image.Pt(x, y)
}

// AddHotspot pins h to the virtual surface with its top-left corner at
// (x, y). The hotspot must fit entirely inside the virtual surface. The
// same hotspot may be added at several positions. Later additions are
// composited over earlier ones where they overlap.
func (v *Viewport) AddHotspot(h Hotspot, x, y int) error {
	hw, hh := h.Size()
	vb := v.backing.Bounds()
	if hw <= 0 || hh <= 0 {
		return fmt.Errorf("luma: hotspot size %dx%d is empty", hw, hh)
	}
	if x < 0 || y < 0 || x+hw > vb.Dx() || y+hh > vb.Dy() {
		return fmt.Errorf("luma: hotspot %dx%d at (%d,%d) does not fit virtual surface %dx%d",
			hw, hh, x, y, vb.Dx(), vb.Dy())
	}
	v.hotspots = append(v.hotspots, placedHotspot{h: h, at: image.Pt(x, y)})
	return nil
}

// RemoveHotspot removes the hotspot previously added at (x, y) and erases
// its region of the virtual surface. Removal takes effect immediately: the
// hotspot is excluded from all future refresh cycles.
func (v *Viewport) RemoveHotspot(h Hotspot, x, y int) error {
	at := image.Pt(x, y)
	for i, ph := range v.hotspots {
		if ph.h != h || ph.at != at {
			continue
		}
		v.hotspots = append(v.hotspots[:i], v.hotspots[i+1:]...)
		hw, hh := h.Size()
		r := image.Rectangle{Min: at, Max: at.Add(image.Pt(hw, hh))}
		draw.Draw(v.backing, r, image.Black, image.Point{}, draw.Src)
		return nil
	}
	return errors.New("luma: hotspot not found at this position")
}

// Refresh regenerates due hotspots, composites them into the virtual
// surface and renders the visible window to the device. With force set,
// every hotspot is regenerated regardless of its own schedule.
//
// Hotspot failures do not abort the cycle: the error goes to the OnError
// hook, the hotspot's previous content stays in place and the remaining
// hotspots still update. A device write failure is returned unchanged.
func (v *Viewport) Refresh(force bool) error {
	now := v.clock.Now()

	type job struct {
		ph  placedHotspot
		img *image.RGBA
		err error
	}
	var jobs []*job
	for _, ph := range v.hotspots {
		if !force && !ph.h.Due(now) {
			continue
		}
		hw, hh := ph.h.Size()
		jobs = append(jobs, &job{ph: ph, img: image.NewRGBA(image.Rect(0, 0, hw, hh))})
	}

	// Workers only produce pixels; compositing stays on this goroutine so
	// overlap order is stable.
	var wg sync.WaitGroup
	for _, j := range jobs {
		j := j
		task := func() {
			defer wg.Done()
			j.err = j.ph.h.Render(now, j.img)
		}
		wg.Add(1)
		if v.pool == nil || !v.pool.TrySubmit(task) {
			task()
		}
	}
	wg.Wait()

	for _, j := range jobs {
		if j.err != nil {
			v.onError(&HotspotError{Hotspot: j.ph.h, At: j.ph.at, Err: j.err})
			continue
		}
		r := image.Rectangle{Min: j.ph.at, Max: j.ph.at.Add(image.Pt(j.img.Rect.Dx(), j.img.Rect.Dy()))}
		draw.Draw(v.backing, r, j.img, image.Point{}, draw.Src)
	}

	return v.canvas.Render(v.backing.SubImage(v.Visible()))
}

// Display pastes a full virtual-sized image onto the virtual surface and
// refreshes. Content previously composited by hotspots is overwritten.
func (v *Viewport) Display(img image.Image) error {
	vb := v.backing.Bounds()
	if b := img.Bounds(); b.Dx() != vb.Dx() || b.Dy() != vb.Dy() {
		return errFrameSize("image", b, vb)
	}
	draw.Draw(v.backing, vb, img, img.Bounds().Min, draw.Src)
	return v.Refresh(false)
}

type scrollAnim struct {
	tweenX, tweenY *gween.Tween
	doneX, doneY   bool
}

// ScrollTo starts an eased scroll of the visible window towards (x, y),
// clamped to the virtual bounds. fn selects the easing curve, nil for
// linear. Any scroll already in progress is replaced.
func (v *Viewport) ScrollTo(x, y int, d time.Duration, fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.Linear
	}
	target := v.clampPos(x, y)
	secs := float32(d.Seconds())
	v.scroll = &scrollAnim{
		tweenX: gween.New(float32(v.pos.X), float32(target.X), secs, fn),
		tweenY: gween.New(float32(v.pos.Y), float32(target.Y), secs, fn),
	}
}

// Animate advances an active scroll by dt, moving the visible window. It
// reports whether the scroll is still in progress. The movement becomes
// visible on the next Refresh.
func (v *Viewport) Animate(dt time.Duration) bool {
	s := v.scroll
	if s == nil {
		return false
	}
	step := float32(dt.Seconds())
	x, y := float32(v.pos.X), float32(v.pos.Y)
	if !s.doneX {
		x, s.doneX = s.tweenX.Update(step)
	}
	if !s.doneY {
		y, s.doneY = s.tweenY.Update(step)
	}
	v.SetPosition(int(math.Round(float64(x))), int(math.Round(float64(y))))
	if s.doneX && s.doneY {
		v.scroll = nil
		return false
	}
	return true
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (v *Viewport) Scrolling() bool {
	return v.scroll != nil
}

// Close releases the viewport's own worker pool, if it has one. Shared
// pools passed in via ViewportOpts.Pool are left running.
func (v *Viewport) Close() {
	if v.ownPool && v.pool != nil {
		v.pool.Close()
		v.pool = nil
	}
}
