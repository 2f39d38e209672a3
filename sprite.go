package luma

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"sync"
)

// SheetOpts configures a plain grid SpriteSheet.
type SheetOpts struct {
	// Count limits the number of frames. Default: the full grid capacity.
	Count int

	// RegX and RegY shift the frame grid's registration point, trimming
	// that many pixels from each edge of the source image.
	RegX, RegY int
}

// spriteAnim is one named frame sequence.
type spriteAnim struct {
	frames []frameRef
	speed  float64
	next   string
}

// frameRef is a single entry of an animation's frame list: either a sheet
// index or the name of another animation played through as a subroutine.
type frameRef struct {
	index int
	seq   string
}

func (f *frameRef) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		f.index = n
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f.seq = s
		return nil
	}
	return fmt.Errorf("frame must be an index or a sequence name, got %s", string(b))
}

// SpriteSheet slices a single source image into equally sized frames,
// numbered left to right, top to bottom. Extracted frames are cached by
// index, so repeated access and background pre-fetching converge on one
// copy per frame. All methods are safe for concurrent use.
type SpriteSheet struct {
	src            image.Image
	origin         image.Point
	width, height  int
	frameW, frameH int
	perRow         int
	count          int
	imagePath      string

	animations map[string]*spriteAnim

	mu    sync.Mutex
	cache map[int]image.Image
}

// NewSpriteSheet slices img into frameW x frameH frames. The image
// dimensions (after registration trimming) must be exact multiples of the
// frame size. opts can be nil for defaults.
func NewSpriteSheet(img image.Image, frameW, frameH int, opts *SheetOpts) (*SpriteSheet, error) {
	if opts == nil {
		opts = &SheetOpts{}
	}
	if frameW <= 0 || frameH <= 0 {
		return nil, fmt.Errorf("luma: frame size %dx%d is empty", frameW, frameH)
	}

	b := img.Bounds()
	w := b.Dx() - 2*opts.RegX
	h := b.Dy() - 2*opts.RegY
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("luma: registration point (%d,%d) leaves no image", opts.RegX, opts.RegY)
	}
	if w%frameW != 0 || h%frameH != 0 {
		return nil, fmt.Errorf("luma: sheet %dx%d is not a whole number of %dx%d frames",
			w, h, frameW, frameH)
	}

	capacity := (w / frameW) * (h / frameH)
	count := opts.Count
	if count <= 0 {
		count = capacity
	} else if count > capacity {
		return nil, fmt.Errorf("luma: sheet holds %d frames, count %d requested", capacity, count)
	}

	return &SpriteSheet{
		src:        img,
		origin:     b.Min.Add(image.Pt(opts.RegX, opts.RegY)),
		width:      w,
		height:     h,
		frameW:     frameW,
		frameH:     frameH,
		perRow:     w / frameW,
		count:      count,
		animations: map[string]*spriteAnim{},
		cache:      map[int]image.Image{},
	}, nil
}

// LoadSpriteSheet builds a SpriteSheet from a JSON descriptor and its
// source image. The descriptor declares the frame grid and optionally named
// animations:
//
//	{
//	  "image": "runner.png",
//	  "frames": {"width": 64, "height": 67, "regX": 0, "regY": 2},
//	  "animations": {
//	    "run-left":  {"frames": [9, 8, 7, 6, 5], "next": "run-left"},
//	    "jump":      {"frames": [12, 13, "run-left"], "speed": 0.5}
//	  }
//	}
//
// An animation's frame list mixes sheet indexes with names of other
// animations, which are played through in place. speed stretches or
// compresses playback (0.5 repeats every frame twice), next chains into
// another animation when the sequence ends. The caller decodes the image
// named by "image" and passes it in.
func LoadSpriteSheet(data []byte, img image.Image) (*SpriteSheet, error) {
	var desc struct {
		Image  string `json:"image"`
		Frames struct {
			Width  int `json:"width"`
			Height int `json:"height"`
			RegX   int `json:"regX"`
			RegY   int `json:"regY"`
			Count  int `json:"count"`
		} `json:"frames"`
		Animations map[string]struct {
			Frames []frameRef `json:"frames"`
			Speed  float64    `json:"speed"`
			Next   string     `json:"next"`
		} `json:"animations"`
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("luma: failed to parse sprite sheet JSON: %w", err)
	}

	s, err := NewSpriteSheet(img, desc.Frames.Width, desc.Frames.Height, &SheetOpts{
		Count: desc.Frames.Count,
		RegX:  desc.Frames.RegX,
		RegY:  desc.Frames.RegY,
	})
	if err != nil {
		return nil, err
	}
	s.imagePath = desc.Image

	for name, a := range desc.Animations {
		speed := a.Speed
		if speed == 0 {
			speed = 1
		}
		if speed < 0 {
			return nil, fmt.Errorf("luma: animation %q has negative speed %v", name, speed)
		}
		if len(a.Frames) == 0 {
			return nil, fmt.Errorf("luma: animation %q has no frames", name)
		}
		s.animations[name] = &spriteAnim{frames: a.Frames, speed: speed, next: a.Next}
	}
	if err := s.checkAnimations(); err != nil {
		return nil, err
	}
	return s, nil
}

// checkAnimations validates every frame index and sequence reference, and
// rejects subroutine cycles, which could never yield a frame.
func (s *SpriteSheet) checkAnimations() error {
	for name, a := range s.animations {
		for _, ref := range a.frames {
			if ref.seq != "" {
				if _, ok := s.animations[ref.seq]; !ok {
					return fmt.Errorf("luma: animation %q references unknown sequence %q", name, ref.seq)
				}
				continue
			}
			if ref.index < 0 || ref.index >= s.count {
				return fmt.Errorf("luma: animation %q frame %d out of range [0,%d)", name, ref.index, s.count)
			}
		}
		if a.next != "" {
			if _, ok := s.animations[a.next]; !ok {
				return fmt.Errorf("luma: animation %q chains to unknown sequence %q", name, a.next)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := map[string]int{}
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("luma: animation %q is part of a subroutine cycle", name)
		case done:
			return nil
		}
		state[name] = visiting
		for _, ref := range s.animations[name].frames {
			if ref.seq == "" {
				continue
			}
			if err := visit(ref.seq); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}
	for name := range s.animations {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of frames in the sheet.
func (s *SpriteSheet) Len() int {
	return s.count
}

// FrameSize returns the pixel dimensions of one frame.
func (s *SpriteSheet) FrameSize() (w, h int) {
	return s.frameW, s.frameH
}

// ImagePath returns the "image" field of the JSON descriptor, empty for
// sheets built directly from an image.
func (s *SpriteSheet) ImagePath() string {
	return s.imagePath
}

// Frame returns frame i, extracting and caching it on first access.
// Subsequent calls return the same image.
func (s *SpriteSheet) Frame(i int) (image.Image, error) {
	if i < 0 || i >= s.count {
		return nil, fmt.Errorf("luma: frame index %d out of range [0,%d)", i, s.count)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.cache[i]; ok {
		return img, nil
	}
	left := (i % s.perRow) * s.frameW
	top := (i / s.perRow) * s.frameH
	out := image.NewRGBA(image.Rect(0, 0, s.frameW, s.frameH))
	draw.Draw(out, out.Bounds(), s.src, s.origin.Add(image.Pt(left, top)), draw.Src)
	s.cache[i] = out
	return out, nil
}

// cached reports whether frame i has been extracted already.
func (s *SpriteSheet) cached(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[i]
	return ok
}

// Animate returns an iterator over the named animation's frames. The
// iterator expands subroutine references in place and follows next chains,
// so it can be endless; it reports false once a finite animation ends.
func (s *SpriteSheet) Animate(name string) (*Animation, error) {
	a, ok := s.animations[name]
	if !ok {
		return nil, fmt.Errorf("luma: unknown animation %q", name)
	}
	return &Animation{sheet: s, stack: []animLevel{{anim: a}}}, nil
}

type animLevel struct {
	anim *spriteAnim
	pos  float64
}

// Animation walks a named frame sequence.
type Animation struct {
	sheet *SpriteSheet
	stack []animLevel
}

// Next returns the next frame of the animation, or false when it has
// ended.
func (a *Animation) Next() (image.Image, bool) {
	for len(a.stack) > 0 {
		lvl := &a.stack[len(a.stack)-1]
		if int(lvl.pos) >= len(lvl.anim.frames) {
			if lvl.anim.next != "" {
				// Tail-chain into the next sequence on the same level.
				lvl.anim = a.sheet.animations[lvl.anim.next]
				lvl.pos = 0
				continue
			}
			a.stack = a.stack[:len(a.stack)-1]
			continue
		}
		ref := lvl.anim.frames[int(lvl.pos)]
		lvl.pos += lvl.anim.speed
		if ref.seq != "" {
			a.stack = append(a.stack, animLevel{anim: a.sheet.animations[ref.seq]})
			continue
		}
		img, err := a.sheet.Frame(ref.index)
		if err != nil {
			return nil, false
		}
		return img, true
	}
	return nil, false
}
