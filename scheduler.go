package luma

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// SchedulerOpts configures a SpriteScheduler.
type SchedulerOpts struct {
	// FPS sets a uniform frame rate. Default: 16.67.
	FPS float64

	// Durations gives each frame its own display time, overriding FPS.
	// Must hold exactly one positive duration per sheet frame.
	Durations []time.Duration

	// Once stops playback on the last frame instead of looping.
	Once bool

	// Pool, when set, pre-fetches upcoming frames in the background so
	// Tick never pays the extraction cost on the render path.
	Pool *Pool

	// Prefetch is how many frames ahead to extract. Default: 1 when a
	// Pool is set.
	Prefetch int
}

// SpriteScheduler advances through a sheet's frames on a fixed timetable.
// It keeps no clock of its own: the caller reports elapsed wall time
// through Tick and the scheduler works out which frame is current,
// carrying any remainder into the next call so long or irregular ticks
// never lose time.
type SpriteScheduler struct {
	sheet     *SpriteSheet
	durations []time.Duration
	once      bool

	pool     *Pool
	prefetch int

	cursor int
	carry  time.Duration
	done   bool
}

// NewSpriteScheduler creates a scheduler over sheet. opts can be nil, in
// which case every frame shows for 1/16.67 of a second and playback loops.
func NewSpriteScheduler(sheet *SpriteSheet, opts *SchedulerOpts) (*SpriteScheduler, error) {
	if opts == nil {
		opts = &SchedulerOpts{}
	}
	if sheet.Len() == 0 {
		return nil, errors.New("luma: cannot schedule an empty sheet")
	}

	durations := opts.Durations
	if durations == nil {
		fps := opts.FPS
		if fps <= 0 {
			fps = 16.67
		}
		per := time.Duration(float64(time.Second) / fps)
		durations = make([]time.Duration, sheet.Len())
		for i := range durations {
			durations[i] = per
		}
	} else {
		if len(durations) != sheet.Len() {
			return nil, fmt.Errorf("luma: %d durations for %d frames", len(durations), sheet.Len())
		}
		for i, d := range durations {
			if d <= 0 {
				return nil, fmt.Errorf("luma: frame %d has non-positive duration %v", i, d)
			}
		}
	}

	prefetch := opts.Prefetch
	if opts.Pool != nil && prefetch <= 0 {
		prefetch = 1
	}

	s := &SpriteScheduler{
		sheet:     sheet,
		durations: durations,
		once:      opts.Once,
		pool:      opts.Pool,
		prefetch:  prefetch,
	}
	s.schedulePrefetch()
	return s, nil
}

// Tick reports that elapsed wall time has passed and advances the current
// frame accordingly. Time left over after whole frames is carried into the
// next call. It returns true when the frame changed.
func (s *SpriteScheduler) Tick(elapsed time.Duration) bool {
	if s.done {
		return false
	}
	s.carry += elapsed
	moved := false
	for s.carry >= s.durations[s.cursor] {
		s.carry -= s.durations[s.cursor]
		if s.cursor+1 >= s.sheet.Len() {
			if s.once {
				s.done = true
				s.carry = 0
				break
			}
			s.cursor = 0
		} else {
			s.cursor++
		}
		moved = true
	}
	if moved {
		s.schedulePrefetch()
	}
	return moved
}

// CurrentFrame returns the index of the frame that should be on screen.
func (s *SpriteScheduler) CurrentFrame() int {
	return s.cursor
}

// CurrentImage returns the image for the current frame.
func (s *SpriteScheduler) CurrentImage() (image.Image, error) {
	return s.sheet.Frame(s.cursor)
}

// Done reports whether a run-once scheduler has finished. Looping
// schedulers never finish.
func (s *SpriteScheduler) Done() bool {
	return s.done
}

// schedulePrefetch queues extraction of the next frames on the pool. Lost
// submissions just mean the render path extracts on demand.
func (s *SpriteScheduler) schedulePrefetch() {
	if s.pool == nil {
		return
	}
	n := s.sheet.Len()
	for i := 1; i <= s.prefetch; i++ {
		idx := s.cursor + i
		if idx >= n {
			if s.once {
				break
			}
			idx %= n
		}
		if s.sheet.cached(idx) {
			continue
		}
		s.pool.TrySubmit(func() {
			s.sheet.Frame(idx)
		})
	}
}
