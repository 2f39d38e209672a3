package luma

import "time"

// RegulatorOpts configures a Regulator.
type RegulatorOpts struct {
	// FPS is the frame rate to hold. 0 means the default of 16.67 (a 60ms
	// frame); negative disables pacing entirely, so Wait never sleeps.
	FPS float64

	// Clock supplies current time. Default: SystemClock.
	Clock Clock

	// Sleep performs the pause. Default: time.Sleep.
	Sleep func(time.Duration)
}

// Regulator holds an animation loop at a steady frame rate. A fixed sleep
// per frame drifts with the cost of the work between frames; Wait instead
// measures the time since it last returned and sleeps only the remainder
// of the frame budget. If the loop body already overran the budget, Wait
// returns at once.
type Regulator struct {
	frame time.Duration // 0 when pacing is disabled
	clock Clock
	sleep func(time.Duration)

	start  time.Time
	last   time.Time
	called int64
}

// NewRegulator creates a Regulator. opts can be nil for a 16.67 fps default.
func NewRegulator(opts *RegulatorOpts) *Regulator {
	if opts == nil {
		opts = &RegulatorOpts{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var frame time.Duration
	switch {
	case opts.FPS == 0:
		defaultFPS := 16.67
		frame = time.Duration(float64(time.Second) / defaultFPS)
	case opts.FPS > 0:
		frame = time.Duration(float64(time.Second) / opts.FPS)
	}

	now := clock.Now()
	return &Regulator{
		frame: frame,
		clock: clock,
		sleep: sleep,
		start: now,
		last:  now,
	}
}

// Wait sleeps for however much of the frame budget is left since the
// previous call, then marks the start of the next frame. Call it once per
// loop iteration, after rendering.
func (r *Regulator) Wait() {
	r.called++
	if r.frame > 0 {
		if d := r.frame - r.clock.Now().Sub(r.last); d > 0 {
			r.sleep(d)
		}
	}
	r.last = r.clock.Now()
}

// EffectiveFPS reports the frame rate actually achieved since the
// regulator was created. It should track the configured FPS closely, but
// no guarantee is given.
func (r *Regulator) EffectiveFPS() float64 {
	elapsed := r.clock.Now().Sub(r.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(r.called) / elapsed
}
