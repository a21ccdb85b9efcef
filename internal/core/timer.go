package core

import "time"

// FixedStep helps run simulation updates at a steady ticks-per-second rate
// from a loop that runs faster, such as a 60 FPS render loop driving an
// aquarium that only advances every 120ms.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	if tps <= 0 {
		tps = 60
	}
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// NewFixedInterval constructs a FixedStep that fires once per interval.
func NewFixedInterval(interval time.Duration) *FixedStep {
	if interval <= 0 {
		return NewFixedStep(60)
	}
	fs := &FixedStep{now: time.Now, step: interval}
	fs.accumulator = fs.step
	return fs
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Step returns the interval between ticks.
func (f *FixedStep) Step() time.Duration { return f.step }

// ShouldStep reports whether the simulation should advance by one tick.
func (f *FixedStep) ShouldStep() bool {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	delta := now.Sub(f.last)
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		// Never bank more than one pending tick; a stalled loop coalesces.
		if f.accumulator > f.step {
			f.accumulator = f.step
		}
		return true
	}
	return false
}
