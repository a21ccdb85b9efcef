// Package stream drives one aquarium at a fixed interval and writes each
// frame to a text sink.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fissh/internal/aquarium"
	"fissh/internal/terminal"
	pcore "fissh/pkg/core"
)

// DefaultInterval is the time between ticks.
const DefaultInterval = 120 * time.Millisecond

// ErrStopped is returned when starting a scheduler that already stopped.
var ErrStopped = errors.New("stream: scheduler stopped")

// Dimensions reports the current viewport in aquarium cells. It is called
// once per tick from the scheduler goroutine.
type Dimensions func() (rows, cols int)

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	interval     time.Duration
	params       aquarium.Params
	source       pcore.Source
	logger       *slog.Logger
	initialSpawn bool
}

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithParams sets the aquarium tuning.
func WithParams(p aquarium.Params) Option {
	return func(o *options) { o.params = p }
}

// WithSource injects the random source.
func WithSource(src pcore.Source) Option {
	return func(o *options) { o.source = src }
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithoutInitialSpawn leaves the tank empty until the first spawn trial.
func WithoutInitialSpawn() Option {
	return func(o *options) { o.initialSpawn = false }
}

// Scheduler owns one aquarium session: its tank, its sink and its timer.
//
// A scheduler is created idle, runs after Start and stops for good after
// Stop, a cancelled context or a failed write. Ticks never overlap: a tick
// that comes due while another is still running is skipped.
type Scheduler struct {
	tank     *aquarium.Tank
	sink     io.Writer
	dims     Dimensions
	interval time.Duration
	logger   *slog.Logger
	initial  bool

	mu      sync.Mutex // serialises ticks against Stop; guards fields below
	stopped bool
	writing bool
	err     error
	buf     []byte // reused per tick; busy keeps ticks from sharing it

	busy    atomic.Bool
	running atomic.Bool
	frames  atomic.Uint64
	skipped atomic.Uint64

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// New validates the viewport and builds an idle scheduler around a fresh
// tank. Nothing is written until Start or Tick.
func New(rows, cols int, sink io.Writer, dims Dimensions, opts ...Option) (*Scheduler, error) {
	if sink == nil {
		return nil, errors.New("stream: nil sink")
	}
	if dims == nil {
		return nil, errors.New("stream: nil dimension query")
	}
	o := options{
		interval:     DefaultInterval,
		params:       aquarium.DefaultParams(),
		initialSpawn: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = pcore.NewRNG(time.Now().UnixNano())
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	tank, err := aquarium.NewTank(rows, cols, o.params, o.source)
	if err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}
	return &Scheduler{
		tank:     tank,
		sink:     sink,
		dims:     dims,
		interval: o.interval,
		logger:   o.logger,
		initial:  o.initialSpawn,
		buf:      make([]byte, 0, len(terminal.CursorHome)+aquarium.FrameSize(rows, cols)),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start builds a scheduler and starts it: the entry point transports use.
func Start(ctx context.Context, rows, cols int, sink io.Writer, dims Dimensions, opts ...Option) (*Scheduler, error) {
	s, err := New(rows, cols, sink, dims, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Start hides the cursor, seeds the tank and begins ticking until ctx is
// done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return nil
	}
	if _, err := io.WriteString(s.sink, terminal.CursorHide); err != nil {
		s.err = fmt.Errorf("stream: write: %w", err)
		s.haltLocked()
		s.mu.Unlock()
		s.closeDone()
		return s.err
	}
	if s.initial {
		s.tank.SeedSwimmer()
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Debug("stream started", "rows", s.tank.Rows(), "cols", s.tank.Cols(), "interval", s.interval)
	go s.loop(ctx)
	return nil
}

func (s *Scheduler) closeDone() { s.doneOnce.Do(func() { close(s.done) }) }

func (s *Scheduler) loop(ctx context.Context) {
	defer s.closeDone()
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			s.mu.Lock()
			s.haltLocked()
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick runs one tick: sample the viewport, resize if it changed, spawn, move,
// render and write cursor-home plus the frame. It reports whether a frame
// was written. Tick is safe to call from any goroutine; a call that arrives
// while another tick is running is skipped.
//
// The write itself runs outside the lock, so Stop never waits on a sink that
// has stopped reading. A write that completes after Stop is not counted.
func (s *Scheduler) Tick() bool {
	if !s.busy.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		return false
	}
	defer s.busy.Store(false)

	frame, ok := s.prepare()
	if !ok {
		return false
	}
	_, err := s.sink.Write(frame)
	return s.finish(err)
}

// prepare advances the tank and renders the next frame into s.buf, marking a
// write in flight. It reports false once the scheduler has stopped.
func (s *Scheduler) prepare() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, false
	}

	rows, cols := s.dims()
	if s.tank.Advance(rows, cols) {
		s.logger.Debug("viewport resized", "rows", s.tank.Rows(), "cols", s.tank.Cols())
	}

	s.buf = append(s.buf[:0], terminal.CursorHome...)
	s.buf = s.tank.AppendFrame(s.buf)
	s.writing = true
	return s.buf, true
}

func (s *Scheduler) finish(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writing = false
	if s.stopped {
		return false
	}
	if err != nil {
		s.err = fmt.Errorf("stream: write: %w", err)
		s.logger.Debug("sink failed, stopping", "err", err)
		s.haltLocked()
		return false
	}
	s.frames.Add(1)
	return true
}

// haltLocked marks the scheduler stopped and releases the loop. s.mu must be
// held.
func (s *Scheduler) haltLocked() {
	s.stopped = true
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Stop cancels the timer and waits for the loop to exit. Once Stop returns no
// new write is started. A write already pending on a stalled sink is left to
// the transport, which unblocks it by closing the sink; Stop does not wait for
// it. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasStopped := s.stopped
	pending := s.writing
	s.haltLocked()
	s.mu.Unlock()

	if s.running.Load() && !pending {
		s.wg.Wait()
	}
	s.closeDone()
	if !wasStopped {
		s.logger.Debug("stream stopped", "frames", s.frames.Load(), "skipped", s.skipped.Load())
	}
}

// Done is closed once the scheduler has stopped.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Err returns the write error that stopped the scheduler, if any.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stopped reports whether the scheduler reached its terminal state.
func (s *Scheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Frames returns how many frames were written.
func (s *Scheduler) Frames() uint64 { return s.frames.Load() }

// Skipped returns how many ticks were dropped because one was in progress.
func (s *Scheduler) Skipped() uint64 { return s.skipped.Load() }

// Census returns the occupant counts of the session's tank.
func (s *Scheduler) Census() aquarium.Census {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tank.Census()
}

// Size returns the last applied viewport.
func (s *Scheduler) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tank.Rows(), s.tank.Cols()
}
