// Package player drives a Sequence tick by tick into a Sink.
//
// A Player only holds configuration. Every Play or Step call runs its own
// state machine:
//
//	Idle → Running  → Done   (Play: sleeps one tick period between emissions)
//	Idle → Stepping → Done   (Step: waits for Advance or Quit after each tick)
//
// Whatever happens during playback, the last value handed to the sink is the
// empty set, so no button is left held.
package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/compose"
	"github.com/ez2torta/SConE/internal/sequence"
)

// DefaultFPS is the tick rate used when none is configured.
const DefaultFPS = 60

// Sink receives one composed button set per tick.
type Sink interface {
	Apply(set button.Set) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(button.Set) error

// Apply calls f.
func (f SinkFunc) Apply(set button.Set) error { return f(set) }

// Releaser is a Sink that tells the final release apart from empty ticks
// inside a sequence.
type Releaser interface {
	Sink
	Release() error
}

// Release hands s the final empty set: through Release when s is a
// Releaser, otherwise as Apply(button.Empty).
func Release(s Sink) error {
	if r, ok := s.(Releaser); ok {
		return r.Release()
	}
	return s.Apply(button.Empty)
}

// Clock is the time source. Sleep is the only place Running playback
// suspends.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep calls time.Sleep.
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SleepContext waits d or until ctx is done.
func (SystemClock) SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ContextSleeper is a Clock whose sleeps can be cut short by a context.
type ContextSleeper interface {
	SleepContext(ctx context.Context, d time.Duration) error
}

// Wait sleeps d on c. It returns ctx.Err() if ctx is done first, or once
// the sleep ends on clocks that cannot be interrupted.
func Wait(ctx context.Context, c Clock, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	if cs, ok := c.(ContextSleeper); ok {
		return cs.SleepContext(ctx, d)
	}
	c.Sleep(d)
	return ctx.Err()
}

// State is the playback state of a single run.
type State int

const (
	Idle State = iota
	Running
	Stepping
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stepping:
		return "stepping"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Report describes a finished run.
type Report struct {
	State    State
	Ticks    int  // ticks emitted, not counting the release
	Total    int  // total frames of the sequence
	Quit     bool // stepping ended early on Quit or cancellation
	Released bool // the final empty set reached the sink
}

// Player plays sequences into a sink.
type Player struct {
	sink   Sink
	fps    int
	mirror bool
	start  int
	clock  Clock
	logger *slog.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithFPS sets the tick rate. Values below 1 are ignored.
func WithFPS(fps int) Option {
	return func(p *Player) {
		if fps > 0 {
			p.fps = fps
		}
	}
}

// WithMirror swaps LEFT and RIGHT in every emitted set.
func WithMirror(on bool) Option {
	return func(p *Player) { p.mirror = on }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(p *Player) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// StartAt skips the ticks before tick.
func StartAt(tick int) Option {
	return func(p *Player) {
		if tick > 0 {
			p.start = tick
		}
	}
}

// New returns a Player writing to sink.
func New(sink Sink, opts ...Option) *Player {
	p := &Player{
		sink:   sink,
		fps:    DefaultFPS,
		clock:  SystemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FPS returns the configured tick rate.
func (p *Player) FPS() int { return p.fps }

// Clock returns the time source playback sleeps on.
func (p *Player) Clock() Clock { return p.clock }

// TickPeriod is the duration of one tick.
func (p *Player) TickPeriod() time.Duration {
	return time.Second / time.Duration(p.fps)
}

// Play emits every tick of seq at full speed. Once started the sequence
// always runs to completion; ctx is only checked before the first tick.
func (p *Player) Play(ctx context.Context, seq sequence.Sequence) (Report, error) {
	r := p.begin(seq, Running)
	if err := ctx.Err(); err != nil {
		return r.finish(err)
	}

	period := p.TickPeriod()
	for tick := p.start; tick < r.report.Total; tick++ {
		began := p.clock.Now()
		if err := r.emit(tick); err != nil {
			return r.finish(err)
		}
		// Sleep out the rest of this tick. A slow sink delays later
		// ticks; nothing is skipped to catch up.
		if rest := period - p.clock.Now().Sub(began); rest > 0 {
			p.clock.Sleep(rest)
		}
	}
	return r.finish(nil)
}

// Step emits one tick at a time, waiting on stepper between ticks. Quit,
// a stepper error or ctx cancellation ends playback early.
func (p *Player) Step(ctx context.Context, seq sequence.Sequence, stepper Stepper) (Report, error) {
	r := p.begin(seq, Stepping)

	for tick := p.start; tick < r.report.Total; tick++ {
		if err := ctx.Err(); err != nil {
			r.report.Quit = true
			return r.finish(nil)
		}
		if err := r.emit(tick); err != nil {
			return r.finish(err)
		}
		cmd, err := stepper.Await(ctx, tick, r.last)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				r.report.Quit = true
				return r.finish(nil)
			}
			return r.finish(err)
		}
		if cmd == Quit {
			r.report.Quit = true
			return r.finish(nil)
		}
	}
	return r.finish(nil)
}

// run is the per-call state.
type run struct {
	p        *Player
	name     string
	timeline *compose.Timeline
	report   Report
	last     button.Set
}

func (p *Player) begin(seq sequence.Sequence, state State) *run {
	tl := compose.NewTimeline(seq)
	r := &run{
		p:        p,
		name:     seq.Name(),
		timeline: tl,
		report:   Report{State: Idle, Total: tl.TotalFrames()},
	}
	r.transition(state)
	return r
}

func (r *run) transition(to State) {
	r.p.logger.Debug("playback state", "sequence", r.name, "from", r.report.State.String(), "to", to.String())
	r.report.State = to
}

func (r *run) emit(tick int) error {
	set := r.timeline.At(tick)
	if r.p.mirror {
		set = set.Mirror()
	}
	if err := r.p.sink.Apply(set); err != nil {
		return &SinkError{Tick: tick, Err: err}
	}
	r.last = set
	r.report.Ticks++
	return nil
}

// finish releases every button and closes the run. The release is
// attempted even when err is set; its own failure is joined to err.
func (r *run) finish(err error) (Report, error) {
	if relErr := Release(r.p.sink); relErr != nil {
		err = errors.Join(err, &SinkError{Tick: ReleaseTick, Err: relErr})
	} else {
		r.report.Released = true
	}
	r.transition(Done)
	if err != nil {
		r.p.logger.Warn("playback failed", "sequence", r.name, "ticks", r.report.Ticks, "error", err)
	} else {
		r.p.logger.Info("playback finished", "sequence", r.name, "ticks", r.report.Ticks, "quit", r.report.Quit)
	}
	return r.report, err
}
