// Package drill repeats a sequence on a player, for practice loops.
package drill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sequence"
)

// Forever repeats until the context is cancelled.
const Forever = -1

// DefaultPause separates passes in unbounded mode. The pause runs on the
// player's clock.
const DefaultPause = time.Second

// ErrInvalidRepeatCount is returned for a count of 0 or below -1.
var ErrInvalidRepeatCount = errors.New("invalid repeat count")

// Result reports how a drill ended.
type Result struct {
	Passes    int  // passes played to completion
	Cancelled bool // an unbounded drill was stopped by its context
}

// Runner plays a sequence repeatedly on one player.
type Runner struct {
	player *player.Player
	pause  time.Duration
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithPause sets the delay between unbounded passes. Negative values are
// treated as zero.
func WithPause(d time.Duration) Option {
	return func(r *Runner) { r.pause = max(d, 0) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Runner driving p.
func New(p *player.Player, opts ...Option) *Runner {
	r := &Runner{
		player: p,
		pause:  DefaultPause,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays seq count times, or until ctx is cancelled when count is
// Forever. ctx is checked before each pass and during the pause; a pass
// that has started always plays to the end.
//
// Cancelling an unbounded drill is a normal stop. Cancelling a bounded one
// returns ctx.Err() along with the passes completed so far.
func (r *Runner) Run(ctx context.Context, seq sequence.Sequence, count int) (Result, error) {
	if count == 0 || count < Forever {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidRepeatCount, count)
	}
	unbounded := count == Forever

	var res Result
	for pass := 0; unbounded || pass < count; pass++ {
		if err := ctx.Err(); err != nil {
			return r.stopped(res, unbounded, err)
		}
		if unbounded && pass > 0 {
			if err := r.wait(ctx); err != nil {
				return r.stopped(res, unbounded, err)
			}
		}

		r.logger.Debug("drill pass", "sequence", seq.Name(), "pass", pass+1)
		if _, err := r.player.Play(context.WithoutCancel(ctx), seq); err != nil {
			return res, fmt.Errorf("drill pass %d: %w", pass+1, err)
		}
		res.Passes++
	}
	r.logger.Info("drill finished", "sequence", seq.Name(), "passes", res.Passes)
	return res, nil
}

func (r *Runner) wait(ctx context.Context) error {
	if r.pause == 0 {
		return ctx.Err()
	}
	return player.Wait(ctx, r.player.Clock(), r.pause)
}

func (r *Runner) stopped(res Result, unbounded bool, err error) (Result, error) {
	r.logger.Info("drill stopped", "passes", res.Passes, "reason", err)
	if unbounded {
		res.Cancelled = true
		return res, nil
	}
	return res, err
}
