package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/catalog"
	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sequence"
	"github.com/ez2torta/SConE/internal/sink"
	"github.com/ez2torta/SConE/internal/store"
	"github.com/ez2torta/SConE/internal/testutil"
)

// Harness is the test execution engine.
// It plays scenarios on a fake clock with sequential session IDs.
type Harness struct {
	store  *store.Store
	clock  *testutil.FakeClock
	logger *slog.Logger
}

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger sets the logger. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Resolve the motion (or builtin)
// 2. Check an expected resolution failure, if any
// 3. Play or step the sequence into a recorder and a journal
// 4. Replay the journal and compare it with the played sequence
// 5. Evaluate assertions
//
// A returned error means the scenario could not run at all (unreadable
// catalog, store failure). Failed expectations are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDs(scenario.Name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewFakeClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	result := NewResult()

	seq, err := h.resolve(scenario)
	if err != nil && !catalog.IsResolutionError(err) {
		return nil, fmt.Errorf("failed to load sequence: %w", err)
	}

	if scenario.Expect != nil {
		switch {
		case err == nil:
			result.AddError(fmt.Sprintf("expected %s error, resolved %d frames", scenario.Expect.Error, seq.TotalFrames()))
		case errorKind(err) != scenario.Expect.Error:
			result.AddError(fmt.Sprintf("expected %s error, got %v", scenario.Expect.Error, err))
		default:
			result.ResolveError = err.Error()
		}
		return result, nil
	}
	if err != nil {
		result.AddError(fmt.Sprintf("resolve: %v", err))
		return result, nil
	}

	result.TotalFrames = seq.TotalFrames()
	if err := h.play(ctx, scenario, seq, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) resolve(s *Scenario) (sequence.Sequence, error) {
	if s.Builtin != "" {
		seq, ok := sequence.Builtin(s.Builtin)
		if !ok {
			return sequence.Sequence{}, fmt.Errorf("unknown builtin %q", s.Builtin)
		}
		return seq, nil
	}

	c, _, err := catalog.Load(s.Catalog, catalog.WithLogger(h.logger))
	if err != nil {
		return sequence.Sequence{}, err
	}
	key, err := catalog.ParseRef(s.Motion)
	if err != nil {
		return sequence.Sequence{}, err
	}
	return c.Resolve(key.Category, key.Name, catalog.Params(s.Params))
}

// play runs seq through the player, recording every emission in result
// and journaling the session.
func (h *Harness) play(ctx context.Context, s *Scenario, seq sequence.Sequence, result *Result) error {
	journal, err := sink.NewJournal(ctx, h.store, seq, player.DefaultFPS, s.Mirror)
	if err != nil {
		return fmt.Errorf("failed to begin session: %w", err)
	}

	tick := s.Start
	record := player.SinkFunc(func(set button.Set) error {
		result.AddEmission(tick, set.Names())
		tick++
		return nil
	})

	p := player.New(sink.Tee{record, journal},
		player.WithClock(h.clock),
		player.WithMirror(s.Mirror),
		player.StartAt(s.Start),
		player.WithLogger(h.logger),
	)

	var report player.Report
	if len(s.Steps) > 0 {
		report, err = p.Step(ctx, seq, testutil.NewScriptedStepper(stepperCommands(s.Steps)...))
	} else {
		report, err = p.Play(ctx, seq)
	}
	if report.Released && len(result.Trace) > 0 {
		result.Trace[len(result.Trace)-1].Tick = player.ReleaseTick
	}
	if closeErr := journal.Close(report, err); closeErr != nil {
		return closeErr
	}
	if err != nil {
		result.AddError(fmt.Sprintf("playback failed: %v", err))
	}

	sess, err := h.store.Session(ctx, journal.SessionID())
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	result.Session = &sess

	replayed, err := h.store.SessionSequence(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to replay session: %w", err)
	}
	fp, err := store.PlaybackFingerprint(replayed)
	if err != nil {
		return err
	}
	result.ReplayMatches = fp == sess.Fingerprint

	h.logger.Info("scenario played",
		"scenario", s.Name,
		"ticks", report.Ticks,
		"quit", report.Quit,
		"session", sess.ID,
		"replay_matches", result.ReplayMatches,
	)
	return nil
}

// errorKind classifies a resolution error by its expect.error name.
func errorKind(err error) string {
	var (
		hold *catalog.InvalidHoldError
		step *catalog.InvalidStepError
	)
	switch {
	case catalog.IsCycle(err):
		return ErrorCycle
	case catalog.IsNotFound(err):
		return ErrorNotFound
	case catalog.IsUnresolvedPlaceholder(err):
		return ErrorPlaceholder
	case errors.As(err, &hold):
		return ErrorInvalidHold
	case errors.As(err, &step):
		return ErrorInvalidStep
	default:
		return ""
	}
}
