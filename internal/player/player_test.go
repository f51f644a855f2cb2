package player_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sequence"
	"github.com/ez2torta/SConE/internal/testutil"
)

// collect is a sink that records every set it receives.
type collect struct {
	mu   sync.Mutex
	sets []button.Set
}

func (c *collect) Apply(set button.Set) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = append(c.sets, set)
	return nil
}

func (c *collect) all() []button.Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]button.Set(nil), c.sets...)
}

func builtin(t *testing.T, key string) sequence.Sequence {
	t.Helper()
	seq, ok := sequence.Builtin(key)
	require.True(t, ok, key)
	return seq
}

var (
	down      = button.Of(button.Down)
	right     = button.Of(button.Right)
	downRight = button.Of(button.Down, button.Right)
	rightY    = button.Of(button.Right, button.Y)
)

// TestPlay_Hadouken tests the full emission order and pacing of a Play run.
func TestPlay_Hadouken(t *testing.T) {
	sink := &collect{}
	clock := testutil.NewFakeClock()
	p := player.New(sink, player.WithClock(clock))

	report, err := p.Play(t.Context(), builtin(t, "hadouken"))
	require.NoError(t, err)

	assert.Equal(t, []button.Set{down, down, right, downRight, rightY, rightY, button.Empty}, sink.all())
	assert.Equal(t, player.Report{State: player.Done, Ticks: 6, Total: 6, Released: true}, report)

	period := time.Second / 60
	require.Len(t, clock.Sleeps(), 6)
	for _, d := range clock.Sleeps() {
		assert.Equal(t, period, d)
	}
	assert.Equal(t, 6*period, clock.Elapsed())
}

func TestPlay_FPS(t *testing.T) {
	clock := testutil.NewFakeClock()
	p := player.New(&collect{}, player.WithClock(clock), player.WithFPS(30))
	assert.Equal(t, 30, p.FPS())
	assert.Equal(t, time.Second/30, p.TickPeriod())

	_, err := p.Play(t.Context(), builtin(t, "jump"))
	require.NoError(t, err)
	assert.Equal(t, 5*(time.Second/30), clock.Elapsed())

	assert.Equal(t, player.DefaultFPS, player.New(&collect{}, player.WithFPS(0)).FPS())
}

// TestPlay_SlowSinkDrifts tests that a sink slower than a tick delays the
// run without skipping ticks.
func TestPlay_SlowSinkDrifts(t *testing.T) {
	clock := testutil.NewFakeClock()
	var seen int
	sink := player.SinkFunc(func(button.Set) error {
		seen++
		clock.Advance(20 * time.Millisecond)
		return nil
	})
	p := player.New(sink, player.WithClock(clock))

	report, err := p.Play(t.Context(), builtin(t, "hadouken"))
	require.NoError(t, err)
	assert.Equal(t, 6, report.Ticks)
	assert.Equal(t, 7, seen)
	assert.Empty(t, clock.Sleeps(), "no sleep once a tick overruns its period")
}

func TestPlay_EmptySequence(t *testing.T) {
	sink := &collect{}
	seq, err := sequence.New("empty", "")
	require.NoError(t, err)

	report, err := player.New(sink, player.WithClock(testutil.NewFakeClock())).Play(t.Context(), seq)
	require.NoError(t, err)
	assert.Equal(t, []button.Set{button.Empty}, sink.all())
	assert.Zero(t, report.Ticks)
	assert.True(t, report.Released)
}

func TestPlay_GapsEmitEmpty(t *testing.T) {
	seq, err := sequence.NewBuilder("gap", "").
		AddPress(0, button.A, 1).
		AddPress(3, button.B, 1).
		Build()
	require.NoError(t, err)

	sink := &collect{}
	_, err = player.New(sink, player.WithClock(testutil.NewFakeClock())).Play(t.Context(), seq)
	require.NoError(t, err)
	assert.Equal(t, []button.Set{
		button.Of(button.A), button.Empty, button.Empty, button.Of(button.B), button.Empty,
	}, sink.all())
}

func TestPlay_CancelledBeforeStartStillReleases(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	sink := &collect{}
	report, err := player.New(sink, player.WithClock(testutil.NewFakeClock())).Play(ctx, builtin(t, "hadouken"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []button.Set{button.Empty}, sink.all())
	assert.True(t, report.Released)
	assert.Equal(t, player.Done, report.State)
}

func TestPlay_SinkErrorStopsAndReleases(t *testing.T) {
	boom := errors.New("port closed")
	var got []button.Set
	sink := player.SinkFunc(func(set button.Set) error {
		got = append(got, set)
		if len(got) == 3 {
			return boom
		}
		return nil
	})

	report, err := player.New(sink, player.WithClock(testutil.NewFakeClock())).Play(t.Context(), builtin(t, "hadouken"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, player.IsSinkError(err))

	var se *player.SinkError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Tick)
	assert.Equal(t, "sink failed at tick 2: port closed", se.Error())

	assert.Equal(t, 2, report.Ticks)
	assert.True(t, report.Released)
	assert.True(t, got[len(got)-1].IsEmpty(), "release is the last set applied")
}

func TestPlay_ReleaseErrorJoined(t *testing.T) {
	tickErr := errors.New("tick failed")
	relErr := errors.New("release failed")
	sink := player.SinkFunc(func(set button.Set) error {
		if set.IsEmpty() {
			return relErr
		}
		return tickErr
	})

	report, err := player.New(sink, player.WithClock(testutil.NewFakeClock())).Play(t.Context(), builtin(t, "hadouken"))
	assert.ErrorIs(t, err, tickErr)
	assert.ErrorIs(t, err, relErr)
	assert.False(t, report.Released)
	assert.Contains(t, err.Error(), "sink failed on release: release failed")
}

func TestPlay_Mirror(t *testing.T) {
	sink := &collect{}
	p := player.New(sink, player.WithMirror(true), player.WithClock(testutil.NewFakeClock()))
	_, err := p.Play(t.Context(), builtin(t, "hadouken"))
	require.NoError(t, err)

	left := button.Of(button.Left)
	assert.Equal(t, []button.Set{
		down, down, left, button.Of(button.Down, button.Left), button.Of(button.Left, button.Y),
		button.Of(button.Left, button.Y), button.Empty,
	}, sink.all())
}

// TestPlay_MirrorTwiceIsIdentity tests that mirroring a mirrored recording
// restores the original output.
func TestPlay_MirrorTwiceIsIdentity(t *testing.T) {
	first := &collect{}
	_, err := player.New(first, player.WithMirror(true), player.WithClock(testutil.NewFakeClock())).
		Play(t.Context(), builtin(t, "run-right"))
	require.NoError(t, err)

	mirrored := sequence.FromSamples("m", "", first.all())
	second := &collect{}
	_, err = player.New(second, player.WithMirror(true), player.WithClock(testutil.NewFakeClock())).
		Play(t.Context(), mirrored)
	require.NoError(t, err)

	plain := &collect{}
	_, err = player.New(plain, player.WithClock(testutil.NewFakeClock())).Play(t.Context(), builtin(t, "run-right"))
	require.NoError(t, err)
	assert.Equal(t, plain.all(), second.all())
}

func TestPlay_StartAt(t *testing.T) {
	sink := &collect{}
	p := player.New(sink, player.StartAt(3), player.WithClock(testutil.NewFakeClock()))
	report, err := p.Play(t.Context(), builtin(t, "hadouken"))
	require.NoError(t, err)

	assert.Equal(t, []button.Set{downRight, rightY, rightY, button.Empty}, sink.all())
	assert.Equal(t, 3, report.Ticks)

	past := &collect{}
	_, err = player.New(past, player.StartAt(100)).Play(t.Context(), builtin(t, "hadouken"))
	require.NoError(t, err)
	assert.Equal(t, []button.Set{button.Empty}, past.all())
}

func TestStep_AdvancesThroughEveryTick(t *testing.T) {
	sink := &collect{}
	stepper := testutil.NewScriptedStepper()

	report, err := player.New(sink).Step(t.Context(), builtin(t, "hadouken"), stepper)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, stepper.Ticks, "await follows every tick, the last included")
	assert.Equal(t, []button.Set{down, down, right, downRight, rightY, rightY}, stepper.Seen)
	assert.Equal(t, player.Report{State: player.Done, Ticks: 6, Total: 6, Released: true}, report)
	assert.Len(t, sink.all(), 7)
}

func TestStep_Quit(t *testing.T) {
	sink := &collect{}
	stepper := testutil.NewScriptedStepper(player.Advance, player.Advance, player.Quit)

	report, err := player.New(sink).Step(t.Context(), builtin(t, "hadouken"), stepper)
	require.NoError(t, err)
	assert.True(t, report.Quit)
	assert.Equal(t, 3, report.Ticks)
	assert.Equal(t, []button.Set{down, down, right, button.Empty}, sink.all())
}

func TestStep_CancelDuringAwait(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	stepper := testutil.NewScriptedStepper()
	stepper.OnAwait = func(tick int) {
		if tick == 1 {
			cancel()
		}
	}

	sink := &collect{}
	report, err := player.New(sink).Step(ctx, builtin(t, "hadouken"), stepper)
	require.NoError(t, err, "cancellation while stepping is a quit, not a failure")
	assert.True(t, report.Quit)
	assert.Equal(t, 2, report.Ticks)
	assert.True(t, sink.all()[len(sink.all())-1].IsEmpty())
}

type errStepper struct{ err error }

func (s errStepper) Await(context.Context, int, button.Set) (player.Command, error) {
	return player.Quit, s.err
}

func TestStep_StepperError(t *testing.T) {
	broken := errors.New("terminal gone")
	sink := &collect{}
	report, err := player.New(sink).Step(t.Context(), builtin(t, "hadouken"), errStepper{broken})
	assert.ErrorIs(t, err, broken)
	assert.True(t, report.Released)
	assert.Equal(t, 1, report.Ticks)
}

func TestLineStepper(t *testing.T) {
	in := strings.NewReader("\n\nq\n")
	var prompt strings.Builder
	stepper := player.NewLineStepper(in, &prompt)

	sink := &collect{}
	report, err := player.New(sink).Step(t.Context(), builtin(t, "hadouken"), stepper)
	require.NoError(t, err)
	assert.True(t, report.Quit)
	assert.Equal(t, 3, report.Ticks)
	assert.Contains(t, prompt.String(), "Frame   0: [DOWN]  [enter: next, q: quit] ")
	assert.Contains(t, prompt.String(), "Frame   2: [RIGHT]")
}

func TestLineStepper_EOFQuits(t *testing.T) {
	stepper := player.NewLineStepper(strings.NewReader(""), nil)
	cmd, err := stepper.Await(t.Context(), 0, button.Empty)
	require.NoError(t, err)
	assert.Equal(t, player.Quit, cmd)
}

func TestLineStepper_ContextDone(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	stepper := player.NewLineStepper(r, nil)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	cmd, err := stepper.Await(ctx, 0, button.Empty)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, player.Quit, cmd)
}

func TestVersus(t *testing.T) {
	p1, p2 := &collect{}, &collect{}
	reports, err := player.Versus(t.Context(),
		player.Job{Player: player.New(p1, player.WithClock(testutil.NewFakeClock())), Sequence: builtin(t, "hadouken")},
		player.Job{Player: player.New(p2, player.WithMirror(true), player.WithClock(testutil.NewFakeClock())), Sequence: builtin(t, "jump")},
	)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 6, reports[0].Ticks)
	assert.Equal(t, 5, reports[1].Ticks)
	assert.Len(t, p1.all(), 7)
	assert.Len(t, p2.all(), 6)
}

func TestVersus_Failure(t *testing.T) {
	boom := errors.New("boom")
	bad := player.SinkFunc(func(set button.Set) error {
		if set.IsEmpty() {
			return nil
		}
		return boom
	})
	good := &collect{}

	reports, err := player.Versus(t.Context(),
		player.Job{Player: player.New(good, player.WithClock(testutil.NewFakeClock())), Sequence: builtin(t, "jump")},
		player.Job{Player: player.New(bad, player.WithClock(testutil.NewFakeClock())), Sequence: builtin(t, "hadouken")},
	)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "job 1 (Hadouken)")
	assert.True(t, reports[1].Released)
	assert.True(t, reports[0].Released, "every job releases")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", player.Idle.String())
	assert.Equal(t, "running", player.Running.String())
	assert.Equal(t, "stepping", player.Stepping.String())
	assert.Equal(t, "done", player.Done.String())
	assert.Equal(t, "unknown", player.State(42).String())
}

func TestWait(t *testing.T) {
	clock := testutil.NewFakeClock()
	require.NoError(t, player.Wait(t.Context(), clock, time.Second))
	require.NoError(t, player.Wait(t.Context(), clock, 0))
	assert.Equal(t, []time.Duration{time.Second}, clock.Sleeps())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, player.Wait(ctx, clock, time.Second), context.Canceled)
	assert.Len(t, clock.Sleeps(), 1, "a done context skips the sleep")
}

func TestSystemClock_SleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	began := time.Now()
	err := player.Wait(ctx, player.SystemClock{}, time.Hour)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(began), 5*time.Second)
}

// releaser counts Apply and Release calls separately.
type releaser struct {
	collect
	releases int
}

func (r *releaser) Release() error {
	r.releases++
	return nil
}

func TestPlay_ReleaserGetsReleaseNotEmptyApply(t *testing.T) {
	seq, err := sequence.NewBuilder("gap", "").
		AddPress(0, button.A, 1).
		AddPress(2, button.A, 1).
		Build()
	require.NoError(t, err)

	r := &releaser{}
	report, err := player.New(r, player.WithClock(testutil.NewFakeClock())).Play(t.Context(), seq)
	require.NoError(t, err)
	assert.True(t, report.Released)
	assert.Equal(t, 1, r.releases)
	assert.Equal(t, []button.Set{button.Of(button.A), button.Empty, button.Of(button.A)}, r.all())
}
