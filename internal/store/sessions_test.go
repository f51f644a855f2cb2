package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/compose"
	"github.com/ez2torta/SConE/internal/sequence"
)

// recordSession journals every tick of the builtin plus the release.
func recordSession(t *testing.T, s *Store, key string, mirror bool) string {
	t.Helper()
	ctx := t.Context()
	seq := builtin(t, key)

	id, err := s.BeginSession(ctx, seq, 60, mirror)
	require.NoError(t, err)

	tl := compose.NewTimeline(seq)
	n := 0
	for ; n < tl.TotalFrames(); n++ {
		set := tl.At(n)
		if mirror {
			set = set.Mirror()
		}
		require.NoError(t, s.AppendEmission(ctx, id, n, set))
	}
	require.NoError(t, s.AppendEmission(ctx, id, n, button.Empty))
	require.NoError(t, s.EndSession(ctx, id, OutcomeCompleted))
	return id
}

func TestSession_Lifecycle(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	seq := builtin(t, "hadouken")

	id, err := s.BeginSession(ctx, seq, 30, true)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)

	open, err := s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hadouken", open.SequenceName)
	assert.Equal(t, 30, open.FPS)
	assert.True(t, open.Mirror)
	assert.Empty(t, open.EndedAt)
	assert.Empty(t, open.Outcome)
	assert.Zero(t, open.Emissions)

	require.NoError(t, s.AppendEmission(ctx, id, 0, button.Of(button.Down)))
	require.NoError(t, s.EndSession(ctx, id, OutcomeQuit))

	closed, err := s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeQuit, closed.Outcome)
	assert.NotEmpty(t, closed.EndedAt)
	assert.Equal(t, 1, closed.Emissions)
}

func TestAppendEmission_DuplicateSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	id, err := s.BeginSession(ctx, builtin(t, "jump"), 60, false)
	require.NoError(t, err)

	require.NoError(t, s.AppendEmission(ctx, id, 0, button.Of(button.Up)))
	assert.Error(t, s.AppendEmission(ctx, id, 0, button.Of(button.Up)))
}

func TestAppendEmission_UnknownSession(t *testing.T) {
	s := createTestStore(t)
	err := s.AppendEmission(t.Context(), "missing", 0, button.Empty)
	assert.Error(t, err, "foreign key should reject emissions without a session")
}

func TestEndSession_NotFound(t *testing.T) {
	s := createTestStore(t)
	assert.ErrorIs(t, s.EndSession(t.Context(), "missing", OutcomeFailed), ErrNotFound)
	_, err := s.Session(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmissions_Ordered(t *testing.T) {
	s := createTestStore(t)
	id := recordSession(t, s, "hadouken", false)

	emissions, err := s.Emissions(t.Context(), id)
	require.NoError(t, err)
	require.Len(t, emissions, 7)
	for i, e := range emissions {
		assert.Equal(t, i, e.Seq)
	}
	assert.Equal(t, button.Of(button.Down, button.Right), emissions[3].Buttons)
	assert.True(t, emissions[6].Buttons.IsEmpty(), "last emission is the release")
}

// TestSessionSequence_ReproducesTicks tests that a journaled session rebuilds
// into a sequence with the same per-tick output.
func TestSessionSequence_ReproducesTicks(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	id := recordSession(t, s, "hadouken", false)

	replay, err := s.SessionSequence(ctx, id)
	require.NoError(t, err)

	orig := compose.NewTimeline(builtin(t, "hadouken"))
	got := compose.NewTimeline(replay)
	require.Equal(t, orig.TotalFrames(), got.TotalFrames())
	for tick := 0; tick < orig.TotalFrames(); tick++ {
		assert.Equal(t, orig.At(tick), got.At(tick), "tick %d", tick)
	}
	assert.Equal(t, "Hadouken", replay.Name())
	assert.Equal(t, "replay of session "+id, replay.Description())
}

func TestSessionSequence_KeepsMirroredOutput(t *testing.T) {
	s := createTestStore(t)
	id := recordSession(t, s, "hadouken", true)

	replay, err := s.SessionSequence(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, button.Of(button.Left), replay.ActiveButtons(2))
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	first := recordSession(t, s, "hadouken", false)
	recordSession(t, s, "jump", false)
	third := recordSession(t, s, "hadouken", false)

	all, err := s.ListSessions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	hadoukens, err := s.ListSessions(ctx, "Hadouken")
	require.NoError(t, err)
	require.Len(t, hadoukens, 2)
	assert.Equal(t, third, hadoukens[0].ID)
	assert.Equal(t, first, hadoukens[1].ID)
	assert.Equal(t, 7, hadoukens[0].Emissions)
	assert.Equal(t, OutcomeCompleted, hadoukens[0].Outcome)
}

func TestButtonsRoundTrip(t *testing.T) {
	for _, set := range []button.Set{
		button.Empty,
		button.Of(button.A),
		button.Of(button.Down, button.Right, button.Y),
	} {
		got, err := parseButtons(formatButtons(set))
		require.NoError(t, err)
		assert.True(t, set.Equal(got), "%v", set)
	}
	_, err := parseButtons("DOWN+BOGUS")
	assert.Error(t, err)
}

// TestPlaybackFingerprint tests that only per-tick output affects the hash.
func TestPlaybackFingerprint(t *testing.T) {
	a, err := sequence.New("A", "first",
		sequence.FrameEvent{Start: 0, Buttons: button.Of(button.Down), Duration: 3},
		sequence.FrameEvent{Start: 1, Buttons: button.Of(button.A), Duration: 1},
	)
	require.NoError(t, err)
	b, err := sequence.New("B", "same ticks, different events",
		sequence.FrameEvent{Start: 0, Buttons: button.Of(button.Down), Duration: 1},
		sequence.FrameEvent{Start: 1, Buttons: button.Of(button.Down, button.A), Duration: 1},
		sequence.FrameEvent{Start: 2, Buttons: button.Of(button.Down), Duration: 1},
		sequence.FrameEvent{Start: 2, Buttons: button.Empty, Duration: 1},
	)
	require.NoError(t, err)

	fa, err := PlaybackFingerprint(a)
	require.NoError(t, err)
	fb, err := PlaybackFingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	fm, err := PlaybackFingerprint(builtin(t, "hadouken"))
	require.NoError(t, err)
	assert.NotEqual(t, fa, fm)
}

func TestSessionSequence_MatchesPlaybackFingerprint(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	full := recordSession(t, s, "hadouken", false)
	sess, err := s.Session(ctx, full)
	require.NoError(t, err)
	replay, err := s.SessionSequence(ctx, full)
	require.NoError(t, err)
	fp, err := PlaybackFingerprint(replay)
	require.NoError(t, err)
	assert.Equal(t, sess.Fingerprint, fp)

	mirrored := recordSession(t, s, "hadouken", true)
	replay, err = s.SessionSequence(ctx, mirrored)
	require.NoError(t, err)
	fp, err = PlaybackFingerprint(replay)
	require.NoError(t, err)
	assert.NotEqual(t, sess.Fingerprint, fp)
}
