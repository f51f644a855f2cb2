package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ez2torta/SConE/internal/codec"
	"github.com/ez2torta/SConE/internal/sequence"
)

func TestSaveLoadSequence(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	seq := builtin(t, "hadouken")

	fp, err := s.SaveSequence(ctx, seq)
	require.NoError(t, err)

	want, err := codec.Fingerprint(seq)
	require.NoError(t, err)
	assert.Equal(t, want, fp)

	got, err := s.LoadSequence(ctx, "Hadouken")
	require.NoError(t, err)
	assert.Equal(t, seq.Description(), got.Description())
	assert.Equal(t, seq.Events(), got.Events())
	assert.Equal(t, 6, got.TotalFrames())
}

func TestSaveSequence_ReplacesByName(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	_, err := s.SaveSequence(ctx, builtin(t, "hadouken"))
	require.NoError(t, err)
	shorter := builtin(t, "jump").Renamed("Hadouken", "replaced")
	fp, err := s.SaveSequence(ctx, shorter)
	require.NoError(t, err)

	infos, err := s.ListSequences(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "replaced", infos[0].Description)
	assert.Equal(t, fp, infos[0].Fingerprint)
	assert.Equal(t, shorter.TotalFrames(), infos[0].TotalFrames)
}

func TestSaveSequence_RequiresName(t *testing.T) {
	s := createTestStore(t)
	seq, err := sequence.New("", "nameless")
	require.NoError(t, err)

	_, err = s.SaveSequence(t.Context(), seq)
	assert.Error(t, err)
}

func TestLoadSequence_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.LoadSequence(t.Context(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListSequences_OrderedByName(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	for _, key := range []string{"shoryuken", "hadouken", "konami"} {
		_, err := s.SaveSequence(ctx, builtin(t, key))
		require.NoError(t, err)
	}

	infos, err := s.ListSequences(ctx)
	require.NoError(t, err)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	assert.Equal(t, []string{"Hadouken", "Konami Code", "Shoryuken"}, names)
	for _, info := range infos {
		assert.NotEmpty(t, info.SavedAt)
		assert.Len(t, info.Fingerprint, 64)
	}
}

func TestDeleteSequence(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	_, err := s.SaveSequence(ctx, builtin(t, "hadouken"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteSequence(ctx, "Hadouken"))
	_, err = s.LoadSequence(ctx, "Hadouken")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteSequence(ctx, "Hadouken"), ErrNotFound)
}
