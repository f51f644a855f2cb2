package codec

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/sequence"
)

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestMarshal_Golden(t *testing.T) {
	seq, ok := sequence.Builtin("hadouken")
	require.True(t, ok)

	data, err := Marshal(seq)
	require.NoError(t, err)
	golden(t).Assert(t, "hadouken", data)
}

func TestMarshalCanonical_Golden(t *testing.T) {
	seq, _ := sequence.Builtin("hadouken")

	data, err := MarshalCanonical(Encode(seq))
	require.NoError(t, err)
	golden(t).Assert(t, "hadouken_canonical", data)
}

func TestRoundTrip_PreservesActiveButtons(t *testing.T) {
	for _, key := range sequence.BuiltinKeys() {
		t.Run(key, func(t *testing.T) {
			seq, _ := sequence.Builtin(key)

			data, err := Marshal(seq)
			require.NoError(t, err)
			back, err := Unmarshal(data)
			require.NoError(t, err)

			require.Equal(t, seq.TotalFrames(), back.TotalFrames())
			for tick := 0; tick < seq.TotalFrames(); tick++ {
				assert.Equal(t, seq.ActiveButtons(tick), back.ActiveButtons(tick), "tick %d", tick)
			}
			assert.Equal(t, seq.Name(), back.Name())
			assert.Equal(t, seq.Description(), back.Description())
		})
	}
}

func TestRoundTrip_ReencodeIsStable(t *testing.T) {
	seq, _ := sequence.Builtin("button-test")

	first := Encode(seq)
	back, err := Decode(first)
	require.NoError(t, err)
	assert.Equal(t, first, Encode(back))
}

func TestUnmarshal_YAML(t *testing.T) {
	data := []byte(`
name: Jump
description: Jump with attack
frames:
  - frame: 0
    buttons: [up, a]
    duration_frames: 5
  - frame: 8
    buttons: [B]
`)
	seq, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 9, seq.TotalFrames())
	assert.Equal(t, button.Of(button.Up, button.A), seq.ActiveButtons(4))
	assert.Equal(t, button.Of(button.B), seq.ActiveButtons(8), "missing duration_frames defaults to 1")
}

func TestDecode_UnknownButton(t *testing.T) {
	d := 1
	doc := Document{
		Name: "typo",
		Frames: []FrameDocument{
			{Frame: 0, Buttons: []string{"A"}, DurationFrames: &d},
			{Frame: 1, Buttons: []string{"DOWN", "TURBO"}, DurationFrames: &d},
		},
	}

	_, err := Decode(doc)
	require.Error(t, err)
	assert.True(t, IsUnknownButton(err))

	var ue *UnknownButtonError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "TURBO", ue.Token)
	assert.Equal(t, 1, ue.Frame)
	assert.Equal(t, 1, ue.Index)
	assert.Contains(t, err.Error(), "frames[1].buttons[1]")
}

func TestDecode_Malformed(t *testing.T) {
	zero := 0
	tests := []struct {
		name string
		doc  Document
	}{
		{"negative frame", Document{Name: "x", Frames: []FrameDocument{{Frame: -1, Buttons: []string{"A"}}}}},
		{"zero duration", Document{Name: "x", Frames: []FrameDocument{{Frame: 0, Buttons: []string{"A"}, DurationFrames: &zero}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.doc)
			require.Error(t, err)
			assert.True(t, IsMalformed(err))
		})
	}
}

func TestRoundTrip_EmptyName(t *testing.T) {
	seq, err := sequence.NewBuilder("", "").
		AddFrame(0, button.Of(button.Down), 2).
		Build()
	require.NoError(t, err)

	decoded, err := Decode(Encode(seq))
	require.NoError(t, err)
	assert.Equal(t, "", decoded.Name())
	assert.Equal(t, seq.TotalFrames(), decoded.TotalFrames())
	assert.Equal(t, seq.ActiveButtons(1), decoded.ActiveButtons(1))

	data, err := Marshal(seq)
	require.NoError(t, err)
	fromJSON, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 2, fromJSON.TotalFrames())
}

func TestUnmarshal_RequiresNameKey(t *testing.T) {
	_, err := Unmarshal([]byte(`{"description": "x", "frames": []}`))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.Contains(t, err.Error(), "name: is required")

	seq, err := Unmarshal([]byte(`{"name": "", "frames": []}`))
	require.NoError(t, err)
	assert.Equal(t, 0, seq.TotalFrames())
}

func TestUnmarshal_RejectsGarbage(t *testing.T) {
	for _, data := range []string{"", "[1, 2", `{"name": "x", "framez": []}`} {
		_, err := Unmarshal([]byte(data))
		assert.True(t, IsMalformed(err), "input %q", data)
	}
}

func TestFingerprint(t *testing.T) {
	a, _ := sequence.Builtin("hadouken")
	b, _ := sequence.Builtin("hadouken")
	c, _ := sequence.Builtin("shoryuken")

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	fc, err := Fingerprint(c)
	require.NoError(t, err)

	assert.Len(t, fa, 64)
	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc)
}

func TestFingerprint_NFCNormalizesNames(t *testing.T) {
	composed, err := sequence.NewBuilder("Caf\u00e9", "").AddPress(0, button.A, 1).Build()
	require.NoError(t, err)
	decomposed, err := sequence.NewBuilder("Cafe\u0301", "").AddPress(0, button.A, 1).Build()
	require.NoError(t, err)

	fa, _ := Fingerprint(composed)
	fb, _ := Fingerprint(decomposed)
	assert.Equal(t, fa, fb)
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "konami.json")
	seq, _ := sequence.Builtin("konami")

	require.NoError(t, WriteFile(path, seq))
	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, seq.TotalFrames(), back.TotalFrames())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
