package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/store"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Tick: 0, Buttons: []string{"DOWN"}},
		{Tick: 1, Buttons: []string{}},
		{Tick: 2, Buttons: []string{"DOWN", "RIGHT"}},
		{Tick: 3, Buttons: []string{}},
		{Tick: player.ReleaseTick, Buttons: []string{}},
	}
}

func TestAssertFrame(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertFrame(trace, Assertion{Type: AssertFrame, Tick: 2, Buttons: []string{"right", "down"}}))
	assert.NoError(t, assertFrame(trace, Assertion{Type: AssertFrame, Tick: 1}))

	err := assertFrame(trace, Assertion{Type: AssertFrame, Tick: 0, Buttons: []string{"UP"}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "tick 0 emits [UP]", ae.Expected)
	assert.Equal(t, "[DOWN]", ae.Actual)

	err = assertFrame(trace, Assertion{Type: AssertFrame, Tick: 9})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "tick 9 was not played", ae.Actual)
}

func TestAssertOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertOrder(trace, Assertion{Type: AssertOrder, Sets: [][]string{{"DOWN"}, {"DOWN", "RIGHT"}}}))
	assert.NoError(t, assertOrder(trace, Assertion{Type: AssertOrder, Sets: [][]string{{"DOWN"}, {}, {}, {}}}))

	err := assertOrder(trace, Assertion{Type: AssertOrder, Sets: [][]string{{"DOWN", "RIGHT"}, {"DOWN"}}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "[DOWN] not found after the first 1 set(s)", ae.Actual)
}

func TestAssertCount_ExcludesRelease(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertCount(trace, Assertion{Type: AssertCount, Count: 2}))
	assert.NoError(t, assertCount(trace, Assertion{Type: AssertCount, Buttons: []string{"DOWN"}, Count: 1}))
	assert.NoError(t, assertCount(trace, Assertion{Type: AssertCount, Buttons: []string{"A"}, Count: 0}))

	err := assertCount(trace, Assertion{Type: AssertCount, Count: 3})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "2 tick(s)", ae.Actual)
}

func TestAssertTotalFrames(t *testing.T) {
	result := &Result{TotalFrames: 4}
	assert.NoError(t, assertTotalFrames(result, Assertion{Count: 4}))
	assert.Error(t, assertTotalFrames(result, Assertion{Count: 5}))
}

func TestAssertJournal(t *testing.T) {
	played := &Result{
		Session:       &store.Session{Outcome: store.OutcomeQuit, Emissions: 3},
		ReplayMatches: false,
	}

	tests := []struct {
		name      string
		result    *Result
		assertion Assertion
		wantErr   string
	}{
		{"outcome", played, Assertion{Outcome: store.OutcomeQuit}, ""},
		{"count", played, Assertion{Count: 3}, ""},
		{"matches", played, Assertion{Matches: boolPtr(false)}, ""},
		{"wrong outcome", played, Assertion{Outcome: store.OutcomeCompleted}, `outcome "quit"`},
		{"wrong count", played, Assertion{Count: 7}, "3 emissions"},
		{"wrong matches", played, Assertion{Matches: boolPtr(true)}, "Actual: false"},
		{"not played", NewResult(), Assertion{Count: 1}, "nothing was played"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertJournal(tt.result, tt.assertion)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace()
	result.TotalFrames = 4

	failures := EvaluateAssertions(result, []Assertion{
		{Type: AssertTotalFrames, Count: 4},
		{Type: AssertFrame, Tick: 0, Buttons: []string{"UP"}},
		{Type: "bogus"},
	})
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "Assertion failed: frame")
	assert.Contains(t, failures[1], `unknown assertion type "bogus"`)
}

func TestAssertionError_PrintsTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertFrame,
		Expected: "tick 0 emits [UP]",
		Actual:   "[DOWN]",
		Trace:    sampleTrace(),
	}

	want := "Assertion failed: frame\n" +
		"  Expected: tick 0 emits [UP]\n" +
		"  Actual: [DOWN]\n" +
		"\nFull trace:\n" +
		"  Frame   0: [DOWN]\n" +
		"  Frame   1: []\n" +
		"  Frame   2: [DOWN RIGHT]\n" +
		"  Frame   3: []\n" +
		"  release    [RELEASE]\n"
	assert.Equal(t, want, err.Error())
}

func TestTraceEvent_Label(t *testing.T) {
	assert.Equal(t, "[RELEASE]", TraceEvent{Tick: player.ReleaseTick}.Label())
	assert.Equal(t, "[]", TraceEvent{Tick: 4, Buttons: []string{}}.Label())
	assert.Equal(t, "[RIGHT X]", TraceEvent{Buttons: []string{"RIGHT", "X"}}.Label())
}
