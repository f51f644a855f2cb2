package harness

import (
	"strings"

	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/store"
)

// TraceEvent is one set handed to the sink.
type TraceEvent struct {
	Tick    int      `json:"tick"` // player.ReleaseTick for the final release
	Buttons []string `json:"buttons"`
}

// Label renders the event the way the frame printer does. Only the final
// release reads [RELEASE]; neutral ticks read [].
func (e TraceEvent) Label() string {
	if e.Tick == player.ReleaseTick {
		return "[RELEASE]"
	}
	return "[" + strings.Join(e.Buttons, " ") + "]"
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if resolution behaved as expected and all assertions hold.
	Pass bool `json:"pass"`

	// Trace contains every emission in order, release included.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// TotalFrames is the length of the resolved sequence.
	TotalFrames int `json:"total_frames"`

	// ResolveError is set when resolution failed as the scenario expected.
	ResolveError string `json:"resolve_error,omitempty"`

	// Session is the journaled playback, nil when nothing was played.
	Session *store.Session `json:"session,omitempty"`

	// ReplayMatches reports whether the journal replays to the played
	// sequence.
	ReplayMatches bool `json:"replay_matches"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEmission appends one emitted set to the trace.
func (r *Result) AddEmission(tick int, buttons []string) {
	if buttons == nil {
		buttons = []string{}
	}
	r.Trace = append(r.Trace, TraceEvent{Tick: tick, Buttons: buttons})
}
