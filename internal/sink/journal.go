package sink

import (
	"context"
	"fmt"
	"sync"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sequence"
	"github.com/ez2torta/SConE/internal/store"
)

// JournalStore is the part of store.Store a Journal writes to.
type JournalStore interface {
	BeginSession(ctx context.Context, seq sequence.Sequence, fps int, mirror bool) (string, error)
	AppendEmission(ctx context.Context, sessionID string, seq int, set button.Set) error
	EndSession(ctx context.Context, sessionID, outcome string) error
}

var _ JournalStore = (*store.Store)(nil)

// Journal records every emission of one playback as a store session.
//
// The journal keeps its own context: emissions must still be written while
// the player releases buttons after the playback context was cancelled.
type Journal struct {
	mu    sync.Mutex
	ctx   context.Context
	store JournalStore
	id    string
	next  int
}

// NewJournal begins a session for seq.
func NewJournal(ctx context.Context, st JournalStore, seq sequence.Sequence, fps int, mirror bool) (*Journal, error) {
	id, err := st.BeginSession(ctx, seq, fps, mirror)
	if err != nil {
		return nil, err
	}
	return &Journal{ctx: context.WithoutCancel(ctx), store: st, id: id}, nil
}

// SessionID returns the ID of the recorded session.
func (j *Journal) SessionID() string { return j.id }

// Apply appends set as the next emission.
func (j *Journal) Apply(set button.Set) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.store.AppendEmission(j.ctx, j.id, j.next, set); err != nil {
		return err
	}
	j.next++
	return nil
}

// Close ends the session with the outcome of a finished playback.
func (j *Journal) Close(report player.Report, playErr error) error {
	outcome := store.OutcomeCompleted
	switch {
	case playErr != nil:
		outcome = store.OutcomeFailed
	case report.Quit:
		outcome = store.OutcomeQuit
	}
	if err := j.store.EndSession(j.ctx, j.id, outcome); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	return nil
}
