package sink

import (
	"errors"
	"sync"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sequence"
)

// Recorder keeps every applied set in memory.
//
// Thread-safety: Recorder is safe for concurrent use via internal mutex.
type Recorder struct {
	mu   sync.Mutex
	sets []button.Set
}

// Apply records set.
func (r *Recorder) Apply(set button.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = append(r.sets, set)
	return nil
}

// Sets returns a copy of every recorded set, release included.
func (r *Recorder) Sets() []button.Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]button.Set(nil), r.sets...)
}

// Sequence rebuilds what was recorded as a Sequence.
func (r *Recorder) Sequence(name, description string) sequence.Sequence {
	return sequence.FromSamples(name, description, r.Sets())
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = nil
}

// Tee applies each set to every sink in order. All sinks see every set;
// their errors are joined.
type Tee []player.Sink

// Apply forwards set to every sink.
func (t Tee) Apply(set button.Set) error {
	var errs []error
	for _, s := range t {
		if err := s.Apply(set); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Release forwards the final release to every sink.
func (t Tee) Release() error {
	var errs []error
	for _, s := range t {
		if err := player.Release(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
