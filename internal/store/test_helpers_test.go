package store

import (
	"path/filepath"
	"testing"

	"github.com/ez2torta/SConE/internal/sequence"
	"github.com/ez2torta/SConE/internal/testutil"
)

// createTestStore creates a new store in a temp dir with sequential IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDs("sess")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// builtin loads a predefined sequence or fails the test.
func builtin(t *testing.T, key string) sequence.Sequence {
	t.Helper()
	seq, ok := sequence.Builtin(key)
	if !ok {
		t.Fatalf("no builtin %q", key)
	}
	return seq
}
