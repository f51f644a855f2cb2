// Package store provides SQLite-backed storage for saved sequences and a
// playback journal.
//
// The store holds:
//   - Sequences: named sequences as codec JSON, with a content fingerprint
//   - Sessions: one row per playback, identified by a UUIDv7
//   - Emissions: every button set a session sent to its sink, in order
//
// A session's emissions can be turned back into a Sequence, so any past
// playback can be replayed exactly.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Emission order uses the seq column (the tick index), never timestamps.
package store
