package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/codec"
	"github.com/ez2torta/SConE/internal/compose"
	"github.com/ez2torta/SConE/internal/sequence"
)

// Session outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeQuit      = "quit"
	OutcomeFailed    = "failed"
)

// Session is one recorded playback.
type Session struct {
	ID           string `json:"id"`
	SequenceName string `json:"sequence"`
	Fingerprint  string `json:"fingerprint"` // PlaybackFingerprint of the played sequence
	FPS          int    `json:"fps"`
	Mirror       bool   `json:"mirror,omitempty"`
	StartedAt    string `json:"started_at"`
	EndedAt      string `json:"ended_at,omitempty"` // empty while the session is open
	Outcome      string `json:"outcome,omitempty"`  // empty while the session is open
	Emissions    int    `json:"emissions"`
}

// Emission is one button set handed to a sink.
type Emission struct {
	Seq     int
	Buttons button.Set
}

// PlaybackFingerprint hashes the per-tick output of seq, ignoring its name,
// description and how its events are split or overlap. A session whose
// emissions rebuild to the same fingerprint played seq in full.
func PlaybackFingerprint(seq sequence.Sequence) (string, error) {
	tl := compose.NewTimeline(seq)
	ticks := make([]button.Set, tl.TotalFrames())
	for i := range ticks {
		ticks[i] = tl.At(i)
	}
	return codec.Fingerprint(sequence.FromSamples("", "", ticks))
}

// BeginSession opens a journal entry for a playback of seq and returns its ID.
func (s *Store) BeginSession(ctx context.Context, seq sequence.Sequence, fps int, mirror bool) (string, error) {
	fp, err := PlaybackFingerprint(seq)
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	id := s.ids.Generate()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, sequence_name, fingerprint, fps, mirror)
		VALUES (?, ?, ?, ?, ?)
	`, id, seq.Name(), fp, fps, boolToInt(mirror))
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	return id, nil
}

// AppendEmission records set as emission number seq of the session.
// Appending the same seq twice is an error.
func (s *Store) AppendEmission(ctx context.Context, sessionID string, seq int, set button.Set) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emissions (session_id, seq, buttons)
		VALUES (?, ?, ?)
	`, sessionID, seq, formatButtons(set))
	if err != nil {
		return fmt.Errorf("append emission %d to session %s: %w", seq, sessionID, err)
	}
	return nil
}

// EndSession closes the session with the given outcome.
func (s *Store) EndSession(ctx context.Context, sessionID, outcome string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET ended_at = CURRENT_TIMESTAMP, outcome = ?
		WHERE id = ?
	`, outcome, sessionID)
	if err != nil {
		return fmt.Errorf("end session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("end session %s: %w", sessionID, err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

// Session returns the session with the given ID.
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, sessionSelect+` WHERE s.id = ? GROUP BY s.id`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns sessions, newest first. An empty name lists all.
func (s *Store) ListSessions(ctx context.Context, sequenceName string) ([]Session, error) {
	query := sessionSelect
	var args []any
	if sequenceName != "" {
		query += ` WHERE s.sequence_name = ?`
		args = append(args, sequenceName)
	}
	// UUIDv7 IDs sort by creation time.
	query += ` GROUP BY s.id ORDER BY s.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Emissions returns the session's emissions in seq order.
func (s *Store) Emissions(ctx context.Context, sessionID string) ([]Emission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, buttons FROM emissions
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read emissions: %w", err)
	}
	defer rows.Close()

	var out []Emission
	for rows.Next() {
		var (
			e     Emission
			names string
		)
		if err := rows.Scan(&e.Seq, &names); err != nil {
			return nil, fmt.Errorf("scan emission: %w", err)
		}
		if e.Buttons, err = parseButtons(names); err != nil {
			return nil, fmt.Errorf("emission %d of session %s: %w", e.Seq, sessionID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emissions: %w", err)
	}
	return out, nil
}

// SessionSequence rebuilds the sequence a session actually emitted. Playing
// it unmirrored reproduces every recorded tick; the final release is dropped.
func (s *Store) SessionSequence(ctx context.Context, sessionID string) (sequence.Sequence, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return sequence.Sequence{}, err
	}
	emissions, err := s.Emissions(ctx, sessionID)
	if err != nil {
		return sequence.Sequence{}, err
	}
	samples := make([]button.Set, len(emissions))
	for i, e := range emissions {
		samples[i] = e.Buttons
	}
	desc := fmt.Sprintf("replay of session %s", sess.ID)
	return sequence.FromSamples(sess.SequenceName, desc, samples), nil
}

const sessionSelect = `
	SELECT s.id, s.sequence_name, s.fingerprint, s.fps, s.mirror, s.started_at,
		COALESCE(s.ended_at, ''), COALESCE(s.outcome, ''), COUNT(e.seq)
	FROM sessions s
	LEFT JOIN emissions e ON e.session_id = s.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess   Session
		mirror int
	)
	err := row.Scan(&sess.ID, &sess.SequenceName, &sess.Fingerprint, &sess.FPS, &mirror,
		&sess.StartedAt, &sess.EndedAt, &sess.Outcome, &sess.Emissions)
	sess.Mirror = mirror != 0
	return sess, err
}

// formatButtons stores a set as "+"-joined canonical names; release is "".
func formatButtons(set button.Set) string {
	return strings.Join(set.Names(), "+")
}

func parseButtons(s string) (button.Set, error) {
	if s == "" {
		return button.Empty, nil
	}
	var set button.Set
	for _, name := range strings.Split(s, "+") {
		b, ok := button.Parse(name)
		if !ok {
			return button.Empty, fmt.Errorf("unknown button %q", name)
		}
		set = set.With(b)
	}
	return set, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
