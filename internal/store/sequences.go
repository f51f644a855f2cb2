package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ez2torta/SConE/internal/codec"
	"github.com/ez2torta/SConE/internal/sequence"
)

// SequenceInfo summarizes a saved sequence without decoding it.
type SequenceInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Fingerprint string `json:"fingerprint"`
	TotalFrames int    `json:"total_frames"`
	SavedAt     string `json:"saved_at"`
}

// SaveSequence stores seq under its name, replacing any earlier version.
// Returns the content fingerprint.
func (s *Store) SaveSequence(ctx context.Context, seq sequence.Sequence) (string, error) {
	if seq.Name() == "" {
		return "", fmt.Errorf("save sequence: name is required")
	}
	doc, err := codec.Marshal(seq)
	if err != nil {
		return "", fmt.Errorf("save sequence: %w", err)
	}
	fp, err := codec.Fingerprint(seq)
	if err != nil {
		return "", fmt.Errorf("save sequence: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sequences (name, description, document, fingerprint, total_frames)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description  = excluded.description,
			document     = excluded.document,
			fingerprint  = excluded.fingerprint,
			total_frames = excluded.total_frames,
			saved_at     = CURRENT_TIMESTAMP
	`, seq.Name(), seq.Description(), string(doc), fp, seq.TotalFrames())
	if err != nil {
		return "", fmt.Errorf("save sequence %q: %w", seq.Name(), err)
	}
	return fp, nil
}

// LoadSequence decodes the sequence saved under name.
// Returns ErrNotFound if there is none.
func (s *Store) LoadSequence(ctx context.Context, name string) (sequence.Sequence, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM sequences WHERE name = ?
	`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return sequence.Sequence{}, fmt.Errorf("sequence %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("load sequence %q: %w", name, err)
	}

	seq, err := codec.Unmarshal([]byte(doc))
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("decode sequence %q: %w", name, err)
	}
	return seq, nil
}

// ListSequences returns every saved sequence ordered by name.
func (s *Store) ListSequences(ctx context.Context) ([]SequenceInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, description, fingerprint, total_frames, saved_at
		FROM sequences
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}
	defer rows.Close()

	var infos []SequenceInfo
	for rows.Next() {
		var info SequenceInfo
		if err := rows.Scan(&info.Name, &info.Description, &info.Fingerprint, &info.TotalFrames, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sequences: %w", err)
	}
	return infos, nil
}

// DeleteSequence removes the sequence saved under name.
// Returns ErrNotFound if there is none. Past sessions are kept.
func (s *Store) DeleteSequence(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sequences WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete sequence %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sequence %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("sequence %q: %w", name, ErrNotFound)
	}
	return nil
}
