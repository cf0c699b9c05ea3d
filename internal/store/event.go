package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequence stamps audit events with a global, strictly increasing number.
// Row IDs restart when tables are recreated; the sequence survives Wipe, so
// `llm list` ordering stays stable.
type sequence struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequence seeds the single counter row if it is missing.
func newSequence(ctx context.Context, db *sql.DB, dia string) (*sequence, error) {
	query, args := builder(dia).
		Insert(tableSequence).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequence{db: db}, nil
}

// Next returns the current value and advances the counter in one statement.
func (s *sequence) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	err := s.db.QueryRowContext(ctx,
		"UPDATE "+tableSequence+" SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1",
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return n, nil
}
