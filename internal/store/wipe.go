package store

import (
	"context"
	"fmt"
)

// WipeCounts reports how many rows a wipe removed per table.
type WipeCounts struct {
	Users        int64
	TopicScores  int64
	WrongAnswers int64
}

// Wipe deletes every account, topic score and wrong answer in a single
// transaction. LLM request events are kept for auditing.
func (s *Store) Wipe(ctx context.Context) (WipeCounts, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return WipeCounts{}, fmt.Errorf("begin wipe: %w", err)
	}
	defer tx.Rollback()

	var counts WipeCounts
	for _, t := range []struct {
		table string
		n     *int64
	}{
		{tableWrongAnswers, &counts.WrongAnswers},
		{tableTopicScores, &counts.TopicScores},
		{tableUsers, &counts.Users},
	} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+t.table)
		if err != nil {
			return WipeCounts{}, fmt.Errorf("wipe %s: %w", t.table, err)
		}
		if *t.n, err = res.RowsAffected(); err != nil {
			return WipeCounts{}, fmt.Errorf("wipe %s: %w", t.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return WipeCounts{}, fmt.Errorf("commit wipe: %w", err)
	}
	return counts, nil
}
