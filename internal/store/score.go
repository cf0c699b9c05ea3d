package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// scoreRepo implements ScoreRepo.
type scoreRepo struct {
	db      *sql.DB
	dialect string
}

func (r *scoreRepo) GetScore(ctx context.Context, userID int64, topic string) (int, error) {
	query, args := builder(r.dialect).
		Select("score").
		From(entsql.Table(tableTopicScores)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("topic", topic),
		)).
		Query()

	var score int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultScore, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get score: %w", err)
	}
	return score, nil
}

// UpdateScore runs a single upsert so the read-add-clamp is atomic per
// (user, topic) without relying on any in-process lock.
func (r *scoreRepo) UpdateScore(ctx context.Context, userID int64, topic string, delta int) (int, error) {
	greatest, least := "MAX", "MIN"
	if r.dialect == dialect.Postgres {
		greatest, least = "GREATEST", "LEAST"
	}
	query, args := builder(r.dialect).
		Insert(tableTopicScores).
		Columns("user_id", "topic", "score", "updated_at").
		Values(userID, topic, clampScore(DefaultScore+delta), time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "topic"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				cur := u.Table().C("score")
				u.Set("score", entsql.ExprFunc(func(b *entsql.Builder) {
					b.WriteString(fmt.Sprintf("%s(%d, %s(%d, %s + ", greatest, MinScore, least, MaxScore, cur)).
						Arg(delta).
						WriteString("))")
				}))
				u.SetExcluded("updated_at")
			}),
		).
		Returning("score").
		Query()

	var score int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&score); err != nil {
		return 0, fmt.Errorf("update score: %w", err)
	}
	return score, nil
}

func (r *scoreRepo) SetScore(ctx context.Context, userID int64, topic string, score int) error {
	query, args := builder(r.dialect).
		Insert(tableTopicScores).
		Columns("user_id", "topic", "score", "updated_at").
		Values(userID, topic, clampScore(score), time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "topic"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("score")
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set score: %w", err)
	}
	return nil
}

func (r *scoreRepo) GetAverageScore(ctx context.Context, userID int64) (int, error) {
	query, args := builder(r.dialect).
		Select(entsql.Avg("score")).
		From(entsql.Table(tableTopicScores)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average score: %w", err)
	}
	if !avg.Valid {
		return DefaultScore, nil
	}
	return int(avg.Float64), nil
}

func (r *scoreRepo) GetAllScores(ctx context.Context, userID int64) (map[string]int, error) {
	query, args := builder(r.dialect).
		Select("topic", "score").
		From(entsql.Table(tableTopicScores)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("topic").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("all scores: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			topic string
			score int
		)
		if err := rows.Scan(&topic, &score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out[topic] = score
	}
	return out, rows.Err()
}
