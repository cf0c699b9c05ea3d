package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// wrongAnswerRepo implements WrongAnswerRepo.
type wrongAnswerRepo struct {
	db      *sql.DB
	dialect string
}

var wrongAnswerColumns = []string{
	"id", "user_id", "category", "question_content", "student_answer",
	"correct_answer", "root_cause", "improvement", "created_at",
}

func (r *wrongAnswerRepo) Record(ctx context.Context, w WrongAnswer) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	query, args := builder(r.dialect).
		Insert(tableWrongAnswers).
		Columns(wrongAnswerColumns[1:]...).
		Values(w.UserID, w.Category, w.QuestionContent, w.StudentAnswer, w.CorrectAnswer,
			w.RootCause, w.Improvement, w.CreatedAt).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record wrong answer: %w", err)
	}
	return nil
}

func (r *wrongAnswerRepo) Recent(ctx context.Context, userID int64, limit int) ([]WrongAnswer, error) {
	return r.list(ctx, entsql.EQ("user_id", userID), limit)
}

func (r *wrongAnswerRepo) ByTopic(ctx context.Context, userID int64, topic string, limit int) ([]WrongAnswer, error) {
	return r.list(ctx, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.Contains("category", topic),
	), limit)
}

func (r *wrongAnswerRepo) list(ctx context.Context, pred *entsql.Predicate, limit int) ([]WrongAnswer, error) {
	sel := builder(r.dialect).
		Select(wrongAnswerColumns...).
		From(entsql.Table(tableWrongAnswers)).
		Where(pred).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wrong answers: %w", err)
	}
	defer rows.Close()

	var out []WrongAnswer
	for rows.Next() {
		var w WrongAnswer
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Category, &w.QuestionContent, &w.StudentAnswer,
			&w.CorrectAnswer, &w.RootCause, &w.Improvement, &w.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wrong answer: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *wrongAnswerRepo) Categories(ctx context.Context, userID int64) ([]string, error) {
	query, args := builder(r.dialect).
		Select("category").
		Distinct().
		From(entsql.Table(tableWrongAnswers)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("category").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("wrong answer categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *wrongAnswerRepo) CountByCategory(ctx context.Context, userID int64) (map[string]int, error) {
	query, args := builder(r.dialect).
		Select("category", entsql.Count("*")).
		From(entsql.Table(tableWrongAnswers)).
		Where(entsql.EQ("user_id", userID)).
		GroupBy("category").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count wrong answers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			c string
			n int
		)
		if err := rows.Scan(&c, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out[c] = n
	}
	return out, rows.Err()
}
