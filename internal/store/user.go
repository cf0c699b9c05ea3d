package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgconn"
)

// userRepo implements UserRepo.
type userRepo struct {
	db      *sql.DB
	dialect string
}

var userColumns = []string{"id", "username", "password_hash", "role", "created_at"}

func (r *userRepo) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	query, args := builder(r.dialect).
		Insert(tableUsers).
		Columns("username", "password_hash", "role", "created_at").
		Values(username, passwordHash, RoleStudent, time.Now().UTC()).
		Returning("id").
		Query()

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUserExists
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (r *userRepo) UserByUsername(ctx context.Context, username string) (*User, error) {
	return r.one(ctx, entsql.EQ("username", username))
}

func (r *userRepo) UserByID(ctx context.Context, id int64) (*User, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

func (r *userRepo) one(ctx context.Context, pred *entsql.Predicate) (*User, error) {
	query, args := builder(r.dialect).
		Select(userColumns...).
		From(entsql.Table(tableUsers)).
		Where(pred).
		Query()

	var u User
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) SetRole(ctx context.Context, username, role string) error {
	query, args := builder(r.dialect).
		Update(tableUsers).
		Set("role", role).
		Where(entsql.EQ("username", username)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Overview lists every user with their average score (DefaultScore when no
// topic is scored) and wrong-answer count, highest average first.
func (r *userRepo) Overview(ctx context.Context) ([]UserOverview, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT u.id, u.username,
		COALESCE((SELECT AVG(ts.score) FROM topic_scores ts WHERE ts.user_id = u.id), $1) AS avg_score,
		(SELECT COUNT(*) FROM wrong_answers wa WHERE wa.user_id = u.id) AS wrong_count
		FROM users u
		ORDER BY avg_score DESC, u.id ASC`, DefaultScore)
	if err != nil {
		return nil, fmt.Errorf("users overview: %w", err)
	}
	defer rows.Close()

	var out []UserOverview
	for rows.Next() {
		var (
			o   UserOverview
			avg float64
		)
		if err := rows.Scan(&o.ID, &o.Username, &avg, &o.WrongCount); err != nil {
			return nil, fmt.Errorf("scan overview: %w", err)
		}
		o.AvgScore = int(avg)
		out = append(out, o)
	}
	return out, rows.Err()
}

// isUniqueViolation reports whether err is a unique constraint failure on
// either backend.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
