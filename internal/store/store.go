package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver (registered as "pgx").
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DefaultScore is the score of a topic the user has never been graded on.
const DefaultScore = 500

// MinScore and MaxScore bound every persisted topic score.
const (
	MinScore = 0
	MaxScore = 1000
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
	seq     *sequence
}

// Open connects to the database, applies pragmas (SQLite only) and runs
// auto-migration.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var (
		drvName string
		dia     string
	)
	switch driver {
	case DriverSQLite, "":
		drvName, dia = "sqlite", dialect.SQLite
		if dsn == "" {
			p, err := DefaultDBPath()
			if err != nil {
				return nil, err
			}
			dsn = "file:" + p
		}
	case DriverPostgres:
		drvName, dia = "pgx", dialect.Postgres
		if dsn == "" {
			dsn = "postgres://localhost:5432/quiztutor?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dia == dialect.SQLite {
		// SQLite allows one writer; a single connection also keeps
		// per-connection pragmas consistent.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	drv := entsql.OpenDB(dia, db)
	if err := migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequence(ctx, db, dia)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, dialect: dia, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name ("sqlite3" or "postgres").
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Scores returns the topic score repository.
func (s *Store) Scores() ScoreRepo {
	return &scoreRepo{db: s.db, dialect: s.dialect}
}

// Users returns the account repository.
func (s *Store) Users() UserRepo {
	return &userRepo{db: s.db, dialect: s.dialect}
}

// WrongAnswers returns the wrong-answer log.
func (s *Store) WrongAnswers() WrongAnswerRepo {
	return &wrongAnswerRepo{db: s.db, dialect: s.dialect}
}

// EventRepo returns the LLM request event log.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, dialect: s.dialect, seq: s.seq}
}

// builder returns an ent SQL builder for the store's dialect.
func builder(dia string) *entsql.DialectBuilder {
	return entsql.Dialect(dia)
}

// applyPragmas configures SQLite for a small multi-user server.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. QUIZTUTOR_DB environment variable
// 2. $XDG_DATA_HOME/quiztutor/quiztutor.db
// 3. ~/.local/share/quiztutor/quiztutor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUIZTUTOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "quiztutor", "quiztutor.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// clampScore bounds a score to [MinScore, MaxScore].
func clampScore(v int) int {
	return max(MinScore, min(MaxScore, v))
}
