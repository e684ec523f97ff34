// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk. There is no network
// and no separate server process, which suits a one-table roster.
//
// The blank import below registers the "sqlite3" driver with database/sql;
// the named import gives us sqlite3.Error so constraint violations can be
// told apart from every other failure.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/coffee-tracker/internal/config"
	"github.com/aanand-mishra/coffee-tracker/internal/storage"
	"github.com/aanand-mishra/coffee-tracker/internal/types"
)

// schema is idempotent and safe to run on every startup.
//
//	id           AUTOINCREMENT, a deleted id is never handed out again
//	name         UNIQUE, compared byte-for-byte (case-sensitive)
//	coffee_count running total, the CHECK keeps it non-negative
//	created_at   set by SQLite when the row is inserted (UTC)
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id           INTEGER  PRIMARY KEY AUTOINCREMENT,
		name         TEXT     NOT NULL UNIQUE,
		coffee_count INTEGER  NOT NULL DEFAULT 0 CHECK (coffee_count >= 0),
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

const selectColumns = "SELECT id, name, coffee_count, created_at FROM students"

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB, which is safe for concurrent use by many goroutines.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath, creates the students
// table if needed and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	if dir := filepath.Dir(cfg.StoragePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// _txlock=immediate makes every BEGIN take the write lock up front, so
	// the increment's UPDATE and its re-read can never interleave with
	// another writer. _busy_timeout makes a waiting writer block instead
	// of failing with SQLITE_BUSY.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", cfg.StoragePath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite has a single writer. One pooled connection keeps requests
	// queueing inside database/sql rather than racing for the file lock.
	db.SetMaxOpenConns(1)

	s, err := NewWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an already-open handle and ensures the schema exists.
// Tests use it to inject a sqlmock connection.
func NewWithDB(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}
	return &SQLite{Db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// Ping checks that the database file is still reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.Db.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

// CreateStudent trims name, inserts it and returns the stored row.
//
// The insert and the read-back share one transaction so the caller sees
// exactly what was committed, including the store-assigned created_at.
func (s *SQLite) CreateStudent(ctx context.Context, name string) (types.Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Student{}, storage.ErrInvalidName
	}

	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "INSERT INTO students (name) VALUES (?)", name)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Student{}, storage.ErrConflict
		}
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	student, err := getByID(ctx, tx, types.StudentID(lastID))
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: commit: %w", err)
	}
	return student, nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id types.StudentID) (types.Student, error) {
	student, err := getByID(ctx, s.Db, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}
	return student, err
}

// GetStudents returns the whole roster ordered by name.
//
// ORDER BY name uses SQLite's default BINARY collation, so "Zoe" sorts
// before "alice".
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx, selectColumns+" ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	students, err := scanAll(rows)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}
	return students, nil
}

// GetLeaderboard returns the top limit coffee drinkers.
// Ties on coffee_count fall back to name, then id, so the order is stable.
func (s *SQLite) GetLeaderboard(ctx context.Context, limit int) ([]types.Student, error) {
	if limit <= 0 {
		return make([]types.Student, 0), nil
	}

	rows, err := s.Db.QueryContext(ctx,
		selectColumns+" ORDER BY coffee_count DESC, name ASC, id ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("GetLeaderboard: query: %w", err)
	}
	students, err := scanAll(rows)
	if err != nil {
		return nil, fmt.Errorf("GetLeaderboard: %w", err)
	}
	return students, nil
}

// IncrementCoffee adds exactly one coffee to a student.
//
// The increment is done by SQLite itself (coffee_count = coffee_count + 1)
// inside an immediate transaction, so concurrent requests never lose an
// update and the returned row reflects this request's increment.
func (s *SQLite) IncrementCoffee(ctx context.Context, id types.StudentID) (types.Student, error) {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Student{}, fmt.Errorf("IncrementCoffee: begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE students SET coffee_count = coffee_count + 1 WHERE id = ?", int64(id))
	if err != nil {
		return types.Student{}, fmt.Errorf("IncrementCoffee: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("IncrementCoffee: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Student{}, storage.ErrNotFound
	}

	student, err := getByID(ctx, tx, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("IncrementCoffee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("IncrementCoffee: commit: %w", err)
	}
	return student, nil
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id types.StudentID) (types.StudentID, error) {
	result, err := s.Db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", int64(id))
	if err != nil {
		return 0, fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return 0, storage.ErrNotFound
	}
	return id, nil
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getByID(ctx context.Context, q queryRower, id types.StudentID) (types.Student, error) {
	var student types.Student
	err := q.QueryRowContext(ctx, selectColumns+" WHERE id = ? LIMIT 1", int64(id)).Scan(
		&student.ID,
		&student.Name,
		&student.CoffeeCount,
		&student.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("scan: %w", err)
	}
	return student, nil
}

func scanAll(rows *sql.Rows) ([]types.Student, error) {
	defer rows.Close()

	// Non-nil so the JSON encoder writes [] rather than null.
	students := make([]types.Student, 0)
	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.CoffeeCount,
			&student.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return students, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
