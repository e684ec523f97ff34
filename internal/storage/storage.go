// Package storage defines the Storage interface, the contract any
// database backend must satisfy to hold the student roster.
//
// Handlers depend only on this interface, so tests can hand them a fake
// and the SQLite backend can be swapped without touching the HTTP layer.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/coffee-tracker/internal/types"
)

// Sentinel errors returned by every Storage implementation.
// Handlers match them with errors.Is to pick an HTTP status.
var (
	// ErrNotFound means the referenced student id does not exist.
	ErrNotFound = errors.New("student not found")

	// ErrConflict means a student with exactly the same name exists.
	ErrConflict = errors.New("student already exists")

	// ErrInvalidName means the name was empty after trimming whitespace.
	ErrInvalidName = errors.New("student name must not be blank")
)

// LeaderboardSize is how many students the public leaderboard shows.
const LeaderboardSize = 3

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a student with coffee_count 0 and returns the
	// stored row. Returns ErrConflict on a duplicate name.
	CreateStudent(ctx context.Context, name string) (types.Student, error)

	// GetStudentByID fetches one student or ErrNotFound.
	GetStudentByID(ctx context.Context, id types.StudentID) (types.Student, error)

	// GetStudents returns every student ordered by name ascending.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// GetLeaderboard returns at most limit students ordered by
	// coffee_count descending, then name, then id.
	GetLeaderboard(ctx context.Context, limit int) ([]types.Student, error)

	// IncrementCoffee atomically adds one coffee and returns the updated
	// row, or ErrNotFound.
	IncrementCoffee(ctx context.Context, id types.StudentID) (types.Student, error)

	// DeleteStudentByID removes a student permanently, or ErrNotFound.
	DeleteStudentByID(ctx context.Context, id types.StudentID) (types.StudentID, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
