// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage and utils can all import types without depending
// on each other.
package types

import (
	"errors"
	"strconv"
	"time"
)

// ErrInvalidID is returned by ParseStudentID for anything that is not a
// positive base-10 integer.
var ErrInvalidID = errors.New("invalid id: must be a positive integer")

// StudentID is the store-assigned primary key of a student.
// Ids are never reused, so a StudentID that was deleted stays dead.
type StudentID int64

// ParseStudentID converts a path segment such as "42" into a StudentID.
//
// It is strict on purpose: "abc", "", "-3", "0" and "1.5" are all rejected
// so that garbage never reaches the database layer.
func ParseStudentID(raw string) (StudentID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return StudentID(id), nil
}

// Student represents one row of the students table.
//
// Name is unique (exact, case-sensitive match) and immutable after creation.
// CoffeeCount starts at 0 and only ever goes up by one.
type Student struct {
	ID          StudentID `json:"id"`
	Name        string    `json:"name"`
	CoffeeCount int64     `json:"coffee_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateStudentRequest is the body accepted by POST /api/students.
//
// validate:"required" is checked after the name has been trimmed, which is
// what turns a whitespace-only name into a validation failure.
type CreateStudentRequest struct {
	Name string `json:"name" validate:"required"`
}

// StudentList is the envelope for GET /api/students.
type StudentList struct {
	Students []Student `json:"students"`
}

// Leaderboard is the envelope for GET /api/leaderboard.
type Leaderboard struct {
	Leaderboard []Student `json:"leaderboard"`
}

// DeleteResult is returned after a student has been removed.
type DeleteResult struct {
	Message string    `json:"message"`
	ID      StudentID `json:"id"`
}
