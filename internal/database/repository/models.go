package repository

import (
	"errors"
	"time"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("repository: duplicate")

// Course represents a course row with its ordered tags.
type Course struct {
	ID         string
	Title      string
	Instructor string
	Price      int64
	Rating     float64
	Students   int64
	Image      string
	Category   string
	Tags       []string
	SortOrder  int
}

// Credential represents a locally registered account.
type Credential struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	HashVersion  string
	CreatedAt    time.Time
}
