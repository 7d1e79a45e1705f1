package cache

import (
	"errors"

	"github.com/google/uuid"

	"github.com/ppiankov/lossreport/internal/workflow"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")

	// ErrBusy is returned when another action holds the session.
	ErrBusy = errors.New("session is busy")
)

// SessionStore holds review sessions between requests.
type SessionStore interface {
	Create(s workflow.Session)
	Get(id string) (workflow.Session, error)
	Acquire(id string) (*Lease, error)
	Delete(id string)
	Len() int
}

// NewSessionID returns a random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
