// Package session tracks logged-in identities. A session exists from a
// successful login until logout or idle expiry; it is the sole gate for
// every role-specific operation.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/textnorm"
)

// ErrSessionNotFound is returned when no session exists for a handle.
var ErrSessionNotFound = errors.New("session not found")

// Session is a live authenticated identity keyed by the chat handle. The
// JSON field names match the persisted snapshot layout.
type Session struct {
	Handle      int64     `json:"-"`
	Username    string    `json:"USERNAME"`
	Role        string    `json:"ROLE"`
	SupplierKey string    `json:"SUPPLIER_KEY,omitempty"`
	LastActive  time.Time `json:"last_active"`
}

// IsAdmin reports whether the session's role is admin.
func (s *Session) IsAdmin() bool {
	return textnorm.Normalize(s.Role) == cnst.RoleAdmin
}

// IsSupplier reports whether the session's role is supplier.
func (s *Session) IsSupplier() bool {
	return textnorm.Normalize(s.Role) == cnst.RoleSupplier
}

// Store persists the session set. Implementations must be safe for
// concurrent use; the handler loop touches sessions from many identities.
type Store interface {
	// Put inserts or replaces the session for its handle.
	Put(ctx context.Context, sess *Session) error

	// Get retrieves a session by handle, or ErrSessionNotFound.
	Get(ctx context.Context, handle int64) (*Session, error)

	// Delete removes the session for handle. Missing handles are not an error.
	Delete(ctx context.Context, handle int64) error

	// List returns all stored sessions.
	List(ctx context.Context) ([]*Session, error)

	// Load restores the session set from its durable snapshot, if any.
	Load(ctx context.Context) error
}
