// Package session tags one inference run — a single module.Run call,
// or one REPL turn — with a UUID, so logs and errors from that run can
// be correlated without threading a request ID through every function
// signature (spec.md §3).
package session

import (
	"context"

	"github.com/google/uuid"
)

// Session carries the identity of one inference run.
type Session struct {
	ID uuid.UUID
}

// New mints a session with a fresh random ID.
func New() *Session {
	return &Session{ID: uuid.New()}
}

type contextKey struct{}

// WithSession returns a context carrying s, retrievable with FromContext.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or a freshly minted
// one if none was attached, so the result is never nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok {
		return s
	}
	return New()
}

// String returns the session's ID, for embedding in a log line or
// error message.
func (s *Session) String() string {
	if s == nil {
		return "<no-session>"
	}
	return s.ID.String()
}
