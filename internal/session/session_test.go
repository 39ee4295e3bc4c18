package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sunholo/ailang-infer/internal/session"
)

func TestNewMintsDistinctSessions(t *testing.T) {
	a, b := session.New(), session.New()
	assert.NotEqual(t, a.ID, b.ID)
}

func TestWithSessionRoundTripsThroughContext(t *testing.T) {
	s := session.New()
	ctx := session.WithSession(context.Background(), s)
	got := session.FromContext(ctx)
	assert.Equal(t, s.ID, got.ID)
}

func TestFromContextMintsFreshSessionWhenNoneAttached(t *testing.T) {
	got := session.FromContext(context.Background())
	assert.NotNil(t, got)
}

func TestStringFormatsIDAndHandlesNil(t *testing.T) {
	s := session.New()
	assert.Equal(t, s.ID.String(), s.String())

	var nilSession *session.Session
	assert.Equal(t, "<no-session>", nilSession.String())
}
