package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned for any authentication failure: bad
// credentials, unknown or expired sessions, malformed tokens. Callers get no
// finer detail than that.
var ErrUnauthorized = errors.New("unauthorized")

// Session is the server-side record of a signed-in user. The raw bearer token
// is never stored; only its HMAC-SHA256 hash is.
type Session struct {
	TokenHash string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry at the given
// instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists sessions in a scoped collection. The explicit Load/Save/
// Clear surface replaces ambient global auth state.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, tokenHash string) (*Session, error)
	Clear(ctx context.Context, tokenHash string) error
}
