package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizdeskhq/bizdesk/internal/domain/auth"
	"github.com/bizdeskhq/bizdesk/internal/storage"
)

const (
	saveSessionSQL = `INSERT INTO sessions (token_hash, subject, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_hash) DO UPDATE
		SET subject = EXCLUDED.subject, issued_at = EXCLUDED.issued_at, expires_at = EXCLUDED.expires_at`

	loadSessionSQL  = `SELECT token_hash, subject, issued_at, expires_at FROM sessions WHERE token_hash = $1`
	clearSessionSQL = `DELETE FROM sessions WHERE token_hash = $1`
)

var _ auth.Store = (*SessionStore)(nil)

// SessionStore implements auth.Store backed by PostgreSQL.
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore returns a SessionStore that uses the given pool.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Save upserts the session record.
func (s *SessionStore) Save(ctx context.Context, sess *auth.Session) error {
	_, err := s.pool.Exec(ctx, saveSessionSQL, sess.TokenHash, sess.Subject, sess.IssuedAt, sess.ExpiresAt)
	if err != nil {
		return storage.Wrap("save session", err)
	}
	return nil
}

// Load fetches the session for a token hash.
func (s *SessionStore) Load(ctx context.Context, tokenHash string) (*auth.Session, error) {
	var sess auth.Session
	err := s.pool.QueryRow(ctx, loadSessionSQL, tokenHash).
		Scan(&sess.TokenHash, &sess.Subject, &sess.IssuedAt, &sess.ExpiresAt)
	if err != nil {
		return nil, storage.Wrap("load session", err)
	}
	return &sess, nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *SessionStore) Clear(ctx context.Context, tokenHash string) error {
	if _, err := s.pool.Exec(ctx, clearSessionSQL, tokenHash); err != nil {
		return storage.Wrap("clear session", err)
	}
	return nil
}
