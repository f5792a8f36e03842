package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]*Session)}
}

func (s *memoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.TokenHash] = &cp
	return nil
}

func (s *memoryStore) Load(_ context.Context, tokenHash string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[tokenHash]
	if !ok {
		return nil, ErrUnauthorized
	}
	cp := *sess
	return &cp, nil
}

func (s *memoryStore) Clear(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}

func testService(store Store) *Service {
	return NewService(store, Config{
		Username:   "admin",
		Password:   "hunter2",
		SigningKey: []byte("test-signing-key"),
		Pepper:     []byte("test-pepper"),
		SessionTTL: time.Hour,
	})
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := testService(store)

	token, err := svc.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sess.Subject)
	assert.True(t, sess.ExpiresAt.After(sess.IssuedAt))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := testService(newMemoryStore())

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"nobody", "hunter2"},
		{"", ""},
	} {
		_, err := svc.Login(ctx, tc.user, tc.pass)
		assert.ErrorIs(t, err, ErrUnauthorized, "user=%q pass=%q", tc.user, tc.pass)
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	ctx := context.Background()
	svc := testService(newMemoryStore())

	_, err := svc.Authenticate(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	other := NewService(store, Config{
		Username:   "admin",
		Password:   "hunter2",
		SigningKey: []byte("different-key"),
		Pepper:     []byte("test-pepper"),
		SessionTTL: time.Hour,
	})
	token, err := other.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)

	_, err = testService(store).Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateClearsExpiredSession(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := testService(store)

	token, err := svc.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)

	// Age the stored session past its expiry while the JWT itself is still
	// within its validity window.
	store.mu.Lock()
	require.Len(t, store.sessions, 1)
	for _, sess := range store.sessions {
		sess.ExpiresAt = time.Now().Add(-time.Minute)
	}
	store.mu.Unlock()

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	store.mu.Lock()
	assert.Empty(t, store.sessions, "expired session should be cleared")
	store.mu.Unlock()
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := testService(store)

	token, err := svc.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Logging out again is a no-op.
	assert.NoError(t, svc.Logout(ctx, token))
}
