package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config holds the credentials and token parameters for the auth Service.
type Config struct {
	Username   string
	Password   string
	SigningKey []byte
	Pepper     []byte
	SessionTTL time.Duration
}

// Service issues JWT bearer tokens for the single configured operator account
// and tracks them as Sessions in the Store.
type Service struct {
	sessions Store
	cfg      Config
}

// NewService creates an auth Service backed by the given session store.
func NewService(sessions Store, cfg Config) *Service {
	return &Service{sessions: sessions, cfg: cfg}
}

// Login checks the credentials in constant time, signs a new session token,
// and saves its hash. It returns the raw token for the client to present as a
// bearer credential.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
	if !userOK || !passOK {
		return "", ErrUnauthorized
	}

	now := time.Now()
	expires := now.Add(s.cfg.SessionTTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	sess := &Session{
		TokenHash: s.hash(token),
		Subject:   username,
		IssuedAt:  now,
		ExpiresAt: expires,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", errors.Wrap(err, "save session")
	}
	return token, nil
}

// Authenticate verifies the token signature and claims, loads the matching
// session, and compares hashes in constant time. Expired sessions are cleared
// eagerly.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.SigningKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}

	hash := s.hash(token)
	sess, err := s.sessions.Load(ctx, hash)
	if err != nil {
		return nil, ErrUnauthorized
	}

	stored, err := hex.DecodeString(sess.TokenHash)
	if err != nil {
		return nil, ErrUnauthorized
	}
	computed, _ := hex.DecodeString(hash)
	if subtle.ConstantTimeCompare(computed, stored) != 1 {
		return nil, ErrUnauthorized
	}

	if sess.Expired(time.Now()) {
		_ = s.sessions.Clear(ctx, hash)
		return nil, ErrUnauthorized
	}
	return sess, nil
}

// Logout clears the session for the given token. Unknown tokens are not an
// error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Clear(ctx, s.hash(token)); err != nil {
		return errors.Wrap(err, "clear session")
	}
	return nil
}

// hash computes the peppered HMAC-SHA256 of a raw token, hex encoded.
func (s *Service) hash(token string) string {
	mac := hmac.New(sha256.New, s.cfg.Pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
