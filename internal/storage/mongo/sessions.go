package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bizdeskhq/bizdesk/internal/domain/auth"
	"github.com/bizdeskhq/bizdesk/internal/storage"
)

var _ auth.Store = (*SessionStore)(nil)

// SessionStore implements auth.Store on the sessions collection, keyed by
// token hash.
type SessionStore struct {
	coll *mongo.Collection
}

// NewSessionStore returns a SessionStore using the given database.
func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{coll: db.Collection(collSessions)}
}

type sessionDoc struct {
	TokenHash string    `bson:"_id"`
	Subject   string    `bson:"subject"`
	IssuedAt  time.Time `bson:"issuedAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// Save upserts the session record.
func (s *SessionStore) Save(ctx context.Context, sess *auth.Session) error {
	doc := sessionDoc{
		TokenHash: sess.TokenHash,
		Subject:   sess.Subject,
		IssuedAt:  sess.IssuedAt,
		ExpiresAt: sess.ExpiresAt,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.TokenHash}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return storage.Wrap("save session", err)
	}
	return nil
}

// Load fetches the session for a token hash.
func (s *SessionStore) Load(ctx context.Context, tokenHash string) (*auth.Session, error) {
	var doc sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": tokenHash}).Decode(&doc); err != nil {
		return nil, storage.Wrap("load session", err)
	}
	return &auth.Session{
		TokenHash: doc.TokenHash,
		Subject:   doc.Subject,
		IssuedAt:  doc.IssuedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *SessionStore) Clear(ctx context.Context, tokenHash string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": tokenHash}); err != nil {
		return storage.Wrap("clear session", err)
	}
	return nil
}
