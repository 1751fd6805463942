package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// SessionRepository stores the pair as a single document, so both halves
// are written and removed together.
type SessionRepository struct {
	coll *mongo.Collection
	key  string
	now  func() time.Time
}

func NewSessionRepository(coll *mongo.Collection, key string) *SessionRepository {
	return &SessionRepository{coll: coll, key: key, now: time.Now}
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

type sessionDocument struct {
	ID        string       `bson:"_id"`
	Token     string       `bson:"todo_token"`
	User      userDocument `bson:"todo_user"`
	UpdatedAt int64        `bson:"updated_at"`
}

type userDocument struct {
	ID       int64  `bson:"id"`
	Username string `bson:"username"`
	Role     string `bson:"role"`
}

func toDocument(key string, rec domain.PersistedSession, now time.Time) sessionDocument {
	return sessionDocument{
		ID:    key,
		Token: rec.Token,
		User: userDocument{
			ID:       rec.User.ID,
			Username: rec.User.Username,
			Role:     string(rec.User.Role),
		},
		UpdatedAt: now.Unix(),
	}
}

func (d sessionDocument) toDomain() *domain.PersistedSession {
	return &domain.PersistedSession{
		Token: d.Token,
		User: domain.User{
			ID:       d.User.ID,
			Username: d.User.Username,
			Role:     domain.Role(d.User.Role),
		},
	}
}

// Load returns domain.ErrNoSession when the document is missing or lacks
// either half.
func (r *SessionRepository) Load(ctx context.Context) (*domain.PersistedSession, error) {
	var doc sessionDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": r.key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("session load: %w", err)
	}
	rec := doc.toDomain()
	if !rec.Complete() {
		return nil, domain.ErrNoSession
	}
	return rec, nil
}

// Save upserts the document.
func (r *SessionRepository) Save(ctx context.Context, rec domain.PersistedSession) error {
	doc := toDocument(r.key, rec, r.now())
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": r.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Clear deletes the document. A missing document is not an error.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": r.key}); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

// Ping reports whether the deployment is reachable.
func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
