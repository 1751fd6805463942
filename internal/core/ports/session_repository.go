package ports

import (
	"context"

	"github.com/lf9/taskdesk/internal/core/domain"
)

// SessionRepository persists the credential/identity pair across restarts.
// Implementations must write and clear both halves atomically.
type SessionRepository interface {
	// Load returns domain.ErrNoSession when no complete pair is stored.
	Load(ctx context.Context) (*domain.PersistedSession, error)
	Save(ctx context.Context, rec domain.PersistedSession) error
	// Clear removes both halves. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
