// Package file persists the session pair as a small JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// SessionRepository stores {"todo_token": ..., "todo_user": {...}} at path.
// Writes go through a temp file and rename so a crash never leaves half a
// record behind.
type SessionRepository struct {
	path string
	mu   sync.Mutex
}

func NewSessionRepository(path string) *SessionRepository {
	return &SessionRepository{path: path}
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

// document mirrors the two persisted keys. User is a pointer so a missing
// key can be told apart from a zero user.
type document struct {
	Token string       `json:"todo_token"`
	User  *domain.User `json:"todo_user"`
}

// Path returns the file location.
func (r *SessionRepository) Path() string { return r.path }

func (r *SessionRepository) Load(_ context.Context) (*domain.PersistedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("session load: decode %s: %w", r.path, err)
	}
	if doc.User == nil {
		return nil, domain.ErrNoSession
	}
	rec := &domain.PersistedSession{Token: doc.Token, User: *doc.User}
	if !rec.Complete() {
		return nil, domain.ErrNoSession
	}
	return rec, nil
}

func (r *SessionRepository) Save(_ context.Context, rec domain.PersistedSession) error {
	u := rec.User
	raw, err := json.MarshalIndent(document{Token: rec.Token, User: &u}, "", "  ")
	if err != nil {
		return fmt.Errorf("session save: encode: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session save: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Clear removes the file. A missing file is not an error.
func (r *SessionRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

// Ping checks that the directory holding the file exists or can be made.
func (r *SessionRepository) Ping(_ context.Context) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	return nil
}
