package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/ports"
)

const forcedLogoutTimeout = 5 * time.Second

// SessionState is a point-in-time view of the session store.
type SessionState struct {
	User         *domain.User
	Token        string
	Initializing bool
}

// IsAuthenticated reports whether a credential is held.
func (s SessionState) IsAuthenticated() bool {
	return s.Token != ""
}

// Role returns the current user's role, or "" when logged out.
func (s SessionState) Role() domain.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// SessionStore is the single source of truth for who is logged in. One
// instance is created at startup and handed to every component that needs
// it; Close must be called on teardown.
type SessionStore struct {
	repo  ports.SessionRepository
	auth  ports.AuthAPI
	users ports.UserAPI
	log   zerolog.Logger
	now   func() time.Time

	mu           sync.RWMutex
	session      domain.Session
	candidate    string
	epoch        uint64 // bumped whenever the held session is replaced or cleared
	initializing bool
	observers    map[int]func(SessionState)
	nextObserver int

	bootOnce sync.Once
	closeFn  func()
}

// NewSessionStore builds the store and subscribes it to signal. The store
// starts in the initializing state until Bootstrap completes.
func NewSessionStore(
	repo ports.SessionRepository,
	auth ports.AuthAPI,
	users ports.UserAPI,
	signal *ForcedLogout,
	log zerolog.Logger,
) *SessionStore {
	s := &SessionStore{
		repo:         repo,
		auth:         auth,
		users:        users,
		log:          log,
		now:          time.Now,
		initializing: true,
		observers:    make(map[int]func(SessionState)),
	}
	if signal != nil {
		s.closeFn = signal.Listen(s.onForcedLogout)
	}
	return s
}

// Close deregisters the forced-logout listener. Safe to call repeatedly.
func (s *SessionStore) Close() {
	s.mu.Lock()
	fn := s.closeFn
	s.closeFn = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// State returns a snapshot of the current session.
func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *SessionStore) stateLocked() SessionState {
	st := SessionState{Token: s.session.Token, Initializing: s.initializing}
	if s.session.User != nil {
		u := *s.session.User
		st.User = &u
	}
	return st
}

// IsAuthenticated reports whether a credential is currently held.
func (s *SessionStore) IsAuthenticated() bool {
	return s.State().IsAuthenticated()
}

// User returns the logged-in identity, or nil.
func (s *SessionStore) User() *domain.User {
	return s.State().User
}

// Credential returns the bearer token outgoing requests should carry: the
// live token, or while bootstrapping the persisted token being verified.
func (s *SessionStore) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.Token != "" {
		return s.session.Token
	}
	return s.candidate
}

// Subscribe registers fn to be called after every state change.
func (s *SessionStore) Subscribe(fn func(SessionState)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Login authenticates against the backend. On success the pair is
// persisted, then held in memory. Errors are returned unchanged and leave
// the store untouched.
func (s *SessionStore) Login(ctx context.Context, username, password string) error {
	token, user, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if token == "" || user == nil {
		return fmt.Errorf("login: backend returned no credential")
	}

	if err := s.repo.Save(ctx, domain.PersistedSession{Token: token, User: *user}); err != nil {
		return fmt.Errorf("login: persist session: %w", err)
	}

	u := *user
	s.update(func() {
		s.epoch++
		s.session = domain.Session{User: &u, Token: token}
	})
	s.log.Info().Int64("user_id", u.ID).Str("role", string(u.Role)).Msg("logged in")
	return nil
}

// Logout clears persisted and in-memory state. Calling it while logged out
// is a no-op that still succeeds.
func (s *SessionStore) Logout(ctx context.Context) error {
	return s.clear(ctx, "logout")
}

// Bootstrap decides once whether the persisted session is still usable.
// It never fails: every problem degrades to the logged-out state. Later
// calls return immediately with the current state.
func (s *SessionStore) Bootstrap(ctx context.Context) SessionState {
	s.bootOnce.Do(func() {
		defer s.update(func() { s.initializing = false })
		s.bootstrap(ctx)
	})
	return s.State()
}

func (s *SessionStore) bootstrap(ctx context.Context) {
	rec, err := s.repo.Load(ctx)
	if err != nil || !rec.Complete() {
		if err != nil && !errors.Is(err, domain.ErrNoSession) {
			s.log.Warn().Err(err).Msg("persisted session unreadable")
		}
		_ = s.clear(ctx, "bootstrap: no session")
		return
	}

	info, err := InspectToken(rec.Token, s.now())
	if err == nil && !info.Names(rec.User) {
		err = fmt.Errorf("%w: subject %q does not match user %d", domain.ErrTokenMalformed, info.Subject, rec.User.ID)
	}
	if err != nil {
		s.log.Info().Err(err).Msg("persisted token rejected locally")
		_ = s.clear(ctx, "bootstrap: token")
		return
	}

	s.mu.Lock()
	s.candidate = rec.Token
	epoch := s.epoch
	s.mu.Unlock()

	if _, err := s.users.Get(ctx, rec.User.ID); err != nil {
		s.log.Info().Err(err).Int64("user_id", rec.User.ID).Msg("persisted session rejected by backend")
		_ = s.clear(ctx, "bootstrap: verification")
		return
	}

	// A logout or login while the backend answered wins over the restore.
	u := rec.User
	restored := false
	s.update(func() {
		if s.epoch != epoch {
			return
		}
		restored = true
		s.candidate = ""
		s.session = domain.Session{User: &u, Token: rec.Token}
	})
	if !restored {
		s.log.Info().Int64("user_id", u.ID).Msg("session changed during verification, restore dropped")
		return
	}
	s.log.Info().Int64("user_id", u.ID).Msg("session restored")
}

func (s *SessionStore) onForcedLogout() {
	ctx, cancel := context.WithTimeout(context.Background(), forcedLogoutTimeout)
	defer cancel()
	_ = s.clear(ctx, "forced logout")
}

// clear drops memory state unconditionally and removes the persisted pair.
// The persisted error, if any, is returned after memory is already clean.
func (s *SessionStore) clear(ctx context.Context, reason string) error {
	err := s.repo.Clear(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("reason", reason).Msg("clearing persisted session failed")
	}

	s.mu.RLock()
	changed := s.session.Token != "" || s.session.User != nil || s.candidate != ""
	s.mu.RUnlock()

	s.update(func() {
		s.epoch++
		s.session = domain.Session{}
		s.candidate = ""
	})
	if changed {
		s.log.Info().Str("reason", reason).Msg("session cleared")
	}
	return err
}

// update applies fn under the lock and notifies observers afterwards.
func (s *SessionStore) update(fn func()) {
	s.mu.Lock()
	fn()
	st := s.stateLocked()
	obs := make([]func(SessionState), 0, len(s.observers))
	for _, o := range s.observers {
		obs = append(obs, o)
	}
	s.mu.Unlock()

	for _, o := range obs {
		o(st)
	}
}
