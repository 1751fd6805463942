package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// stubSessionRepo keeps the persisted pair in memory.
type stubSessionRepo struct {
	mu      sync.Mutex
	rec     *domain.PersistedSession
	saves   int
	clears  int
	loadErr error
}

func (r *stubSessionRepo) Load(_ context.Context) (*domain.PersistedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.rec == nil || !r.rec.Complete() {
		return nil, domain.ErrNoSession
	}
	out := *r.rec
	return &out, nil
}

func (r *stubSessionRepo) Save(_ context.Context, rec domain.PersistedSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.rec = &rec
	return nil
}

func (r *stubSessionRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.rec = nil
	return nil
}

func (r *stubSessionRepo) stored() *domain.PersistedSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec
}

// stubAuth answers Login from a fixed table.
type stubAuth struct {
	users    map[string]domain.User
	password string
	token    string
	err      error
	calls    int
}

func (a *stubAuth) Login(_ context.Context, username, password string) (string, *domain.User, error) {
	a.calls++
	if a.err != nil {
		return "", nil, a.err
	}
	u, ok := a.users[username]
	if !ok || password != a.password {
		return "", nil, domain.ErrInvalidCredentials
	}
	return a.token, &u, nil
}

func (a *stubAuth) Register(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &domain.User{ID: 99, Username: in.Username, Role: in.Role}, nil
}

// stubUsers serves /users. onGet runs inside Get, before it answers.
type stubUsers struct {
	users     []domain.User
	getErr    error
	gets      int
	deleted   []int64
	updated   map[int64]ports.UpdateUserInput
	updateErr error
	onGet     func()
}

func (u *stubUsers) List(_ context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), u.users...), nil
}

func (u *stubUsers) Get(_ context.Context, id int64) (*domain.User, error) {
	u.gets++
	if u.onGet != nil {
		u.onGet()
	}
	if u.getErr != nil {
		return nil, u.getErr
	}
	for _, usr := range u.users {
		if usr.ID == id {
			found := usr
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (u *stubUsers) Update(_ context.Context, id int64, in ports.UpdateUserInput) error {
	if u.updateErr != nil {
		return u.updateErr
	}
	if u.updated == nil {
		u.updated = map[int64]ports.UpdateUserInput{}
	}
	u.updated[id] = in
	return nil
}

func (u *stubUsers) Delete(_ context.Context, id int64) error {
	u.deleted = append(u.deleted, id)
	return nil
}

// stubTasks serves /tasks. markDone, when set, decides the commit result.
type stubTasks struct {
	mu        sync.Mutex
	tasks     []domain.Task
	lists     int
	created   []ports.TaskInput
	updated   map[int64]ports.TaskInput
	updateErr error
	markDone  func(id int64, done bool) error
}

func (s *stubTasks) List(_ context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	return append([]domain.Task(nil), s.tasks...), nil
}

func (s *stubTasks) Create(_ context.Context, in ports.TaskInput) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, in)
	t := domain.Task{ID: int64(100 + len(s.created)), Title: in.Title}
	s.tasks = append(s.tasks, t)
	return &t, nil
}

func (s *stubTasks) Update(_ context.Context, id int64, in ports.TaskInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.updated == nil {
		s.updated = map[int64]ports.TaskInput{}
	}
	s.updated[id] = in
	return nil
}

func (s *stubTasks) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubTasks) MarkDone(_ context.Context, id int64, done bool) error {
	if s.markDone != nil {
		return s.markDone(id, done)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Done = done
		}
	}
	return nil
}

// recordingNotifier remembers toasts.
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	n.successes = append(n.successes, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func tokenExpiringIn(t *testing.T, sub any, d time.Duration) string {
	t.Helper()
	return makeToken(t, jwt.MapClaims{"sub": sub, "exp": time.Now().Add(d).Unix()})
}
