package ports

import (
	"context"

	"github.com/lf9/taskdesk/internal/core/domain"
)

// AuthAPI covers the backend's /auth endpoints.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
}

// RegisterInput carries a new account created by an administrator.
type RegisterInput struct {
	Username string
	Password string
	Role     domain.Role
}

// UpdateUserInput changes a user's role and, when Password is non-empty,
// their password.
type UpdateUserInput struct {
	Role     domain.Role
	Password string
}

// UserAPI covers /users.
type UserAPI interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, in UpdateUserInput) error
	Delete(ctx context.Context, id int64) error
}

// TaskInput is the writable part of a task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     string
	Done        bool
	PriorityID  int64
	ProjectID   int64
	UserID      int64
}

// TaskAPI covers /tasks.
type TaskAPI interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, in TaskInput) (*domain.Task, error)
	Update(ctx context.Context, id int64, in TaskInput) error
	Delete(ctx context.Context, id int64) error
	MarkDone(ctx context.Context, id int64, done bool) error
}

// NamedResource is a catalog entry with an id and a name, such as a
// project or a priority.
type NamedResource interface {
	domain.Project | domain.Priority
}

// CatalogAPI covers the parallel CRUD endpoints of projects and priorities.
type CatalogAPI[T NamedResource] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, name string) (*T, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}
