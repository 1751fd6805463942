package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// UserAPI implements ports.UserAPI over /users.
type UserAPI struct {
	c *Client
}

func NewUserAPI(c *Client) *UserAPI {
	return &UserAPI{c: c}
}

var _ ports.UserAPI = (*UserAPI)(nil)

func (a *UserAPI) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := a.c.Do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *UserAPI) Get(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := a.c.Do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type updateUserRequest struct {
	Role     domain.Role `json:"role"`
	Password string      `json:"password,omitempty"`
}

// Update changes the role and, when set, the password.
func (a *UserAPI) Update(ctx context.Context, id int64, in ports.UpdateUserInput) error {
	req := updateUserRequest{Role: in.Role, Password: in.Password}
	return a.c.Do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), req, nil)
}

func (a *UserAPI) Delete(ctx context.Context, id int64) error {
	return a.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}
