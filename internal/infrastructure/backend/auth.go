package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// AuthAPI implements ports.AuthAPI over /auth.
type AuthAPI struct {
	c *Client
}

// NewAuthAPI returns the /auth adapter.
func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{c: c}
}

var _ ports.AuthAPI = (*AuthAPI)(nil)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login exchanges credentials for a token and the user's identity.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	var resp loginResponse
	if err := a.c.Do(ctx, http.MethodPost, "/auth/login", credentialsRequest{Username: username, Password: password}, &resp); err != nil {
		return "", nil, err
	}
	if resp.Token == "" || resp.User == nil || resp.User.ID == 0 {
		return "", nil, fmt.Errorf("POST /auth/login: incomplete login response")
	}
	return resp.Token, resp.User, nil
}

type registerRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// Register creates an account. Backends that answer without the created
// user yield the submitted identity with a zero id.
func (a *AuthAPI) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	var created domain.User
	req := registerRequest{Username: in.Username, Password: in.Password, Role: in.Role}
	if err := a.c.Do(ctx, http.MethodPost, "/auth/register", req, &created); err != nil {
		return nil, err
	}
	if created.Username == "" {
		created.Username = in.Username
	}
	if created.Role == "" {
		created.Role = in.Role
	}
	return &created, nil
}
