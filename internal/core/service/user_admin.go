package service

import (
	"context"
	"strings"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/forms"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// UserAdmin is the administrator's account management.
type UserAdmin struct {
	auth     ports.AuthAPI
	api      ports.UserAPI
	session  *SessionStore
	users    *Query[[]domain.User]
	validate *forms.Validator
	notify   Notifier
}

func NewUserAdmin(auth ports.AuthAPI, api ports.UserAPI, session *SessionStore, v *forms.Validator, n Notifier) *UserAdmin {
	return &UserAdmin{
		auth:     auth,
		api:      api,
		session:  session,
		users:    NewQuery("users", api.List, cloneSlice[domain.User]),
		validate: v,
		notify:   n,
	}
}

func (a *UserAdmin) Query() *Query[[]domain.User] { return a.users }

func (a *UserAdmin) List(ctx context.Context) ([]domain.User, error) {
	return a.users.Get(ctx)
}

// Search filters users by a case-insensitive username substring.
func Search(users []domain.User, term string) []domain.User {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), term) {
			out = append(out, u)
		}
	}
	return out
}

// Register creates an account.
func (a *UserAdmin) Register(ctx context.Context, form forms.NewUserForm) (*domain.User, error) {
	if err := a.validate.Validate(form); err != nil {
		return nil, err
	}
	u, err := a.auth.Register(ctx, ports.RegisterInput{Username: form.Username, Password: form.Password, Role: form.Role})
	if err != nil {
		a.notify.Error("Fehler beim Erstellen")
		return nil, err
	}
	a.users.Invalidate()
	a.notify.Success("Benutzer erstellt")
	return u, nil
}

// Update changes role and, if given, password.
func (a *UserAdmin) Update(ctx context.Context, id int64, form forms.EditUserForm) error {
	if err := a.validate.Validate(form); err != nil {
		return err
	}
	if err := a.api.Update(ctx, id, ports.UpdateUserInput{Role: form.Role, Password: form.Password}); err != nil {
		a.notify.Error("Fehler")
		return err
	}
	a.users.Invalidate()
	a.notify.Success("Benutzer aktualisiert")
	return nil
}

// Delete removes an account other than the caller's own.
func (a *UserAdmin) Delete(ctx context.Context, id int64) error {
	if me := a.session.User(); me != nil && me.ID == id {
		return domain.ErrSelfDelete
	}
	if err := a.api.Delete(ctx, id); err != nil {
		a.notify.Error("Fehler beim Löschen")
		return err
	}
	a.users.Invalidate()
	a.notify.Success("Benutzer gelöscht")
	return nil
}
