package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/forms"
	"github.com/lf9/taskdesk/internal/core/service"
)

func (c *command) users(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "list":
		return c.listUsers(ctx, args)
	case "add":
		return c.addUser(ctx, args)
	case "edit":
		return c.editUser(ctx, args)
	case "delete":
		return c.deleteUser(ctx, args)
	default:
		return fmt.Errorf("unknown users command: %s", sub)
	}
}

func (c *command) listUsers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdesk users list", flag.ContinueOnError)
	fs.SetOutput(c.s.err)
	term := fs.String("q", "", "Filter by username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := c.enterRoute(ctx, service.RouteUsers, 0); err != nil {
		return err
	}
	users, err := c.app.Users.List(ctx)
	if err != nil {
		return c.finish(err)
	}
	writeUsers(c.s.out, service.Search(users, *term))
	return c.finish(nil)
}

func (c *command) addUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdesk users add", flag.ContinueOnError)
	fs.SetOutput(c.s.err)
	var form forms.NewUserForm
	var role string
	fs.StringVar(&form.Username, "username", "", "Username")
	fs.StringVar(&form.Password, "password", "", "Password")
	fs.StringVar(&form.PasswordConfirm, "confirm", "", "Password confirmation")
	fs.StringVar(&role, "role", string(domain.RoleStaff), "Role")
	if err := fs.Parse(args); err != nil {
		return err
	}
	form.Role = domain.Role(role)

	if _, err := c.enterRoute(ctx, service.RouteNewUser, 0); err != nil {
		return err
	}
	u, err := c.app.Users.Register(ctx, form)
	if err != nil {
		return c.finish(err)
	}
	fmt.Fprintf(c.s.out, "Benutzer %s angelegt\n", u.Username)
	return c.finish(nil)
}

func (c *command) editUser(ctx context.Context, args []string) error {
	id, rest, err := splitID(args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("taskdesk users edit", flag.ContinueOnError)
	fs.SetOutput(c.s.err)
	var form forms.EditUserForm
	var role string
	fs.StringVar(&role, "role", "", "Role")
	fs.StringVar(&form.Password, "password", "", "New password (optional)")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	form.Role = domain.Role(role)

	if _, err := c.enterRoute(ctx, service.RouteEditUser, id); err != nil {
		return err
	}
	if form.Role == "" {
		// keep the current role, as the edit screen pre-fills it
		users, err := c.app.Users.List(ctx)
		if err != nil {
			return c.finish(err)
		}
		for _, u := range users {
			if u.ID == id {
				form.Role = u.Role
			}
		}
	}
	return c.finish(c.app.Users.Update(ctx, id, form))
}

func (c *command) deleteUser(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if _, err := c.enterRoute(ctx, service.RouteUsers, 0); err != nil {
		return err
	}
	return c.finish(c.app.Users.Delete(ctx, id))
}
