package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/lf9/taskdesk/internal/core/forms"
	"github.com/lf9/taskdesk/internal/core/service"
)

func (c *command) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdesk login", flag.ContinueOnError)
	fs.SetOutput(c.s.err)
	username := fs.String("u", "", "Username")
	password := fs.String("p", "", "Password (read from stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nav := c.app.Enter(ctx, service.LoginPath)
	if nav.Decision == service.DecisionRedirectHome {
		fmt.Fprintf(c.s.out, "Bereits angemeldet als %s\n", c.app.Session.User().Username)
		return nil
	}

	if *password == "" {
		line, err := bufio.NewReader(c.s.in).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	form := forms.LoginForm{Username: *username, Password: *password}
	if err := c.app.Validator.Validate(form); err != nil {
		return err
	}
	if err := c.app.Session.Login(ctx, form.Username, form.Password); err != nil {
		return fmt.Errorf("%s: %w", service.LoginErrorMessage(err), err)
	}
	u := c.app.Session.User()
	fmt.Fprintf(c.s.out, "Angemeldet als %s (%s)\n", u.Username, u.Role)
	return nil
}

func (c *command) logout(ctx context.Context) error {
	c.app.Session.Bootstrap(ctx)
	if err := c.app.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.s.out, "Abgemeldet")
	return nil
}

func (c *command) whoami(ctx context.Context) error {
	if _, err := c.enter(ctx, service.HomePath); err != nil {
		return err
	}
	u := c.app.Session.User()
	fmt.Fprintf(c.s.out, "%s (%s, id %d)\n", u.Username, u.Role, u.ID)

	tasks, err := c.app.Tasks.Tasks(ctx)
	if err != nil {
		return c.finish(err)
	}
	st := service.Dashboard(tasks, u.ID, time.Now())
	fmt.Fprintf(c.s.out, "Aufgaben: %d  Offen: %d  Erledigt: %d  Überfällig: %d\n", st.Total, st.Open, st.Done, st.Overdue)

	fmt.Fprintln(c.s.out)
	for _, item := range service.NavItems(u.Role) {
		fmt.Fprintf(c.s.out, "  %-14s %s\n", item.Path, item.Label)
	}
	return nil
}
