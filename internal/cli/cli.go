// Package cli implements the taskdesk command line. Every command
// bootstraps the persisted session first and then passes the route guard
// exactly like a screen of the interactive client would.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lf9/taskdesk/internal/app"
	"github.com/lf9/taskdesk/internal/core/service"
	"github.com/lf9/taskdesk/internal/infrastructure/config"
	"github.com/lf9/taskdesk/internal/ui"
	"github.com/lf9/taskdesk/pkg/logger"
)

// Version is set via ldflags at build time.
var Version = "dev"

// ErrRedirected is returned when the guard refuses the command's screen.
var ErrRedirected = errors.New("redirected")

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// Run executes the taskdesk CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
}

func run(ctx context.Context, args []string, s streams) error {
	fs := flag.NewFlagSet("taskdesk", flag.ContinueOnError)
	fs.SetOutput(s.err)
	fs.Usage = func() { printUsage(s.err) }
	configPath := fs.String("config", "", "Path to config file (default "+config.DefaultFile()+")")
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *help {
		printUsage(s.out)
		return nil
	}
	if *showVersion {
		fmt.Fprintln(s.out, "taskdesk", Version)
		return nil
	}

	subcommand := "tui"
	rest := fs.Args()
	if len(rest) > 0 {
		subcommand, rest = rest[0], rest[1:]
	}
	switch subcommand {
	case "help":
		printUsage(s.out)
		return nil
	case "version":
		fmt.Fprintln(s.out, "taskdesk", Version)
		return nil
	}

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		return err
	}
	log, closeLog, err := initLogger(cfg, s.err)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	c := &command{app: a, s: s}
	switch subcommand {
	case "tui":
		return ui.Run(ctx, a)
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.logout(ctx)
	case "whoami":
		return c.whoami(ctx)
	case "tasks":
		return c.tasks(ctx, rest)
	case "projects":
		return catalogCommand(ctx, c, a.Projects, service.RouteProjects, rest)
	case "priorities":
		return catalogCommand(ctx, c, a.Priorities, service.RoutePriorities, rest)
	case "users":
		return c.users(ctx, rest)
	default:
		printUsage(s.err)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func initLogger(cfg *config.Config, stderr io.Writer) (zerolog.Logger, func(), error) {
	out := stderr
	closeFn := func() {}
	if cfg.Log.File != "" {
		f, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			return zerolog.Logger{}, nil, err
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}
	log := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: out})
	return log, closeFn, nil
}

// command carries what every subcommand needs.
type command struct {
	app *app.App
	s   streams
}

// enter bootstraps and applies the guard for path. Anything but a render
// decision is reported and becomes an error.
func (c *command) enter(ctx context.Context, path string) (service.Navigation, error) {
	nav := c.app.Enter(ctx, path)
	switch nav.Decision {
	case service.DecisionRender:
		return nav, nil
	case service.DecisionRedirectLogin:
		return nav, fmt.Errorf("%w to %s: nicht angemeldet, bitte zuerst `taskdesk login` ausführen", ErrRedirected, nav.Target)
	case service.DecisionRedirectHome:
		return nav, fmt.Errorf("%w to %s: keine Berechtigung für %q", ErrRedirected, nav.Target, nav.Route.Title)
	default:
		return nav, fmt.Errorf("%w: session not ready", ErrRedirected)
	}
}

func (c *command) enterRoute(ctx context.Context, name string, id int64) (service.Navigation, error) {
	route, ok := service.RouteByName(name)
	if !ok {
		return service.Navigation{}, fmt.Errorf("unknown route %s", name)
	}
	path := route.Path
	if id != 0 {
		path = strings.Replace(path, ":id", fmt.Sprint(id), 1)
	}
	return c.enter(ctx, path)
}

// finish prints queued toasts and turns err into its user-facing message.
func (c *command) finish(err error) error {
	for _, t := range c.app.Toasts.Drain() {
		mark := "✓"
		if t.Kind == service.ToastError {
			mark = "✗"
		}
		fmt.Fprintf(c.s.out, "%s %s\n", mark, t.Message)
	}
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", service.ErrorMessage(err), err)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `taskdesk - administrative client for the task service

Usage:
  taskdesk [--config file] [command] [args]

Commands:
  tui                                  Interactive client (default)
  login -u user [-p password]          Log in; password is read from stdin when omitted
  logout                               Log out
  whoami                               Show the current user and task overview
  tasks list [-project id] [-priority id] [-sort priority|date]
  tasks team [-user id] [-project id] [-priority id] [-sort priority|date]
  tasks show <id>
  tasks new -title t -user id -priority id -project id [-due YYYY-MM-DD] [-desc d]
  tasks edit <id> [-title t] [-user id] [-priority id] [-project id] [-due YYYY-MM-DD] [-desc d]
  tasks done|undone <id>
  tasks delete <id>
  projects   list | add <name> | rename <id> <name> | delete <id>
  priorities list | add <name> | rename <id> <name> | delete <id>
  users list [-q term]
  users add -username u -password p -confirm p -role r
  users edit <id> -role r [-password p]
  users delete <id>
  version                              Show version
`)
}
