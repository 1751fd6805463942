// Package app wires the client together: one session store, one gateway,
// the cached collections and the optional diagnostics server. Both the
// subcommands and the interactive client start from New.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/forms"
	"github.com/lf9/taskdesk/internal/core/ports"
	"github.com/lf9/taskdesk/internal/core/service"
	"github.com/lf9/taskdesk/internal/infrastructure/backend"
	"github.com/lf9/taskdesk/internal/infrastructure/config"
	"github.com/lf9/taskdesk/internal/infrastructure/db/file"
	mongostore "github.com/lf9/taskdesk/internal/infrastructure/db/mongo"
	redisstore "github.com/lf9/taskdesk/internal/infrastructure/db/redis"
	diaghttp "github.com/lf9/taskdesk/internal/infrastructure/http"
	"github.com/lf9/taskdesk/internal/infrastructure/http/handlers"
	"github.com/lf9/taskdesk/internal/infrastructure/queue"
)

// sessionRepository is a persisted-session backend the readiness probe can
// ping.
type sessionRepository interface {
	ports.SessionRepository
	Ping(ctx context.Context) error
}

type App struct {
	Config     *config.Config
	Log        zerolog.Logger
	Signal     *service.ForcedLogout
	Session    *service.SessionStore
	Client     *backend.Client
	Toasts     *service.Toasts
	Validator  *forms.Validator
	Tasks      *service.TaskBoard
	Projects   *service.Catalog[domain.Project]
	Priorities *service.Catalog[domain.Priority]
	Users      *service.UserAdmin

	repo    sessionRepository
	writes  *queue.Dispatcher
	diag    *diaghttp.Server
	closers []func() error
}

// New builds the App. Close releases everything New acquired.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	repo, err := a.openSessionRepository(ctx)
	if err != nil {
		return nil, err
	}
	a.repo = repo

	a.Signal = service.NewForcedLogout()
	a.Client = backend.New(cfg.APIURL, nil, a.Signal,
		backend.WithTimeout(cfg.HTTPTimeout),
		backend.WithLogger(log.With().Str("component", "backend").Logger()),
	)
	a.Session = service.NewSessionStore(
		repo,
		backend.NewAuthAPI(a.Client),
		backend.NewUserAPI(a.Client),
		a.Signal,
		log.With().Str("component", "session").Logger(),
	)
	a.Client.SetCredentialSource(a.Session)
	a.closers = append(a.closers, func() error { a.Session.Close(); return nil })

	a.Toasts = service.NewToasts()
	a.Validator = forms.NewValidator()
	a.Tasks = service.NewTaskBoard(backend.NewTaskAPI(a.Client), a.Validator, a.Toasts,
		log.With().Str("component", "tasks").Logger())
	a.writes = queue.NewDispatcher(cfg.WriteWorkers, log.With().Str("component", "writes").Logger())
	a.writes.Start(context.WithoutCancel(ctx))
	a.closers = append(a.closers, func() error { a.writes.Stop(); return nil })
	a.Tasks.SerializeWrites(a.writes)
	a.Projects = service.NewProjects(backend.NewProjectAPI(a.Client), a.Validator, a.Toasts)
	a.Priorities = service.NewPriorities(backend.NewPriorityAPI(a.Client), a.Validator, a.Toasts)
	a.Users = service.NewUserAdmin(backend.NewAuthAPI(a.Client), backend.NewUserAPI(a.Client), a.Session, a.Validator, a.Toasts)

	// A different identity must never see the previous one's cache.
	unsubscribe := a.Session.Subscribe(func(st service.SessionState) {
		if !st.IsAuthenticated() {
			a.invalidateAll()
		}
	})
	a.closers = append(a.closers, func() error { unsubscribe(); return nil })

	if cfg.DiagAddr != "" {
		router := diaghttp.NewRouter(log.With().Str("component", "diag").Logger(), a.Pingers())
		a.diag = diaghttp.NewServer(cfg.DiagAddr, router, log)
		a.diag.Start()
	}

	return a, nil
}

func (a *App) openSessionRepository(ctx context.Context) (sessionRepository, error) {
	switch a.Config.Session.Backend {
	case config.SessionBackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     a.Config.Redis.Addr,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return redisstore.NewSessionRepository(client, a.Config.Redis.Prefix), nil
	case config.SessionBackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      a.Config.Mongo.URI,
			Database: a.Config.Mongo.Database,
		})
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		return mongostore.NewSessionRepository(db.Collection(a.Config.Mongo.Collection), a.Config.Mongo.Key), nil
	default:
		return file.NewSessionRepository(a.Config.Session.File), nil
	}
}

// Pingers lists the dependencies reported by the readiness probe.
func (a *App) Pingers() map[string]handlers.Pinger {
	return map[string]handlers.Pinger{
		"backend": a.Client,
		"session": a.repo,
	}
}

// Enter bootstraps the session, at most once per App, and resolves path
// against the guard.
func (a *App) Enter(ctx context.Context, path string) service.Navigation {
	state := a.Session.Bootstrap(ctx)
	return service.Navigate(state, path)
}

func (a *App) invalidateAll() {
	a.Tasks.Query().Invalidate()
	a.Projects.Query().Invalidate()
	a.Priorities.Query().Invalidate()
	a.Users.Query().Invalidate()
}

// Names loads the lookup tables task views need. The user list is only
// requested by team views; a forbidden user list degrades to ids.
func (a *App) Names(ctx context.Context, withUsers bool) (service.Names, error) {
	projects, err := a.Projects.List(ctx)
	if err != nil {
		return service.Names{}, err
	}
	priorities, err := a.Priorities.List(ctx)
	if err != nil {
		return service.Names{}, err
	}
	if !withUsers {
		return service.NewNames(projects, priorities, nil), nil
	}
	users, err := a.Users.List(ctx)
	if err != nil && !errors.Is(err, domain.ErrForbidden) {
		return service.Names{}, err
	}
	return service.NewNames(projects, priorities, users), nil
}

// Close stops the diagnostics server and releases connections in reverse
// order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.diag != nil {
		if err := a.diag.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("diagnostics: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
