// Package ui is the interactive terminal client.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lf9/taskdesk/internal/app"
	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/service"
)

const toastTTL = 5 * time.Second

// Run starts the interactive client on the terminal.
func Run(ctx context.Context, a *app.App) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY; use the subcommands instead")
	}
	m := newModel(ctx, a)
	defer m.close()

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

type (
	bootedMsg  struct{ state service.SessionState }
	sessionMsg struct{ state service.SessionState }
	cacheMsg   struct{}
	tickMsg    time.Time

	loginDoneMsg struct{ err error }
	toggledMsg   struct{ err error }

	dataMsg struct {
		route string
		data  screenData
		err   error
	}
)

// screenData is whatever the current route shows.
type screenData struct {
	tasks      []domain.Task
	names      service.Names
	users      []domain.User
	projects   []domain.Project
	priorities []domain.Priority
}

type loginForm struct {
	username string
	password string
	focus    int
	err      string
	busy     bool
}

type model struct {
	ctx context.Context
	app *app.App

	state   service.SessionState
	path    string
	nav     service.Navigation
	refresh time.Duration

	sessionCh chan service.SessionState
	cacheCh   chan struct{}
	unsubs    []func()

	login   loginForm
	data    screenData
	loadErr string
	cursor  int
	toasts  []service.Toast
}

func newModel(ctx context.Context, a *app.App) *model {
	m := &model{
		ctx:       ctx,
		app:       a,
		state:     a.Session.State(),
		path:      service.HomePath,
		refresh:   a.Config.RefreshInterval,
		sessionCh: make(chan service.SessionState, 1),
		cacheCh:   make(chan struct{}, 1),
	}
	if m.refresh <= 0 {
		m.refresh = service.DefaultRefreshInterval
	}
	m.nav = service.Navigate(m.state, m.path)

	m.unsubs = append(m.unsubs,
		a.Session.Subscribe(func(st service.SessionState) {
			offerLatest(m.sessionCh, st)
		}),
		a.Tasks.Query().Subscribe(func() {
			select {
			case m.cacheCh <- struct{}{}:
			default:
			}
		}),
	)
	return m
}

func (m *model) close() {
	for _, fn := range m.unsubs {
		fn()
	}
	m.unsubs = nil
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.bootstrapCmd(),
		waitForSession(m.sessionCh),
		waitForCache(m.cacheCh),
		tickCmd(m.refresh),
	)
}

func (m *model) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		return bootedMsg{state: m.app.Session.Bootstrap(m.ctx)}
	}
}

// offerLatest puts st into ch, replacing a state the model has not read yet.
func offerLatest(ch chan service.SessionState, st service.SessionState) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func waitForSession(ch <-chan service.SessionState) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg{state: <-ch}
	}
}

func waitForCache(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return cacheMsg{}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
