package ui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/forms"
	"github.com/lf9/taskdesk/internal/core/service"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.collectToasts()

	switch msg := msg.(type) {
	case bootedMsg:
		m.state = msg.state
		return m, m.navigate(m.path, false)
	case sessionMsg:
		m.state = msg.state
		cmd := m.navigate(m.path, false)
		return m, tea.Batch(cmd, waitForSession(m.sessionCh))
	case cacheMsg:
		if tasks, ok := m.app.Tasks.Query().Peek(); ok {
			m.data.tasks = tasks
		}
		return m, waitForCache(m.cacheCh)
	case tickMsg:
		var cmd tea.Cmd
		if m.nav.Decision == service.DecisionRender && m.nav.Route.Name != service.RouteLogin {
			cmd = m.load(true)
		}
		return m, tea.Batch(cmd, tickCmd(m.refresh))
	case dataMsg:
		if msg.route != m.nav.Route.Name {
			return m, nil
		}
		m.data = msg.data
		m.loadErr = ""
		if msg.err != nil {
			m.loadErr = service.ErrorMessage(msg.err)
		}
		m.clampCursor()
		return m, nil
	case loginDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.err = loginError(msg.err)
			return m, nil
		}
		m.login = loginForm{}
		return m, nil
	case toggledMsg:
		return m, m.load(false)
	case tea.KeyMsg:
		if m.state.Initializing {
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.nav.Route.Name == service.RouteLogin {
			return m, m.updateLogin(msg)
		}
		return m, m.updateKeys(msg)
	}
	return m, nil
}

func loginError(err error) string {
	var fe forms.Errors
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return service.LoginErrorMessage(err)
}

// navigate resolves path against the guard and loads the screen's data.
func (m *model) navigate(path string, refetch bool) tea.Cmd {
	prev := m.nav.Route.Name
	m.nav = service.Navigate(m.state, path)
	if m.nav.Decision == service.DecisionLoading {
		return nil
	}
	if m.nav.Decision != service.DecisionRender {
		m.nav = service.Navigate(m.state, m.nav.Target)
	}
	m.path = m.nav.Target
	if m.nav.Route.Name != prev {
		m.cursor = 0
		m.loadErr = ""
	}
	return m.load(refetch)
}

// load fetches what the current route displays. refetch bypasses the cache.
func (m *model) load(refetch bool) tea.Cmd {
	route := m.nav.Route.Name
	if m.nav.Decision != service.DecisionRender || route == service.RouteLogin {
		return nil
	}
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		var (
			d   screenData
			err error
		)
		switch route {
		case service.RouteProjects:
			if refetch {
				a.Projects.Query().Invalidate()
			}
			d.projects, err = a.Projects.List(ctx)
		case service.RoutePriorities:
			if refetch {
				a.Priorities.Query().Invalidate()
			}
			d.priorities, err = a.Priorities.List(ctx)
		case service.RouteUsers:
			if refetch {
				a.Users.Query().Invalidate()
			}
			d.users, err = a.Users.List(ctx)
		default:
			if refetch {
				d.tasks, err = a.Tasks.Query().Refetch(ctx)
			} else {
				d.tasks, err = a.Tasks.Tasks(ctx)
			}
			if err == nil {
				d.names, err = a.Names(ctx, route == service.RouteTeamTasks)
			}
		}
		return dataMsg{route: route, data: d, err: err}
	}
}

func (m *model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	if m.login.busy {
		return nil
	}
	field := &m.login.username
	if m.login.focus == 1 {
		field = &m.login.password
	}
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return tea.Quit
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.login.focus = 1 - m.login.focus
	case tea.KeyBackspace:
		if r := []rune(*field); len(r) > 0 {
			*field = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		*field += " "
	case tea.KeyRunes:
		*field += string(msg.Runes)
	case tea.KeyEnter:
		if m.login.focus == 0 {
			m.login.focus = 1
			return nil
		}
		return m.submitLogin()
	}
	return nil
}

func (m *model) submitLogin() tea.Cmd {
	form := forms.LoginForm{Username: m.login.username, Password: m.login.password}
	if err := m.app.Validator.Validate(form); err != nil {
		m.login.err = loginError(err)
		return nil
	}
	m.login.busy, m.login.err = true, ""
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return loginDoneMsg{err: a.Session.Login(ctx, form.Username, form.Password)}
	}
}

func (m *model) updateKeys(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return tea.Quit
	case "r", "f5":
		return m.load(true)
	case "L":
		a, ctx := m.app, m.ctx
		return func() tea.Msg {
			_ = a.Session.Logout(ctx)
			return nil
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return nil
	case "down", "j":
		m.cursor++
		m.clampCursor()
		return nil
	case "esc", "backspace":
		if m.nav.Route.Name == service.RouteTaskDetail {
			return m.navigate("/tasks", false)
		}
		return nil
	case "enter":
		if t, ok := m.selectedTask(); ok {
			return m.navigate(taskPath(t.ID), false)
		}
		return nil
	case " ", "space":
		return m.toggleSelected()
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		items := service.NavItems(m.state.Role())
		if i := int(key[0] - '1'); i < len(items) {
			return m.navigate(items[i].Path, false)
		}
	}
	return nil
}

func taskPath(id int64) string {
	return "/tasks/" + itoa(id)
}

// visibleTasks is the task list of the current route in display order.
func (m *model) visibleTasks() []domain.Task {
	switch m.nav.Route.Name {
	case service.RouteMyTasks, service.RouteDashboard:
		return service.MyTasks(m.data.tasks, m.userID(), service.TaskFilter{Sort: service.SortPriority})
	case service.RouteTeamTasks:
		return service.TeamTasks(m.data.tasks, service.TaskFilter{Sort: service.SortPriority})
	case service.RouteTaskDetail:
		if id, ok := m.nav.ID(); ok {
			if t, found := service.FindTask(m.data.tasks, id); found {
				return []domain.Task{t}
			}
		}
	}
	return nil
}

func (m *model) selectedTask() (domain.Task, bool) {
	tasks := m.visibleTasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.cursor], true
}

// toggleSelected flips the selected task. The cache changes at once; the
// backend call runs in the background and rolls back on failure.
func (m *model) toggleSelected() tea.Cmd {
	t, ok := m.selectedTask()
	if !ok {
		return nil
	}
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return toggledMsg{err: a.Tasks.ToggleDone(ctx, t.ID, !t.Done)}
	}
}

func (m *model) rows() int {
	switch m.nav.Route.Name {
	case service.RouteProjects:
		return len(m.data.projects)
	case service.RoutePriorities:
		return len(m.data.priorities)
	case service.RouteUsers:
		return len(m.data.users)
	default:
		return len(m.visibleTasks())
	}
}

func (m *model) clampCursor() {
	if n := m.rows(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) userID() int64 {
	if m.state.User == nil {
		return 0
	}
	return m.state.User.ID
}

// collectToasts moves queued notifications into the toast line and drops
// expired ones.
func (m *model) collectToasts() {
	m.toasts = append(m.toasts, m.app.Toasts.Drain()...)
	now := time.Now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Sub(t.At) < toastTTL {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}
