package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/service"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)

	toneStyles = map[service.Tone]lipgloss.Style{
		service.ToneHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		service.ToneMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		service.ToneLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func (m *model) View() string {
	var b strings.Builder

	if m.state.Initializing || m.nav.Decision == service.DecisionLoading {
		b.WriteString("Laden...\n")
		return b.String()
	}
	if m.nav.Route.Name == service.RouteLogin {
		m.writeLogin(&b)
		m.writeToasts(&b)
		return b.String()
	}

	m.writeHeader(&b)
	if m.loadErr != "" {
		b.WriteString(errorStyle.Render(m.loadErr) + "\n\n")
	}

	switch m.nav.Route.Name {
	case service.RouteDashboard:
		m.writeDashboard(&b)
	case service.RouteMyTasks, service.RouteTeamTasks:
		m.writeTasks(&b)
	case service.RouteTaskDetail:
		m.writeTaskDetail(&b)
	case service.RouteProjects:
		writeNamed(&b, projectRows(m.data.projects), m.cursor)
	case service.RoutePriorities:
		writeNamed(&b, priorityRows(m.data.priorities), m.cursor)
	case service.RouteUsers:
		m.writeUsers(&b)
	case service.RouteNewTask:
		b.WriteString("Neue Aufgaben legen Sie mit `taskdesk tasks new` an.\n")
	case service.RouteNewUser, service.RouteEditUser:
		b.WriteString("Benutzer verwalten Sie mit `taskdesk users add|edit`.\n")
	}

	m.writeToasts(&b)
	writeFooter(&b, m.nav.Route.Name, m.refresh)
	return b.String()
}

func (m *model) writeLogin(b *strings.Builder) {
	b.WriteString(titleStyle.Render("taskdesk - Anmelden") + "\n\n")
	fields := []struct {
		label, value string
	}{
		{"Benutzername", m.login.username},
		{"Passwort", strings.Repeat("•", len([]rune(m.login.password)))},
	}
	for i, f := range fields {
		cursor := "  "
		if i == m.login.focus {
			cursor = "> "
		}
		fmt.Fprintf(b, "%s%-13s %s\n", cursor, f.label+":", f.value)
	}
	b.WriteString("\n")
	if m.login.busy {
		b.WriteString(dimStyle.Render("Anmeldung läuft...") + "\n")
	}
	if m.login.err != "" {
		b.WriteString(errorStyle.Render(m.login.err) + "\n")
	}
	b.WriteString(dimStyle.Render("tab: Feld wechseln  enter: anmelden  esc: beenden") + "\n")
}

func (m *model) writeHeader(b *strings.Builder) {
	user := ""
	if m.state.User != nil {
		user = fmt.Sprintf("%s (%s)", m.state.User.Username, m.state.User.Role)
	}
	b.WriteString(titleStyle.Render("taskdesk - "+m.nav.Route.Title) + "  " + dimStyle.Render(user) + "\n")

	items := service.NavItems(m.state.Role())
	parts := make([]string, len(items))
	for i, item := range items {
		label := fmt.Sprintf("%d %s", i+1, item.Label)
		if item.Path == m.nav.Route.Path {
			label = selectedStyle.Render(label)
		}
		parts[i] = label
	}
	b.WriteString(strings.Join(parts, "  ") + "\n\n")
}

func (m *model) writeDashboard(b *strings.Builder) {
	st := service.Dashboard(m.data.tasks, m.userID(), time.Now())
	fmt.Fprintf(b, "  Aufgaben    %d\n", st.Total)
	fmt.Fprintf(b, "  Offen       %d\n", st.Open)
	fmt.Fprintf(b, "  Erledigt    %d\n", st.Done)
	fmt.Fprintf(b, "  Überfällig  %d\n\n", st.Overdue)
	m.writeTasks(b)
}

func (m *model) writeTasks(b *strings.Builder) {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		b.WriteString(dimStyle.Render("Keine Aufgaben") + "\n")
		return
	}
	team := m.nav.Route.Name == service.RouteTeamTasks
	now := time.Now()
	for i, t := range tasks {
		check := "[ ]"
		if t.Done {
			check = "[x]"
		}
		prio := m.data.names.Priority(t)
		if style, ok := toneStyles[service.PriorityTone(prio)]; ok {
			prio = style.Render(prio)
		}
		line := fmt.Sprintf("%s %-40s %s", check, truncate(t.Title, 40), prio)
		if team {
			line += "  " + m.data.names.User(t)
		}
		if t.DueDate != "" {
			due := t.DueDate
			if service.Overdue(t, now) {
				due = errorStyle.Render(due)
			}
			line += "  " + due
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
}

func (m *model) writeTaskDetail(b *strings.Builder) {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		b.WriteString(dimStyle.Render("Aufgabe nicht gefunden") + "\n")
		return
	}
	t := tasks[0]
	status := "offen"
	if t.Done {
		status = "erledigt"
	}
	fmt.Fprintf(b, "  %s\n\n", titleStyle.Render(t.Title))
	fmt.Fprintf(b, "  Status       %s\n", status)
	fmt.Fprintf(b, "  Fällig       %s\n", t.DueDate)
	fmt.Fprintf(b, "  Priorität    %s\n", m.data.names.Priority(t))
	fmt.Fprintf(b, "  Projekt      %s\n", m.data.names.Project(t))
	fmt.Fprintf(b, "  Mitarbeiter  %s\n", m.data.names.User(t))
	if t.Description != "" {
		fmt.Fprintf(b, "\n  %s\n", t.Description)
	}
}

func (m *model) writeUsers(b *strings.Builder) {
	for i, u := range m.data.users {
		line := fmt.Sprintf("%4d  %-20s %s", u.ID, u.Username, u.Role)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
}

type namedRow struct {
	id   int64
	name string
}

func projectRows(items []domain.Project) []namedRow {
	rows := make([]namedRow, len(items))
	for i, p := range items {
		rows[i] = namedRow{p.ID, p.Name}
	}
	return rows
}

func priorityRows(items []domain.Priority) []namedRow {
	rows := make([]namedRow, len(items))
	for i, p := range items {
		rows[i] = namedRow{p.ID, p.Name}
	}
	return rows
}

func writeNamed(b *strings.Builder, rows []namedRow, cursor int) {
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("Keine Einträge") + "\n")
		return
	}
	for i, r := range rows {
		line := fmt.Sprintf("%4d  %s", r.id, r.name)
		if i == cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
}

func (m *model) writeToasts(b *strings.Builder) {
	if len(m.toasts) == 0 {
		return
	}
	b.WriteString("\n")
	for _, t := range m.toasts {
		if t.Kind == service.ToastError {
			b.WriteString(errorStyle.Render("✗ "+t.Message) + "\n")
			continue
		}
		b.WriteString(successStyle.Render("✓ "+t.Message) + "\n")
	}
}

func writeFooter(b *strings.Builder, route string, refresh time.Duration) {
	help := "1-9: Navigation  r: aktualisieren  L: abmelden  q: beenden"
	switch route {
	case service.RouteMyTasks, service.RouteTeamTasks, service.RouteDashboard:
		help = "↑/↓: auswählen  leertaste: erledigt  enter: Details  " + help
	case service.RouteTaskDetail:
		help = "leertaste: erledigt  esc: zurück  " + help
	}
	b.WriteString("\n" + dimStyle.Render(help) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Automatische Aktualisierung alle %s", refresh)) + "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
