package service

import (
	"strconv"
	"strings"

	"github.com/lf9/taskdesk/internal/core/domain"
)

// Route names.
const (
	RouteLogin      = "login"
	RouteDashboard  = "dashboard"
	RouteMyTasks    = "tasks"
	RouteTaskDetail = "task_detail"
	RouteNewTask    = "task_new"
	RouteTeamTasks  = "team_tasks"
	RouteProjects   = "projects"
	RoutePriorities = "priorities"
	RouteUsers      = "users"
	RouteNewUser    = "user_new"
	RouteEditUser   = "user_edit"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Route is a screen of the client together with its role allow-list.
type Route struct {
	Name   string
	Path   string // segments starting with ':' are parameters
	Title  string
	Public bool
	Roles  []domain.Role
}

var (
	leadOrAdmin = []domain.Role{domain.RoleDepartmentLead, domain.RoleAdmin}
	adminOnly   = []domain.Role{domain.RoleAdmin}
)

// Routes is the static route table. More specific paths come first so
// "/tasks/new" wins over "/tasks/:id".
var Routes = []Route{
	{Name: RouteLogin, Path: LoginPath, Title: "Anmelden", Public: true},
	{Name: RouteDashboard, Path: HomePath, Title: "Dashboard"},
	{Name: RouteMyTasks, Path: "/tasks", Title: "Meine Aufgaben"},
	{Name: RouteNewTask, Path: "/tasks/new", Title: "Neue Aufgabe", Roles: leadOrAdmin},
	{Name: RouteTaskDetail, Path: "/tasks/:id", Title: "Aufgabe"},
	{Name: RouteTeamTasks, Path: "/team/tasks", Title: "Team-Aufgaben", Roles: leadOrAdmin},
	{Name: RouteProjects, Path: "/projects", Title: "Projekte", Roles: leadOrAdmin},
	{Name: RoutePriorities, Path: "/priorities", Title: "Prioritäten", Roles: leadOrAdmin},
	{Name: RouteUsers, Path: "/admin/users", Title: "Benutzerverwaltung", Roles: adminOnly},
	{Name: RouteNewUser, Path: "/admin/users/new", Title: "Neuer Benutzer", Roles: adminOnly},
	{Name: RouteEditUser, Path: "/admin/users/:id/edit", Title: "Benutzer bearbeiten", Roles: adminOnly},
}

// RouteByName returns the route with the given name.
func RouteByName(name string) (Route, bool) {
	for _, r := range Routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Navigation is the resolved result of navigating to a path.
type Navigation struct {
	Route    Route
	Params   map[string]string
	Decision Decision
	// Target is where the client ends up: the requested path when the
	// route renders, or the redirect destination.
	Target string
	// Replace is set for every redirect so history never loops back to a
	// screen the user may not see.
	Replace bool
}

// ID returns the numeric :id parameter, if any.
func (n Navigation) ID() (int64, bool) {
	raw, ok := n.Params["id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

// Navigate resolves path against Routes and applies the guard. Unknown
// paths redirect home. The login screen itself redirects home once a
// session exists.
func Navigate(state SessionState, path string) Navigation {
	route, params, ok := match(path)
	if !ok {
		home, _ := RouteByName(RouteDashboard)
		return Navigation{Route: home, Decision: DecisionRedirectHome, Target: HomePath, Replace: true}
	}

	nav := Navigation{Route: route, Params: params, Target: path}
	if route.Public {
		nav.Decision = DecisionRender
		if route.Name == RouteLogin && !state.Initializing && state.IsAuthenticated() {
			nav.Decision = DecisionRedirectHome
		}
	} else {
		nav.Decision = Decide(state, route.Roles)
	}

	switch nav.Decision {
	case DecisionRedirectLogin:
		nav.Target, nav.Replace = LoginPath, true
	case DecisionRedirectHome:
		nav.Target, nav.Replace = HomePath, true
	}
	return nav
}

func match(path string) (Route, map[string]string, bool) {
	want := splitPath(path)
	for _, r := range Routes {
		pattern := splitPath(r.Path)
		if len(pattern) != len(want) {
			continue
		}
		params := map[string]string{}
		ok := true
		for i, seg := range pattern {
			if strings.HasPrefix(seg, ":") {
				if want[i] == "" {
					ok = false
					break
				}
				params[seg[1:]] = want[i]
				continue
			}
			if seg != want[i] {
				ok = false
				break
			}
		}
		if ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func splitPath(p string) []string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// NavItem is an entry of the navigation menu.
type NavItem struct {
	Path  string
	Label string
}

// NavItems returns the menu entries visible to role.
func NavItems(role domain.Role) []NavItem {
	items := []NavItem{
		{Path: HomePath, Label: "Dashboard"},
		{Path: "/tasks", Label: "Meine Aufgaben"},
	}
	if role == domain.RoleDepartmentLead || role == domain.RoleAdmin {
		items = append(items,
			NavItem{Path: "/team/tasks", Label: "Team-Aufgaben"},
			NavItem{Path: "/tasks/new", Label: "Neue Aufgabe"},
			NavItem{Path: "/projects", Label: "Projekte"},
			NavItem{Path: "/priorities", Label: "Prioritäten"},
		)
	}
	if role == domain.RoleAdmin {
		items = append(items, NavItem{Path: "/admin/users", Label: "Benutzerverwaltung"})
	}
	return items
}
