package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/service"
	"github.com/lf9/taskdesk/pkg/logger"
)

// fakeService is a minimal task backend: two users, two tasks and one
// project. Tokens are unsigned-checked JWTs keyed by user id.
type fakeService struct {
	mu       sync.Mutex
	users    map[string]domain.User
	tokens   map[string]int64
	tasks    []domain.Task
	revoked  bool
	failDone bool
	patched  map[int64]bool
	replaced map[int64]map[string]any
}

func tokenFor(t *testing.T, id int64) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(id, 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return tok
}

func newFakeService(t *testing.T) (*fakeService, string) {
	t.Helper()
	f := &fakeService{
		users: map[string]domain.User{
			"admin": {ID: 1, Username: "admin", Role: domain.RoleAdmin},
			"anna":  {ID: 2, Username: "anna", Role: domain.RoleStaff},
		},
		tokens:   map[string]int64{},
		patched:  map[int64]bool{},
		replaced: map[int64]map[string]any{},
		tasks: []domain.Task{
			{ID: 5, Title: "Bericht schreiben", UserID: domain.Ref(2), ProjectID: domain.Ref(1), PriorityID: domain.Ref(1)},
			{ID: 6, Title: "Server warten", UserID: domain.Ref(1), Done: true},
		},
	}
	f.tokens[tokenFor(t, 1)] = 1
	f.tokens[tokenFor(t, 2)] = 2

	e := echo.New()
	e.HideBanner = true
	e.POST("/auth/login", func(c echo.Context) error {
		var req struct{ Username, Password string }
		if err := c.Bind(&req); err != nil {
			return err
		}
		u, ok := f.users[req.Username]
		if !ok || req.Password != "geheim" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid"})
		}
		for tok, id := range f.tokens {
			if id == u.ID {
				return c.JSON(http.StatusOK, map[string]any{"token": tok, "user": u})
			}
		}
		return c.NoContent(http.StatusInternalServerError)
	})

	auth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			f.mu.Lock()
			revoked := f.revoked
			f.mu.Unlock()
			tok := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
			if _, ok := f.tokens[tok]; !ok || revoked {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			}
			return next(c)
		}
	}
	e.GET("/users/:id", func(c echo.Context) error {
		for _, u := range f.users {
			if strconv.FormatInt(u.ID, 10) == c.Param("id") {
				return c.JSON(http.StatusOK, u)
			}
		}
		return c.NoContent(http.StatusNotFound)
	}, auth)
	e.GET("/users", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []domain.User{f.users["admin"], f.users["anna"]})
	}, auth)
	e.GET("/tasks", func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		return c.JSON(http.StatusOK, f.tasks)
	}, auth)
	e.PATCH("/tasks/:id/done", func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failDone {
			return c.NoContent(http.StatusInternalServerError)
		}
		var req struct{ Done bool }
		if err := c.Bind(&req); err != nil {
			return err
		}
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		f.patched[id] = req.Done
		return c.NoContent(http.StatusNoContent)
	}, auth)
	e.PUT("/tasks/:id", func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		var body map[string]any
		if err := c.Bind(&body); err != nil {
			return err
		}
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		f.replaced[id] = body
		return c.NoContent(http.StatusNoContent)
	}, auth)
	e.GET("/projects", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []domain.Project{{ID: 1, Name: "Intranet"}})
	}, auth)
	e.GET("/priorities", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []domain.Priority{{ID: 1, Name: "Hoch"}})
	}, auth)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

type harness struct {
	service     *fakeService
	sessionFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger.Reset()
	t.Cleanup(logger.Reset)

	svc, url := newFakeService(t)
	dir := t.TempDir()
	h := &harness{service: svc, sessionFile: filepath.Join(dir, "session.json")}

	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("TASKDESK_API_URL", url)
	t.Setenv("TASKDESK_SESSION_FILE", h.sessionFile)
	t.Setenv("TASKDESK_LOG_LEVEL", "off")
	return h
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, streams{in: strings.NewReader(stdin), out: &out, err: &errOut})
	return out.String(), err
}

func TestRun_HelpAndVersion(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")

	out, err = h.run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taskdesk")
}

func TestRun_UnknownCommand(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "frobnicate")
	assert.ErrorContains(t, err, "unknown command")
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "login", "-u", "anna", "-p", "geheim")
	require.NoError(t, err)
	assert.Contains(t, out, "Angemeldet als anna")
	_, err = os.Stat(h.sessionFile)
	require.NoError(t, err)

	out, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "anna (Mitarbeiter, id 2)")
	assert.Contains(t, out, "Meine Aufgaben")
	assert.NotContains(t, out, "Benutzerverwaltung")

	out, err = h.run(t, "", "login", "-u", "anna", "-p", "geheim")
	require.NoError(t, err)
	assert.Contains(t, out, "Bereits angemeldet")

	out, err = h.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Abgemeldet")
	_, err = os.Stat(h.sessionFile)
	assert.True(t, os.IsNotExist(err))

	// a second logout is harmless
	_, err = h.run(t, "", "logout")
	assert.NoError(t, err)
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "geheim\n", "login", "-u", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Angemeldet als admin")
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "login", "-u", "anna", "-p", "falsch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), service.MsgBadCredentials)
	_, statErr := os.Stat(h.sessionFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLogin_EmptyFormNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "\n", "login", "-u", "")
	assert.ErrorContains(t, err, "Benutzername ist erforderlich")
}

func TestGuard_LoggedOutIsRedirected(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "tasks", "list")
	assert.ErrorIs(t, err, ErrRedirected)
	assert.ErrorContains(t, err, service.LoginPath)
}

func TestGuard_StaffCannotOpenLeadScreens(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "anna", "-p", "geheim")
	require.NoError(t, err)

	for _, args := range [][]string{
		{"projects", "list"},
		{"priorities", "list"},
		{"tasks", "team"},
		{"users", "list"},
	} {
		_, err := h.run(t, "", args...)
		assert.ErrorIs(t, err, ErrRedirected, "%v", args)
	}
}

func TestTasks_ListMine(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "anna", "-p", "geheim")
	require.NoError(t, err)

	out, err := h.run(t, "", "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Bericht schreiben")
	assert.Contains(t, out, "Intranet")
	assert.NotContains(t, out, "Server warten")
}

func TestTasks_TeamAsAdmin(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "admin", "-p", "geheim")
	require.NoError(t, err)

	out, err := h.run(t, "", "tasks", "team")
	require.NoError(t, err)
	assert.Contains(t, out, "Bericht schreiben")
	assert.Contains(t, out, "Server warten")
	assert.Contains(t, out, "anna")
}

func TestTasks_EditKeepsUnchangedFields(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "admin", "-p", "geheim")
	require.NoError(t, err)

	out, err := h.run(t, "", "tasks", "edit", "5", "-title", "Bericht abgeben")
	require.NoError(t, err)
	assert.Contains(t, out, "Aufgabe 5 gespeichert")
	assert.Contains(t, out, "Aufgabe aktualisiert")

	h.service.mu.Lock()
	body := h.service.replaced[5]
	h.service.mu.Unlock()
	require.NotNil(t, body)
	assert.Equal(t, "Bericht abgeben", body["title"])
	assert.EqualValues(t, 2, body["user_id"])
	assert.EqualValues(t, 1, body["project_id"])
}

func TestTasks_EditForbiddenForStaff(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "anna", "-p", "geheim")
	require.NoError(t, err)

	_, err = h.run(t, "", "tasks", "edit", "5", "-title", "Bericht abgeben")
	assert.ErrorIs(t, err, ErrRedirected)
	assert.Empty(t, h.service.replaced)
}

func TestTasks_Done(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "anna", "-p", "geheim")
	require.NoError(t, err)

	_, err = h.run(t, "", "tasks", "done", "5")
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{5: true}, h.service.patched)
}

func TestTasks_DoneFailureShowsToast(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "anna", "-p", "geheim")
	require.NoError(t, err)
	h.service.mu.Lock()
	h.service.failDone = true
	h.service.mu.Unlock()

	out, err := h.run(t, "", "tasks", "done", "5")
	require.Error(t, err)
	assert.Contains(t, out, "✗ Fehler beim Aktualisieren der Aufgabe")
}

func TestTasks_NewValidationStopsBeforeNetwork(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "admin", "-p", "geheim")
	require.NoError(t, err)

	_, err = h.run(t, "", "tasks", "new", "-title", "ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Titel muss mind. 3 Zeichen lang sein")
}

func TestBootstrap_RevokedSessionIsCleared(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "anna", "-p", "geheim")
	require.NoError(t, err)

	h.service.mu.Lock()
	h.service.revoked = true
	h.service.mu.Unlock()

	_, err = h.run(t, "", "whoami")
	assert.ErrorIs(t, err, ErrRedirected)
	_, statErr := os.Stat(h.sessionFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProjects_ListAsAdmin(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "login", "-u", "admin", "-p", "geheim")
	require.NoError(t, err)

	out, err := h.run(t, "", "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "Intranet")
}
