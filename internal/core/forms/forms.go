// Package forms holds the input schemas of the client's forms. A form that
// fails validation never reaches the network.
package forms

import "github.com/lf9/taskdesk/internal/core/domain"

// LoginForm is the login screen.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (LoginForm) messages() map[string]string {
	return map[string]string{
		"username.required": "Benutzername ist erforderlich",
		"password.required": "Passwort ist erforderlich",
	}
}

// NewTaskForm creates a task for a team member.
type NewTaskForm struct {
	Title       string `form:"title" validate:"min=3,max=100"`
	Description string `form:"description"`
	DueDate     string `form:"dueDate" validate:"omitempty,datetime=2006-01-02,notpast"`
	UserID      int64  `form:"user_id" validate:"required"`
	PriorityID  int64  `form:"priority_id" validate:"required"`
	ProjectID   int64  `form:"project_id" validate:"required"`
}

func (NewTaskForm) messages() map[string]string {
	return map[string]string{
		"title.min":            "Titel muss mind. 3 Zeichen lang sein",
		"title.max":            "Titel darf höchstens 100 Zeichen lang sein",
		"dueDate.datetime":     "Ungültiges Datum",
		"dueDate.notpast":      "Datum darf nicht in der Vergangenheit liegen",
		"user_id.required":     "Mitarbeiter ist erforderlich",
		"priority_id.required": "Priorität ist erforderlich",
		"project_id.required":  "Projekt ist erforderlich",
	}
}

// EditTaskForm replaces the writable fields of an existing task. A due
// date already in the past is kept as is.
type EditTaskForm struct {
	Title       string `form:"title" validate:"min=3,max=100"`
	Description string `form:"description"`
	DueDate     string `form:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Done        bool   `form:"done"`
	UserID      int64  `form:"user_id" validate:"required"`
	PriorityID  int64  `form:"priority_id" validate:"required"`
	ProjectID   int64  `form:"project_id" validate:"required"`
}

// EditTaskFormFrom prefills the form with t's current values.
func EditTaskFormFrom(t domain.Task) EditTaskForm {
	return EditTaskForm{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Done:        t.Done,
		UserID:      deref(t.UserID),
		PriorityID:  deref(t.PriorityID),
		ProjectID:   deref(t.ProjectID),
	}
}

func deref(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func (EditTaskForm) messages() map[string]string {
	return map[string]string{
		"title.min":            "Titel muss mind. 3 Zeichen lang sein",
		"title.max":            "Titel darf höchstens 100 Zeichen lang sein",
		"dueDate.datetime":     "Ungültiges Datum",
		"user_id.required":     "Mitarbeiter ist erforderlich",
		"priority_id.required": "Priorität ist erforderlich",
		"project_id.required":  "Projekt ist erforderlich",
	}
}

// NewUserForm registers an account.
type NewUserForm struct {
	Username        string      `form:"username" validate:"min=3,alphanum"`
	Password        string      `form:"password" validate:"min=8,hasdigit,hasspecial"`
	PasswordConfirm string      `form:"passwordConfirm" validate:"eqfield=Password"`
	Role            domain.Role `form:"role" validate:"role"`
}

func (NewUserForm) messages() map[string]string {
	return map[string]string{
		"username.min":            "Mind. 3 Zeichen",
		"username.alphanum":       "Nur alphanumerische Zeichen",
		"password.min":            "Mind. 8 Zeichen",
		"password.hasdigit":       "Mind. eine Zahl",
		"password.hasspecial":     "Mind. ein Sonderzeichen",
		"passwordConfirm.eqfield": "Passwörter stimmen nicht überein",
		"role.role":               "Ungültige Rolle",
	}
}

// EditUserForm changes a user's role and optionally their password.
type EditUserForm struct {
	Role     domain.Role `form:"role" validate:"role"`
	Password string      `form:"password" validate:"omitempty,min=8,hasdigit,hasspecial"`
}

func (EditUserForm) messages() map[string]string {
	return map[string]string{
		"role.role":           "Ungültige Rolle",
		"password.min":        "Mind. 8 Zeichen",
		"password.hasdigit":   "Mind. eine Zahl",
		"password.hasspecial": "Mind. ein Sonderzeichen",
	}
}

// NameForm creates or renames a project or priority.
type NameForm struct {
	Name string `form:"name" validate:"required,max=100"`
}

func (NameForm) messages() map[string]string {
	return map[string]string{
		"name.required": "Name ist erforderlich",
		"name.max":      "Name darf höchstens 100 Zeichen lang sein",
	}
}
