package forms

import (
	"errors"
	"testing"
	"time"

	"github.com/lf9/taskdesk/internal/core/domain"
)

func fixedValidator() *Validator {
	return NewValidatorAt(func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local) })
}

func TestLoginForm(t *testing.T) {
	v := fixedValidator()

	err := v.Validate(LoginForm{})
	var fe Errors
	if !errors.As(err, &fe) {
		t.Fatalf("expected Errors, got %v", err)
	}
	if fe["username"] != "Benutzername ist erforderlich" || fe["password"] != "Passwort ist erforderlich" {
		t.Fatalf("unexpected messages %v", fe)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected Errors to match ErrInvalidInput")
	}
	if err := v.Validate(LoginForm{Username: "a", Password: "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewTaskForm_DueDate(t *testing.T) {
	v := fixedValidator()
	base := NewTaskForm{Title: "Bericht", UserID: 1, PriorityID: 1, ProjectID: 1}

	cases := map[string]string{
		"":           "",
		"2026-03-01": "",
		"2027-01-01": "",
		"2026-02-28": "Datum darf nicht in der Vergangenheit liegen",
		"01.03.2026": "Ungültiges Datum",
	}
	for due, want := range cases {
		form := base
		form.DueDate = due
		err := v.Validate(form)
		if want == "" {
			if err != nil {
				t.Errorf("%q: unexpected error %v", due, err)
			}
			continue
		}
		var fe Errors
		if !errors.As(err, &fe) || fe["dueDate"] != want {
			t.Errorf("%q: expected %q, got %v", due, want, err)
		}
	}
}

func TestNewTaskForm_Title(t *testing.T) {
	v := fixedValidator()
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	for title, want := range map[string]string{
		"ab":         "Titel muss mind. 3 Zeichen lang sein",
		string(long): "Titel darf höchstens 100 Zeichen lang sein",
	} {
		err := v.Validate(NewTaskForm{Title: title, UserID: 1, PriorityID: 1, ProjectID: 1})
		var fe Errors
		if !errors.As(err, &fe) || fe["title"] != want {
			t.Errorf("expected %q, got %v", want, err)
		}
	}
}

func TestNewUserForm(t *testing.T) {
	v := fixedValidator()
	ok := NewUserForm{Username: "bob42", Password: "geheim12!", PasswordConfirm: "geheim12!", Role: domain.RoleStaff}
	if err := v.Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		edit  func(*NewUserForm)
		field string
		want  string
	}{
		{"short username", func(f *NewUserForm) { f.Username = "bo" }, "username", "Mind. 3 Zeichen"},
		{"username symbols", func(f *NewUserForm) { f.Username = "bob!" }, "username", "Nur alphanumerische Zeichen"},
		{"short password", func(f *NewUserForm) { f.Password, f.PasswordConfirm = "g1!", "g1!" }, "password", "Mind. 8 Zeichen"},
		{"no digit", func(f *NewUserForm) { f.Password, f.PasswordConfirm = "geheimes!", "geheimes!" }, "password", "Mind. eine Zahl"},
		{"no special", func(f *NewUserForm) { f.Password, f.PasswordConfirm = "geheim123", "geheim123" }, "password", "Mind. ein Sonderzeichen"},
		{"mismatch", func(f *NewUserForm) { f.PasswordConfirm = "anders12!" }, "passwordConfirm", "Passwörter stimmen nicht überein"},
		{"unknown role", func(f *NewUserForm) { f.Role = "Chef" }, "role", "Ungültige Rolle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := ok
			tt.edit(&form)
			var fe Errors
			if err := v.Validate(form); !errors.As(err, &fe) || fe[tt.field] != tt.want {
				t.Fatalf("expected %s=%q, got %v", tt.field, tt.want, err)
			}
		})
	}
}

func TestEditUserForm(t *testing.T) {
	v := fixedValidator()
	if err := v.Validate(EditUserForm{Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("expected empty password to be allowed, got %v", err)
	}
	if err := v.Validate(EditUserForm{Role: domain.RoleAdmin, Password: "neu12345?"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var fe Errors
	if err := v.Validate(EditUserForm{Role: domain.RoleAdmin, Password: "kurz"}); !errors.As(err, &fe) || fe["password"] != "Mind. 8 Zeichen" {
		t.Fatalf("unexpected result %v", err)
	}
}

func TestErrors_Error(t *testing.T) {
	e := Errors{"title": "b", "name": "a"}
	if got := e.Error(); got != "name: a; title: b" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestEditTaskForm_KeepsPastDueDate(t *testing.T) {
	v := fixedValidator()
	form := EditTaskFormFrom(domain.Task{
		Title: "Bericht", DueDate: "2026-01-15",
		UserID: domain.Ref(2), PriorityID: domain.Ref(1), ProjectID: domain.Ref(3),
	})
	if form.UserID != 2 || form.PriorityID != 1 || form.ProjectID != 3 {
		t.Fatalf("expected ids prefilled, got %+v", form)
	}
	if err := v.Validate(form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	form.DueDate = "15.01.2026"
	var fe Errors
	if err := v.Validate(form); !errors.As(err, &fe) || fe["dueDate"] != "Ungültiges Datum" {
		t.Fatalf("expected date format message, got %v", err)
	}
}
