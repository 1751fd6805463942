package service

import (
	"errors"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/forms"
)

const (
	MsgBadCredentials = "Benutzername oder Passwort falsch"
	MsgUnreachable    = "Verbindung zum Server fehlgeschlagen. Bitte versuchen Sie es später erneut."
	MsgSessionEnded   = "Sitzung abgelaufen. Bitte melden Sie sich erneut an."
	MsgForbidden      = "Keine Berechtigung"
	MsgNotFound       = "Nicht gefunden"
	MsgSelfDelete     = "Das eigene Konto kann nicht gelöscht werden"
	MsgRequestFailed  = "Anfrage fehlgeschlagen"
)

// LoginErrorMessage is the message the login screen shows for a failed
// login: wrong credentials, or anything else as a connectivity problem.
func LoginErrorMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return MsgBadCredentials
	}
	return MsgUnreachable
}

// ErrorMessage maps an error from any operation to a user-facing message.
// Validation errors are returned as-is so views can show them per field.
func ErrorMessage(err error) string {
	var fe forms.Errors
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fe):
		return fe.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return MsgBadCredentials
	case errors.Is(err, domain.ErrUnauthorized):
		return MsgSessionEnded
	case errors.Is(err, domain.ErrForbidden):
		return MsgForbidden
	case errors.Is(err, domain.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, domain.ErrSelfDelete):
		return MsgSelfDelete
	case errors.Is(err, domain.ErrServiceUnreachable):
		return MsgUnreachable
	default:
		return MsgRequestFailed
	}
}
