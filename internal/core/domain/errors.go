package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrServiceUnreachable = errors.New("service unreachable")
	ErrInvalidInput       = errors.New("invalid input")

	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrNoSession      = errors.New("no persisted session")

	// ErrSelfDelete is returned when an administrator tries to delete the
	// account they are logged in with.
	ErrSelfDelete = errors.New("cannot delete own account")
)
