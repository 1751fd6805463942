package service

import (
	"slices"

	"github.com/lf9/taskdesk/internal/core/domain"
)

// Decision is the outcome of a route guard check.
type Decision int

const (
	// DecisionLoading means the session is still bootstrapping; show a
	// neutral loading state and decide nothing yet.
	DecisionLoading Decision = iota
	DecisionRedirectLogin
	DecisionRedirectHome
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectHome:
		return "redirect_home"
	case DecisionRender:
		return "render"
	default:
		return "unknown"
	}
}

// Decide gates a screen on session state and an optional role allow-list.
// A nil or empty allow-list admits any authenticated user.
func Decide(state SessionState, allowed []domain.Role) Decision {
	switch {
	case state.Initializing:
		return DecisionLoading
	case !state.IsAuthenticated():
		return DecisionRedirectLogin
	case len(allowed) > 0 && !slices.Contains(allowed, state.Role()):
		return DecisionRedirectHome
	default:
		return DecisionRender
	}
}
