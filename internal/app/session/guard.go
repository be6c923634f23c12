package session

import (
	"context"
	"strings"
	"time"
)

// Well-known frontend paths.
const (
	LoginPath        = "/login"
	RegisterPath     = "/register"
	UserLandingPath  = "/dashboard"
	AdminLandingPath = "/admin/dashboard"
)

// Route is the navigation intent evaluated by the guard: a requested path with
// its access metadata flags.
type Route struct {
	Path          string
	RequiresAuth  bool
	RequiresAdmin bool
	GuestOnly     bool
}

// Decision is the outcome of a guard evaluation. An empty target means the
// navigation proceeds, otherwise the client is redirected to the target path.
type Decision struct {
	Target string
}

func Proceed() Decision {
	return Decision{}
}

func RedirectTo(path string) Decision {
	return Decision{Target: path}
}

// ShouldRedirect reports whether the decision is a redirect.
func (d Decision) ShouldRedirect() bool {
	return d.Target != ""
}

// Evaluate decides for a single navigation attempt whether it may proceed or
// where it has to be redirected. The decision is made synchronously from the
// locally cached session state, it never waits on a network call.
//
// As a side effect, a structurally invalid or expired token is eagerly cleared
// from the store together with the cached profile.
func (m *Manager) Evaluate(ctx context.Context, route Route) Decision {
	tokenValid := m.TokenValid(ctx)
	profile := m.CachedProfile(ctx)
	isAdmin := tokenValid && profile != nil && profile.IsAdmin

	// Guest pages: anonymous visitors may proceed, authenticated users are sent
	// to their role landing page.
	if route.GuestOnly {
		if !tokenValid {
			return Proceed()
		}
		return RedirectTo(roleLanding(isAdmin))
	}

	if route.RequiresAuth && !tokenValid {
		return RedirectTo(LoginPath)
	}

	if route.RequiresAdmin && (!tokenValid || !isAdmin) {
		return RedirectTo(UserLandingPath)
	}

	// Role/namespace containment: keep each role inside its own part of the
	// application.
	if tokenValid {
		switch {
		case route.Path == "/":
			return RedirectTo(roleLanding(isAdmin))
		case isAdmin && inUserNamespace(route.Path):
			return RedirectTo(AdminLandingPath)
		case !isAdmin && inAdminNamespace(route.Path):
			return RedirectTo(UserLandingPath)
		}
	}

	return Proceed()
}

// HandleUnauthorized implements the central reaction to an observed 401
// response: the session is destroyed and the client is sent to the login page,
// unless it is already there (prevents redirect loops).
func (m *Manager) HandleUnauthorized(ctx context.Context, currentPath string) Decision {
	m.Logout(ctx)

	if currentPath == LoginPath {
		return Proceed()
	}
	return RedirectTo(LoginPath)
}

// TokenValid checks the cached credential. An invalid or expired token is
// eagerly cleared from the store, together with the cached profile.
func (m *Manager) TokenValid(ctx context.Context) bool {
	token, ok := m.store.Get(ctx, TokenKey)
	if !ok || token == "" {
		return false
	}

	if !TokenValid(token, time.Now()) {
		m.clear(ctx)
		return false
	}

	return true
}

func roleLanding(isAdmin bool) string {
	if isAdmin {
		return AdminLandingPath
	}
	return UserLandingPath
}

func inUserNamespace(path string) bool {
	return path == UserLandingPath || strings.HasPrefix(path, "/user/")
}

func inAdminNamespace(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/")
}
