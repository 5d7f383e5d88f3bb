// Package guard maps the current role to the views it may open.
//
// Decisions are pure functions of the role passed in; nothing is cached, so a decision can never
// outlive the session it was computed for.
package guard

import (
	"strings"

	"github.com/desertthunder/catx/internal/models"
)

// View is a navigable location.
type View string

const (
	Home              View = "/"
	Search            View = "/search"
	Tracks            View = "/tracks"
	Artists           View = "/artists"
	Albums            View = "/albums"
	Login             View = "/login"
	Register          View = "/register"
	Dashboard         View = "/dashboard"
	ListenerDashboard View = "/dashboard/listener"
	ArtistDashboard   View = "/dashboard/artist"
	AdminDashboard    View = "/dashboard/admin"
)

var public = map[View]bool{Home: true, Search: true, Tracks: true, Artists: true, Albums: true}

var dashboards = map[models.Role]View{
	models.RoleListener: ListenerDashboard,
	models.RoleArtist:   ArtistDashboard,
	models.RoleAdmin:    AdminDashboard,
}

// Decision is the outcome of a navigation attempt.
type Decision struct {
	View       View
	Redirected bool
}

// ParseView normalizes a path such as "dashboard/artist/" to a [View].
func ParseView(path string) View {
	path = strings.TrimSpace(path)
	if path == "" {
		return Home
	}
	path = "/" + strings.Trim(path, "/")
	return View(strings.ToLower(path))
}

// Known reports whether v is a view the client can render.
func Known(v View) bool {
	switch v {
	case Login, Register, Dashboard, ListenerDashboard, ArtistDashboard, AdminDashboard:
		return true
	}
	return public[v]
}

// DefaultView is where role lands when a navigation is denied: its dashboard, or login when anonymous.
func DefaultView(role models.Role) View {
	if v, ok := dashboards[role]; ok {
		return v
	}
	return Login
}

// Allowed reports whether role may open v without a redirect.
func Allowed(role models.Role, v View) bool {
	if public[v] {
		return true
	}

	switch v {
	case Login, Register:
		return role == models.RoleNone
	case ListenerDashboard, ArtistDashboard, AdminDashboard:
		return dashboards[role] == v
	}
	return false
}

// Resolve decides where a navigation to requested ends up for role.
//
// Unknown views go home. The dashboard alias resolves to the role's dashboard. Any other view the role
// may not open redirects to [DefaultView], so authenticated users asking for login or register land on
// their dashboard.
func Resolve(role models.Role, requested View) Decision {
	switch {
	case !Known(requested):
		return Decision{View: Home, Redirected: true}
	case requested == Dashboard:
		return Decision{View: DefaultView(role), Redirected: true}
	case Allowed(role, requested):
		return Decision{View: requested}
	default:
		return Decision{View: DefaultView(role), Redirected: true}
	}
}
