// Package accesscontrol decides, for a requested path and the current session, whether a
// screen renders or the caller is sent elsewhere.
package accesscontrol

import (
	"github.com/lachlan2k/labour-console/internal/session"
	"github.com/lachlan2k/labour-console/internal/utils"
)

const (
	PathLanding   = "/"
	PathLogin     = "/login"
	PathAdmin     = "/admin"
	PathDashboard = "/dashboard"
)

const ScreenNotFound = "not-found"

type Access int

const (
	// AccessPublic renders for everyone.
	AccessPublic Access = iota
	// AccessGuestOnly renders for guests; an authenticated session is sent to the dashboard.
	AccessGuestOnly
	// AccessProtected requires an authenticated session, and one of Roles when set.
	AccessProtected
)

type Route struct {
	// Path is matched literally, or as a prefix when it ends in *
	Path   string
	Access Access
	Roles  []session.Role
	Screen string

	// RoleScreens picks the screen by role, for index routes shared between roles
	RoleScreens map[session.Role]string
	// RedirectTo sends the caller elsewhere once the guard has passed
	RedirectTo string
}

type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeRender
	OutcomeRedirect
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeNotFound:
		return "not_found"
	}
	return "unknown"
}

type Decision struct {
	Outcome Outcome
	// Screen is set for OutcomeRender
	Screen string
	// Location is set for OutcomeRedirect
	Location string
	// Home is where the not-found screen's "go home" action leads
	Home string
}

func render(screen string) Decision { return Decision{Outcome: OutcomeRender, Screen: screen} }

func redirect(location string) Decision { return Decision{Outcome: OutcomeRedirect, Location: location} }

func notFound(st session.State) Decision {
	home := PathLanding
	if st.Authenticated() {
		home = PathDashboard
	}
	return Decision{Outcome: OutcomeNotFound, Home: home}
}

type Authorizer struct {
	routes []Route
	// screens holds the role each screen checks for itself, independently of the route guard
	screens map[string][]session.Role
}

// New builds an authorizer over routes, which are tried in order.
func New(routes []Route, screens map[string][]session.Role) *Authorizer {
	return &Authorizer{routes: routes, screens: screens}
}

// Default is the authorizer for the console's own route table.
func Default() *Authorizer {
	return New(DefaultRoutes(), DefaultScreens())
}

func (a *Authorizer) match(p string) *Route {
	for i := range a.routes {
		if utils.MatchesWithWildcard(p, a.routes[i].Path) {
			return &a.routes[i]
		}
	}
	return nil
}

func hasRole(roles []session.Role, role session.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Decide routes path for the given session snapshot. No decision is made until the
// session has been resolved.
func (a *Authorizer) Decide(path string, st session.State) Decision {
	if st.Auth == session.AuthUnknown {
		return Decision{Outcome: OutcomeLoading}
	}

	route := a.match(utils.CleanPath(path))
	if route == nil {
		return notFound(st)
	}

	switch route.Access {
	case AccessPublic:
		return render(route.Screen)
	case AccessGuestOnly:
		if st.Authenticated() {
			return redirect(PathDashboard)
		}
		return render(route.Screen)
	}

	// Outer guard
	if !st.Authenticated() {
		return redirect(PathLogin)
	}
	if len(route.Roles) > 0 && !hasRole(route.Roles, st.Role) {
		return redirect(PathDashboard)
	}

	if route.RedirectTo != "" {
		return redirect(route.RedirectTo)
	}

	screen := route.Screen
	if route.RoleScreens != nil {
		var ok bool
		if screen, ok = route.RoleScreens[st.Role]; !ok {
			return redirect(PathLogin)
		}
	}
	if screen == ScreenNotFound {
		return notFound(st)
	}

	// The screen checks the role again on its own
	if roles, ok := a.screens[screen]; ok && !hasRole(roles, st.Role) {
		return redirect(PathDashboard)
	}

	return render(screen)
}
