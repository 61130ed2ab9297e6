package accesscontrol

import (
	"github.com/lachlan2k/labour-console/internal/session"
)

var (
	adminOnly  = []session.Role{session.RoleAdmin}
	vendorOnly = []session.Role{session.RoleVendor}
	anyRole    = []session.Role{session.RoleAdmin, session.RoleVendor}
)

type leaf struct {
	name  string
	roles []session.Role
}

// Dashboard pages. Each one is also reachable at its old top-level path.
var leaves = []leaf{
	{"labours", adminOnly},
	{"skills", adminOnly},
	{"contracter", adminOnly},
	{"contractor-acceptances", adminOnly},
	{"contractor-job-acceptances", adminOnly},
	{"labour-availability", anyRole},
	{"job-post", vendorOnly},
	{"application", vendorOnly},
	{"contractor-profile", vendorOnly},
	{"labour", vendorOnly},
}

func DefaultRoutes() []Route {
	routes := []Route{
		{Path: PathLanding, Access: AccessGuestOnly, Screen: "landing"},
		{Path: PathLogin, Access: AccessGuestOnly, Screen: "contractor-login"},
		{Path: PathAdmin, Access: AccessGuestOnly, Screen: "admin-login"},
		{Path: "/privacy-policy", Access: AccessPublic, Screen: "privacy-policy"},
		{Path: "/terms-conditions", Access: AccessPublic, Screen: "terms-conditions"},
		{Path: "/delete-policy", Access: AccessPublic, Screen: "delete-policy"},
		{
			Path:   PathDashboard,
			Access: AccessProtected,
			RoleScreens: map[session.Role]string{
				session.RoleAdmin:  "admin-dashboard",
				session.RoleVendor: "vendor-dashboard",
			},
		},
	}

	for _, l := range leaves {
		routes = append(routes, Route{
			Path:   PathDashboard + "/" + l.name,
			Access: AccessProtected,
			Roles:  l.roles,
			Screen: l.name,
		})
	}
	for _, l := range leaves {
		routes = append(routes, Route{
			Path:       "/" + l.name,
			Access:     AccessProtected,
			RedirectTo: PathDashboard + "/" + l.name,
		})
	}

	return append(routes, Route{
		Path:   PathDashboard + "/*",
		Access: AccessProtected,
		Screen: ScreenNotFound,
	})
}

// DefaultScreens is the role each dashboard page requires of its own accord.
func DefaultScreens() map[string][]session.Role {
	screens := map[string][]session.Role{
		"admin-dashboard":  adminOnly,
		"vendor-dashboard": vendorOnly,
	}
	for _, l := range leaves {
		screens[l.name] = l.roles
	}
	return screens
}

type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Navigation lists the sidebar entries for role.
func Navigation(role session.Role) []NavItem {
	switch role {
	case session.RoleAdmin:
		return []NavItem{
			{Label: "Labour Contractors", Path: PathDashboard + "/labours"},
			{Label: "Skills", Path: PathDashboard + "/skills"},
		}
	case session.RoleVendor:
		return []NavItem{
			{Label: "Job Post", Path: PathDashboard + "/job-post"},
			{Label: "Job Application", Path: PathDashboard + "/application"},
			{Label: "Labour", Path: PathDashboard + "/labour"},
		}
	}
	return nil
}
