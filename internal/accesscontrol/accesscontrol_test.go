package accesscontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lachlan2k/labour-console/internal/session"
)

var (
	unknown = session.State{}
	guest   = session.State{Auth: session.AuthUnauthenticated}
	admin   = session.State{Auth: session.AuthAuthenticated, Role: session.RoleAdmin, Token: "t"}
	vendor  = session.State{Auth: session.AuthAuthenticated, Role: session.RoleVendor, Token: "t"}
)

func TestDecideWhileLoading(t *testing.T) {
	a := Default()
	for _, p := range []string{"/", "/login", "/dashboard", "/dashboard/skills", "/nope"} {
		assert.Equal(t, Decision{Outcome: OutcomeLoading}, a.Decide(p, unknown), p)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		state session.State
		want  Decision
	}{
		{"guest landing", "/", guest, render("landing")},
		{"guest contractor login", "/login", guest, render("contractor-login")},
		{"guest admin login", "/admin", guest, render("admin-login")},
		{"guest legal page", "/privacy-policy", guest, render("privacy-policy")},
		{"admin legal page", "/terms-conditions", admin, render("terms-conditions")},
		{"vendor delete policy", "/delete-policy/", vendor, render("delete-policy")},

		{"authenticated landing", "/", admin, redirect(PathDashboard)},
		{"authenticated login", "/login", vendor, redirect(PathDashboard)},
		{"authenticated admin login", "/admin", admin, redirect(PathDashboard)},

		{"guest dashboard", "/dashboard", guest, redirect(PathLogin)},
		{"guest leaf", "/dashboard/skills", guest, redirect(PathLogin)},
		{"guest legacy leaf", "/skills", guest, redirect(PathLogin)},
		{"guest unmatched dashboard", "/dashboard/what", guest, redirect(PathLogin)},

		{"admin dashboard", "/dashboard", admin, render("admin-dashboard")},
		{"vendor dashboard", "/dashboard", vendor, render("vendor-dashboard")},
		{"admin leaf", "/dashboard/contractor-job-acceptances", admin, render("contractor-job-acceptances")},
		{"vendor leaf", "/dashboard/job-post", vendor, render("job-post")},
		{"shared leaf admin", "/dashboard/labour-availability", admin, render("labour-availability")},
		{"shared leaf vendor", "/dashboard/labour-availability", vendor, render("labour-availability")},
		{"labour is not labours", "/dashboard/labour", vendor, render("labour")},

		{"legacy leaf", "/job-post", vendor, redirect("/dashboard/job-post")},
		{"legacy leaf of other role", "/skills", vendor, redirect("/dashboard/skills")},

		{"unmatched dashboard path", "/dashboard/what", admin, Decision{Outcome: OutcomeNotFound, Home: PathDashboard}},
		{"unmatched path authenticated", "/nope", vendor, Decision{Outcome: OutcomeNotFound, Home: PathDashboard}},
		{"unmatched path guest", "/nope", guest, Decision{Outcome: OutcomeNotFound, Home: PathLanding}},
	}

	a := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Decide(tt.path, tt.state))
		})
	}
}

func TestRoleIsolation(t *testing.T) {
	a := Default()

	for _, l := range leaves {
		for _, st := range []session.State{admin, vendor} {
			got := a.Decide(PathDashboard+"/"+l.name, st)
			if hasRole(l.roles, st.Role) {
				assert.Equal(t, render(l.name), got, "%s as %s", l.name, st.Role)
			} else {
				assert.Equal(t, redirect(PathDashboard), got, "%s as %s", l.name, st.Role)
			}
		}
	}
}

func TestEitherLayerDenies(t *testing.T) {
	t.Run("guard without leaf check", func(t *testing.T) {
		a := New([]Route{
			{Path: "/dashboard/skills", Access: AccessProtected, Roles: adminOnly, Screen: "skills"},
		}, nil)
		assert.Equal(t, redirect(PathDashboard), a.Decide("/dashboard/skills", vendor))
		assert.Equal(t, render("skills"), a.Decide("/dashboard/skills", admin))
	})

	t.Run("leaf check without guard", func(t *testing.T) {
		a := New([]Route{
			{Path: "/dashboard/skills", Access: AccessProtected, Screen: "skills"},
		}, map[string][]session.Role{"skills": adminOnly})
		assert.Equal(t, redirect(PathDashboard), a.Decide("/dashboard/skills", vendor))
		assert.Equal(t, render("skills"), a.Decide("/dashboard/skills", admin))
	})
}

func TestDashboardWithoutRoleGoesToLogin(t *testing.T) {
	st := session.State{Auth: session.AuthAuthenticated, Token: "t"}
	assert.Equal(t, redirect(PathLogin), Default().Decide("/dashboard", st))
}

func TestNavigation(t *testing.T) {
	assert.Equal(t, []NavItem{
		{Label: "Labour Contractors", Path: "/dashboard/labours"},
		{Label: "Skills", Path: "/dashboard/skills"},
	}, Navigation(session.RoleAdmin))

	vendorNav := Navigation(session.RoleVendor)
	assert.Len(t, vendorNav, 3)
	a := Default()
	for _, item := range vendorNav {
		assert.Equal(t, OutcomeRender, a.Decide(item.Path, vendor).Outcome, item.Path)
	}

	assert.Empty(t, Navigation(session.RoleNone))
}
