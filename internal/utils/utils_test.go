package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesWithWildcard(t *testing.T) {
	tests := []struct {
		value   string
		matcher string
		want    bool
	}{
		{"/dashboard/skills", "/dashboard/*", true},
		{"/dashboard/", "/dashboard/*", true},
		{"/dashboard", "/dashboard/*", false},
		{"/login", "/login", true},
		{"/login/", "/login", false},
		{"/anything", "*", true},
		{"", "", true},
		{"/x", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesWithWildcard(tt.value, tt.matcher), "%q against %q", tt.value, tt.matcher)
	}
}

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		"":                      "/",
		"/":                     "/",
		"dashboard":             "/dashboard",
		"/dashboard/":           "/dashboard",
		"/dashboard//skills":    "/dashboard/skills",
		"/dashboard/../admin":   "/admin",
		"/dashboard/job-post?x": "/dashboard/job-post",
		"/login#top":            "/login",
	}

	for in, want := range tests {
		assert.Equal(t, want, CleanPath(in), "CleanPath(%q)", in)
	}
}
