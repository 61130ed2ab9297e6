// Package session owns the console's single authenticated session: the bearer
// credential, the caller's role, and the watchdog that forces a logout once the
// credential's own expiry claim has passed.
package session

import (
	"context"
	"errors"
)

type Role string

const (
	RoleNone   Role = ""
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
)

// ParseRole maps a persisted role string onto the closed set of roles. Anything else is
// reported as not ok and must not be trusted.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleVendor:
		return RoleVendor, true
	}
	return RoleNone, false
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleVendor
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

type AuthState int

const (
	// AuthUnknown is the initial state, before the stored credential has been inspected
	AuthUnknown AuthState = iota
	AuthAuthenticated
	AuthUnauthenticated
)

func (a AuthState) String() string {
	switch a {
	case AuthAuthenticated:
		return "authenticated"
	case AuthUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

type LogoutReason string

const (
	LogoutReasonNone    LogoutReason = ""
	LogoutReasonExpired LogoutReason = "expired"
)

// Message is the one-shot notice shown to the user after a forced logout.
func (r LogoutReason) Message() string {
	if r == LogoutReasonExpired {
		return "Session expired. Please log in again."
	}
	return ""
}

// State is a point-in-time copy of the session.
type State struct {
	Auth         AuthState
	Role         Role
	Token        string
	AuxiliaryID  string
	LogoutReason LogoutReason
}

func (s State) Authenticated() bool {
	return s.Auth == AuthAuthenticated
}

// Notifier tells the backend a credential is no longer in use.
type Notifier interface {
	Logout(ctx context.Context, role Role, token string) error
}

// Observer receives session transitions, typically for metrics.
type Observer interface {
	LoggedIn(role Role)
	LoggedOut(reason LogoutReason)
	WatchdogChecked(expired bool)
}

var (
	ErrAlreadyInitialized = errors.New("session was already initialized")
	ErrInvalidRole        = errors.New("role must be admin or vendor")
	ErrEmptyToken         = errors.New("credential must not be empty")
)
