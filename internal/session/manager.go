package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lachlan2k/labour-console/internal/storage"
)

// Keys of the durable session storage.
const (
	KeyAuthenticated = "isAuthenticated"
	KeyRole          = "role"
	KeyAuxiliaryID   = "auxiliaryId"
)

const (
	DefaultCookieName       = "token"
	DefaultCookieLifetime   = 24 * time.Hour
	DefaultWatchdogInterval = 30 * time.Second
)

type Option func(*Manager)

// WithClock replaces the wall clock used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithWatchdogInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// WithCookie sets the cookie holding the credential and how long it is kept, which is
// independent of the credential's own exp claim.
func WithCookie(name string, lifetime time.Duration) Option {
	return func(m *Manager) {
		m.cookieName = name
		m.cookieLifetime = lifetime
	}
}

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// Manager is the single source of truth for whether the console is logged in, as whom,
// and why it was last logged out. It is safe for concurrent use.
type Manager struct {
	kv       storage.KV
	jar      *storage.CookieJar
	notifier Notifier
	observer Observer
	logger   *zap.Logger

	now            func() time.Time
	interval       time.Duration
	cookieName     string
	cookieLifetime time.Duration

	mu    sync.Mutex
	state State

	notifications sync.WaitGroup
}

func NewManager(kv storage.KV, notifier Notifier, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		kv:             kv,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
		interval:       DefaultWatchdogInterval,
		cookieName:     DefaultCookieName,
		cookieLifetime: DefaultCookieLifetime,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	// The jar reads the clock through the manager so WithClock applies to both
	m.jar = storage.NewCookieJar(kv, func() time.Time { return m.now() })
	return m
}

// State returns a snapshot of the session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Initialize resolves the session from durable storage. It runs once; UNKNOWN is never
// re-entered afterwards.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.state.Auth != AuthUnknown {
		m.mu.Unlock()
		return ErrAlreadyInitialized
	}

	token, found, err := m.jar.Get(ctx, m.cookieName)
	if err != nil {
		m.state = State{Auth: AuthUnauthenticated}
		m.mu.Unlock()
		return fmt.Errorf("read stored credential: %w", err)
	}

	if !found {
		m.state = State{Auth: AuthUnauthenticated}
		m.mu.Unlock()
		m.logger.Debug("no stored credential")
		return nil
	}

	if IsExpired(token, m.now()) {
		m.state.Auth = AuthUnauthenticated
		m.mu.Unlock()
		m.logger.Info("stored credential has expired, logging out")
		m.Logout(ctx, LogoutReasonExpired)
		return nil
	}

	rawRole, _, err := m.kv.Get(ctx, KeyRole)
	if err != nil {
		m.state = State{Auth: AuthUnauthenticated}
		m.mu.Unlock()
		return fmt.Errorf("read stored role: %w", err)
	}

	role, ok := ParseRole(rawRole)
	if !ok {
		m.state = State{Auth: AuthUnauthenticated}
		m.mu.Unlock()
		m.logger.Warn("stored role is not recognised, discarding stored session", zap.String("role", rawRole))
		m.clearStorage(ctx)
		return nil
	}

	auxID, _, err := m.kv.Get(ctx, KeyAuxiliaryID)
	if err != nil {
		m.logger.Warn("couldn't read stored auxiliary id", zap.Error(err))
	}

	// Re-synchronise the redundant copies with the credential that is actually held
	if err := m.kv.Set(ctx, KeyAuthenticated, "true"); err != nil {
		m.logger.Warn("couldn't resync stored authentication flag", zap.Error(err))
	}
	if err := m.kv.Set(ctx, KeyRole, string(role)); err != nil {
		m.logger.Warn("couldn't resync stored role", zap.Error(err))
	}

	m.state = State{
		Auth:        AuthAuthenticated,
		Role:        role,
		Token:       token,
		AuxiliaryID: auxID,
	}
	m.mu.Unlock()

	m.logger.Info("restored session", zap.Stringer("role", role))
	return nil
}

// Login records a credential the backend has just issued. The credential's contents are
// not validated: the backend's response is the trust boundary. Storage is written before
// the in-memory state so a failed write never leaves a partial login behind.
func (m *Manager) Login(ctx context.Context, role Role, token, auxiliaryID string) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if token == "" {
		return ErrEmptyToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persist(ctx, role, token, auxiliaryID); err != nil {
		m.clearStorage(ctx)
		return fmt.Errorf("persist session: %w", err)
	}

	m.state = State{
		Auth:        AuthAuthenticated,
		Role:        role,
		Token:       token,
		AuxiliaryID: auxiliaryID,
	}

	if m.observer != nil {
		m.observer.LoggedIn(role)
	}
	m.logger.Info("logged in", zap.Stringer("role", role))
	return nil
}

func (m *Manager) persist(ctx context.Context, role Role, token, auxiliaryID string) error {
	if err := m.kv.Delete(ctx, KeyAuthenticated, KeyRole, KeyAuxiliaryID); err != nil {
		return err
	}
	if err := m.jar.Set(ctx, m.cookieName, token, m.cookieLifetime); err != nil {
		return err
	}
	if err := m.kv.Set(ctx, KeyAuthenticated, "true"); err != nil {
		return err
	}
	if err := m.kv.Set(ctx, KeyRole, string(role)); err != nil {
		return err
	}
	if auxiliaryID != "" {
		if err := m.kv.Set(ctx, KeyAuxiliaryID, auxiliaryID); err != nil {
			return err
		}
	}
	return nil
}

// clearStorage removes every durable session entry. Failures are logged: local logout
// must not be blocked by a storage hiccup.
func (m *Manager) clearStorage(ctx context.Context) {
	if err := m.jar.Remove(ctx, m.cookieName); err != nil {
		m.logger.Warn("couldn't remove stored credential", zap.Error(err))
	}
	if err := m.kv.Delete(ctx, KeyAuthenticated, KeyRole, KeyAuxiliaryID); err != nil {
		m.logger.Warn("couldn't clear stored session", zap.Error(err))
	}
}

// Logout clears the session locally and then tells the backend in the background. The
// backend call is best effort: its failure is logged and never retried. Calling Logout
// on an already cleared session leaves the same state.
func (m *Manager) Logout(ctx context.Context, reason LogoutReason) {
	// A caller that has gone away must not leave the stored session behind
	ctx = context.WithoutCancel(ctx)

	m.mu.Lock()

	wasAuthenticated := m.state.Authenticated()
	token, role := m.state.Token, m.state.Role
	if token == "" {
		// The in-memory copy may not be resolved yet (Initialize on an expired credential)
		token, _, _ = m.jar.Get(ctx, m.cookieName)
	}
	if !role.Valid() {
		raw, _, _ := m.kv.Get(ctx, KeyRole)
		role, _ = ParseRole(raw)
	}

	m.clearStorage(ctx)

	m.state = State{Auth: AuthUnauthenticated}
	if reason != LogoutReasonNone {
		m.state.LogoutReason = reason
	}
	m.mu.Unlock()

	if !wasAuthenticated && token == "" {
		m.logger.Debug("logout on an already cleared session")
		return
	}

	if m.observer != nil {
		m.observer.LoggedOut(reason)
	}
	m.logger.Info("logged out", zap.String("reason", string(reason)))

	if token == "" || !role.Valid() || m.notifier == nil {
		return
	}

	m.notifications.Add(1)
	go func() {
		defer m.notifications.Done()
		if err := m.notifier.Logout(ctx, role, token); err != nil {
			m.logger.Warn("backend logout failed", zap.Stringer("role", role), zap.Error(err))
		}
	}()
}

// Wait blocks until every backend logout notification started so far has finished.
func (m *Manager) Wait() {
	m.notifications.Wait()
}

// ConsumeLogoutReason returns the pending logout reason and clears it, so the notice is
// shown exactly once.
func (m *Manager) ConsumeLogoutReason() LogoutReason {
	m.mu.Lock()
	defer m.mu.Unlock()
	reason := m.state.LogoutReason
	m.state.LogoutReason = LogoutReasonNone
	return reason
}

// CheckExpiry is one watchdog pass over the stored credential. It reports whether a
// logout was forced.
func (m *Manager) CheckExpiry(ctx context.Context) (bool, error) {
	token, found, err := m.jar.Get(ctx, m.cookieName)
	if err != nil {
		return false, fmt.Errorf("read stored credential: %w", err)
	}

	if found && IsExpired(token, m.now()) {
		m.logger.Info("credential expired, forcing logout")
		m.Logout(ctx, LogoutReasonExpired)
		m.observe(true)
		return true, nil
	}

	if !found && m.State().Authenticated() {
		// Cleared behind our back: another process logged out, or the cookie lapsed
		m.logger.Info("stored credential disappeared, ending local session")
		m.Logout(ctx, LogoutReasonNone)
		m.observe(true)
		return true, nil
	}

	m.observe(false)
	return false, nil
}

func (m *Manager) observe(expired bool) {
	if m.observer != nil {
		m.observer.WatchdogChecked(expired)
	}
}

// Watch runs CheckExpiry on a fixed interval until ctx is done. A credential that expires
// at T is therefore dropped no later than T plus one interval.
func (m *Manager) Watch(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := m.CheckExpiry(ctx); err != nil {
				m.logger.Warn("watchdog check failed", zap.Error(err))
			}
		}
	}
}
