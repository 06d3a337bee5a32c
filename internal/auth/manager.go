// Package auth owns the client session: it is hydrated from storage at
// startup, replaced on login and cleared on logout or when the API rejects
// the token.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/movienight/internal/model"
)

var ErrNoToken = errors.New("auth: login response has no token")

// Store persists the session. *store.SessionStore satisfies it.
type Store interface {
	Save(sess model.Session) error
	Load() (*model.Session, error)
	UpdateUser(u model.User) error
	Clear() error
}

type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *model.Session
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Hydrate loads the stored session. An expired session is cleared and the
// manager starts signed out.
func (m *Manager) Hydrate() error {
	sess, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sess == nil {
		m.current = nil
		return nil
	}
	if sess.ExpiresAt == nil {
		sess.ExpiresAt = TokenExpiry(sess.Token)
	}
	if sess.Expired(m.now()) {
		m.logger.Info("stored session expired", "user_id", sess.User.ID)
		m.current = nil
		if err := m.store.Clear(); err != nil {
			return fmt.Errorf("clear expired session: %w", err)
		}
		return nil
	}

	m.current = sess
	m.logger.Info("session restored", "user_id", sess.User.ID)
	return nil
}

// Login replaces the session with the one the API issued.
func (m *Manager) Login(resp model.AuthResponse) (model.Session, error) {
	if resp.Token == "" {
		return model.Session{}, ErrNoToken
	}
	sess := model.Session{
		Token:     resp.Token,
		User:      resp.User,
		ExpiresAt: TokenExpiry(resp.Token),
		SavedAt:   m.now(),
	}
	if err := m.store.Save(sess); err != nil {
		return model.Session{}, fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.current = &sess
	m.mu.Unlock()

	m.logger.Info("signed in", "user_id", sess.User.ID)
	return sess, nil
}

// Logout clears the session in memory and in storage.
func (m *Manager) Logout() error {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if had {
		m.logger.Info("signed out")
	}
	return nil
}

// Current returns the live session. An expired session counts as none.
func (m *Manager) Current() (model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.Expired(m.now()) {
		return model.Session{}, false
	}
	return *m.current, true
}

// Token returns the bearer token of the live session.
func (m *Manager) Token() (string, bool) {
	sess, ok := m.Current()
	if !ok {
		return "", false
	}
	return sess.Token, true
}

// UpdateUser refreshes the user snapshot after a profile change.
func (m *Manager) UpdateUser(u model.User) error {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return nil
	}
	m.current.User = u
	m.mu.Unlock()

	if err := m.store.UpdateUser(u); err != nil {
		return fmt.Errorf("update session user: %w", err)
	}
	return nil
}

// TokenExpiry reads the exp claim of a JWT without verifying it; the API
// verifies. Opaque tokens and tokens without exp yield nil.
func TokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
