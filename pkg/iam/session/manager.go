package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/logx"
)

// DefaultRevocationTTL bounds revocation of tokens without an expiry claim.
const DefaultRevocationTTL = 24 * time.Hour

// Revoker remembers invalidated tokens so other processes reject them too.
type Revoker interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type Manager struct {
	mu        sync.RWMutex
	current   *Session
	listeners []func(Session)

	revoker Revoker
	now     func() time.Time
}

type Option func(*Manager)

func WithRevoker(r Revoker) Option {
	return func(m *Manager) { m.revoker = r }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login installs token as the current credential. JWTs must carry a known
// role; opaque tokens are accepted with an unknown identity.
func (m *Manager) Login(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoSession()
	}

	s := &Session{Token: token}
	if LooksLikeJWT(token) {
		parsed, err := ParseToken(token)
		if err != nil {
			return nil, err
		}
		s = parsed
	}

	if s.Expired(m.now()) {
		return nil, ErrTokenExpired()
	}

	if m.revoker != nil {
		revoked, err := m.revoker.IsRevoked(ctx, token)
		if err != nil {
			logx.Warnf("session revocation lookup failed: %v", err)
		} else if revoked {
			return nil, ErrTokenRevoked()
		}
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	cp := *s
	return &cp, nil
}

func (m *Manager) Current() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || m.current.Expired(m.now()) {
		return nil, false
	}
	cp := *m.current
	return &cp, true
}

// Token returns the bearer credential for outgoing requests.
func (m *Manager) Token() (string, error) {
	s, ok := m.Current()
	if !ok {
		return "", ErrNoSession()
	}
	return s.Token, nil
}

// Require returns the current session if its role is one of roles.
func (m *Manager) Require(roles ...Role) (*Session, error) {
	s, ok := m.Current()
	if !ok {
		return nil, ErrNoSession()
	}
	if !s.Allows(roles...) {
		return nil, ErrRoleNotPermitted().WithDetail("role", s.Identity.Role)
	}
	return s, nil
}

func (m *Manager) OnInvalidate(fn func(Session)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Invalidate clears the stored identity, revokes the token and notifies
// listeners. It is a no-op without a session.
func (m *Manager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	s := m.current
	m.current = nil
	listeners := append([]func(Session){}, m.listeners...)
	m.mu.Unlock()

	if s == nil {
		return nil
	}

	var revokeErr error
	if m.revoker != nil {
		until := s.ExpiresAt
		if until.IsZero() {
			until = m.now().Add(DefaultRevocationTTL)
		}
		revokeErr = m.revoker.Revoke(ctx, s.Token, until)
	}

	logx.Info("session invalidated", "user_id", s.Identity.UserID, "role", s.Identity.Role)
	for _, fn := range listeners {
		fn(*s)
	}
	return revokeErr
}

// MemoryRevoker is a process-local Revoker.
type MemoryRevoker struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{entries: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryRevoker) Revoke(_ context.Context, token string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[token] = until
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.entries[token]
	if !ok {
		return false, nil
	}
	if !r.now().Before(until) {
		delete(r.entries, token)
		return false, nil
	}
	return true, nil
}
