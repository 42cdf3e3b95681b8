package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/google/uuid"

	"github.com/platinummonkey/docvault/pkg/observability"
	"github.com/platinummonkey/docvault/pkg/org"
)

// CookieName is the session cookie issued on login.
const CookieName = "docvault_session"

// DefaultSessionTTL matches the cookie lifetime handed out on login.
const DefaultSessionTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidCredentials is returned for a bad email/password pair and
	// for login attempts by deactivated users. Callers must not
	// distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoSession is returned when a session id is unknown, expired, or
	// belongs to a deactivated user.
	ErrNoSession = errors.New("no valid session")
)

// Session is a server-side login session keyed by an opaque id stored in
// the client cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// Store is the persistence the session manager needs. The full storage
// layer satisfies it structurally.
type Store interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
	GetUser(ctx context.Context, id string) (*org.User, error)
	GetUserByEmail(ctx context.Context, email string) (*org.User, error)
}

// Manager issues, resolves and revokes sessions. Resolved sessions are held
// in a small expirable cache so steady-state request auth does not hit the
// database; revocation and expiry both invalidate cache entries.
type Manager struct {
	store   Store
	ttl     time.Duration
	cache   *lru.LRU[string, *Session]
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewManager builds a session manager. A zero ttl falls back to
// DefaultSessionTTL. logger and metrics may be nil.
func NewManager(store Store, ttl time.Duration, logger *observability.Logger, metrics *observability.Metrics) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cacheTTL := ttl
	if cacheTTL > 5*time.Minute {
		cacheTTL = 5 * time.Minute
	}
	return &Manager{
		store:   store,
		ttl:     ttl,
		cache:   lru.NewLRU[string, *Session](4096, nil, cacheTTL),
		logger:  logger,
		metrics: metrics,
	}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login verifies the email/password pair and creates a session for the
// user. Deactivated users are rejected with ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, *org.User, error) {
	user, err := m.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil || user.Deactivated() {
		return nil, nil, ErrInvalidCredentials
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}
	m.cache.Add(session.ID, session)
	if m.metrics != nil {
		m.metrics.SessionsCreatedTotal.Inc()
	}
	if m.logger != nil {
		m.logger.WithField("user_id", user.ID).Info("session created")
	}
	return session, user, nil
}

// Resolve maps a session id to its user. Unknown, expired, and
// deactivated-user sessions all resolve to ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, sessionID string) (*Session, *org.User, error) {
	session, ok := m.cache.Get(sessionID)
	if ok {
		if m.metrics != nil {
			m.metrics.SessionCacheHits.Inc()
		}
	} else {
		if m.metrics != nil {
			m.metrics.SessionCacheMisses.Inc()
		}
		var err error
		session, err = m.store.GetSession(ctx, sessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("loading session: %w", err)
		}
		if session != nil {
			m.cache.Add(session.ID, session)
		}
	}
	if session == nil || session.Expired() {
		m.cache.Remove(sessionID)
		return nil, nil, ErrNoSession
	}

	user, err := m.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session user: %w", err)
	}
	if user == nil || user.Deactivated() {
		m.cache.Remove(sessionID)
		return nil, nil, ErrNoSession
	}
	return session, user, nil
}

// Logout revokes a session. Revoking an unknown session is a no-op.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	m.cache.Remove(sessionID)
	if err := m.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PurgeExpired removes expired sessions from the store. It is wired to a
// periodic job in the server.
func (m *Manager) PurgeExpired(ctx context.Context) (int, error) {
	n, err := m.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	if n > 0 && m.logger != nil {
		m.logger.WithField("count", n).Info("purged expired sessions")
	}
	return n, nil
}

// Cookie builds the session cookie for a freshly created session.
func (m *Manager) Cookie(session *Session, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt) / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearedCookie builds the expired cookie sent on logout.
func ClearedCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}
