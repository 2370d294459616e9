// Package session holds the signed-in user's session context and the
// in-memory stand-in for the authentication service.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iwvelando/company-valuation/pkg/constants"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// RoleAdmin grants access to the admin console.
const RoleAdmin = "admin"

// Session is the authenticated context passed to handlers.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles,omitempty"`
	TwoFactor bool      `json:"twoFactor"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HasRole reports whether the session carries role.
func (s *Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Store tracks live sessions. Init on sign-in, Clear on sign-out.
type Store struct {
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates a session store whose sessions live for ttl.
func NewStore(logger *zap.Logger, ttl time.Duration) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	return &Store{
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Init starts a session for account and returns it with a fresh token.
func (s *Store) Init(account Account) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now()
	sess := &Session{
		Token:     token,
		UserID:    account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Roles:     append([]string(nil), account.Roles...),
		TwoFactor: account.TwoFactor,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[token] = sess
	s.mu.Unlock()

	s.logger.Info("session started",
		zap.String("op", "session.Init"),
		zap.String("user", account.ID),
	)
	return sess, nil
}

// Lookup resolves a token. Expired sessions are dropped.
func (s *Store) Lookup(token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(sess.ExpiresAt) {
		s.Clear(token)
		return nil, ErrSessionExpired
	}
	copied := *sess
	return &copied, nil
}

// Clear ends a session. Clearing an unknown token is a no-op.
func (s *Store) Clear(token string) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()

	if ok {
		s.logger.Info("session cleared",
			zap.String("op", "session.Clear"),
			zap.String("user", sess.UserID),
		)
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession attaches sess to ctx.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext returns the session attached by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok && sess != nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
