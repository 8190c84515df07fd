package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thingbox/thingbox-go/internal/auth"
	"github.com/thingbox/thingbox-go/internal/cache"
	"github.com/thingbox/thingbox-go/internal/crypto"
	"github.com/thingbox/thingbox-go/internal/repository"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrNotAdmin         = errors.New("admin privileges required")
	ErrHandshakeExpired = errors.New("handshake expired or unknown")
)

// AuthService runs the login handshake against the external identity
// provider and owns the three bounded session caches. Sessions are ephemeral
// and disposable; admin standing is always re-resolved against the store.
type AuthService struct {
	provider    auth.Provider
	store       *repository.Store
	pending     *cache.TTL[time.Time]
	sessions    *cache.TTL[*auth.Session]
	adminTokens *cache.TTL[*auth.Session]
	tokenLen    int
	mu          sync.Mutex // serializes admin-token issuance per session
}

func NewAuthService(
	provider auth.Provider,
	store *repository.Store,
	pending *cache.TTL[time.Time],
	sessions *cache.TTL[*auth.Session],
	adminTokens *cache.TTL[*auth.Session],
	tokenLen int,
) *AuthService {
	return &AuthService{
		provider:    provider,
		store:       store,
		pending:     pending,
		sessions:    sessions,
		adminTokens: adminTokens,
		tokenLen:    tokenLen,
	}
}

// Begin starts a login handshake: a fresh token is parked in the
// pending-auth cache and doubles as the session token once the provider
// redirects back.
func (s *AuthService) Begin(ctx context.Context) (token, redirectURL string) {
	token = crypto.NewToken(s.tokenLen)
	s.pending.Put(token, time.Now())
	return token, s.provider.AuthCodeURL(token)
}

// Complete finishes the handshake for a pending token and installs a user
// session under it. An unknown or expired token (the user dawdled past the
// auth timeout) yields ErrHandshakeExpired.
func (s *AuthService) Complete(ctx context.Context, token, code string) error {
	s.sessions.Remove(token)

	if _, ok := s.pending.Get(token); !ok {
		return ErrHandshakeExpired
	}
	s.pending.Remove(token)

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("completing handshake: %w", err)
	}

	s.sessions.Put(token, &auth.Session{Identity: identity})
	return nil
}

// Authenticate resolves a bearer token to a live user session.
func (s *AuthService) Authenticate(token string) (*auth.Session, error) {
	sess, ok := s.sessions.Get(token)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return sess, nil
}

// IsAdmin reports the session identity's current admin standing.
func (s *AuthService) IsAdmin(ctx context.Context, sess *auth.Session) (bool, error) {
	_, ok, err := s.store.IsAdmin(ctx, sess.Identity.Provider, sess.Identity.UserID)
	return ok, err
}

// IssueAdminToken mints a separately-scoped, shorter-lived credential for
// write operations. At most one admin token is live per session: issuing a
// new one invalidates the previous one first.
func (s *AuthService) IssueAdminToken(ctx context.Context, sess *auth.Session) (string, error) {
	_, ok, err := s.store.IsAdmin(ctx, sess.Identity.Provider, sess.Identity.UserID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotAdmin
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.AdminToken != "" {
		s.adminTokens.Remove(sess.AdminToken)
	}

	token := crypto.NewToken(s.tokenLen)
	sess.AdminToken = token
	s.adminTokens.Put(token, sess)
	return token, nil
}

// AuthenticateAdmin resolves an admin token and re-checks admin standing
// against the store on every use, so revocation bites immediately rather
// than at the token's TTL. A failed re-check evicts the token.
func (s *AuthService) AuthenticateAdmin(ctx context.Context, token string) (*auth.Session, int64, error) {
	sess, ok := s.adminTokens.Get(token)
	if !ok {
		return nil, 0, ErrUnauthenticated
	}

	adminID, ok, err := s.store.IsAdmin(ctx, sess.Identity.Provider, sess.Identity.UserID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		s.adminTokens.Remove(token)
		return nil, 0, ErrNotAdmin
	}

	return sess, adminID, nil
}
