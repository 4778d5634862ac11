// Package session converts opaque cookie tokens into authenticated user
// identities and manages the token lifecycle: creation at login, sliding
// expiry on validation, deletion at logout.
package session

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/ymoriya/panedash/internal/repository"
	"github.com/ymoriya/panedash/internal/utils"
)

// Manager validates, issues and invalidates sessions.  TTL is the full
// session lifetime; a session whose remaining lifetime has dropped below
// half the TTL gets its expiry extended and the caller is told to reissue
// the cookie.
type Manager struct {
	Sessions *repository.SessionRepo
	TTL      time.Duration
}

func NewManager(s *repository.SessionRepo, ttl time.Duration) *Manager {
	return &Manager{Sessions: s, TTL: ttl}
}

// Result describes a successfully validated session.  Fresh reports
// whether the session is still inside its fresh window: when false the
// expiry was just extended and the caller must reissue the cookie with
// ExpiresAt.
type Result struct {
	UserID    string
	ExpiresAt time.Time
	Fresh     bool
}

// Create issues a new session for a user and returns the raw token to put
// in the cookie plus its expiry.  Only the token's hash is persisted.
func (m *Manager) Create(ctx context.Context, userID string) (string, time.Time, error) {
	raw, err := utils.NewSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := time.Now().UTC().Add(m.TTL)
	if err := m.Sessions.Insert(ctx, utils.HashToken(raw), userID, exp); err != nil {
		return "", time.Time{}, err
	}
	return raw, exp, nil
}

// Validate resolves a raw cookie token.  Absent, unknown and expired
// tokens all report ok=false without an error; a non-nil error means the
// session store itself failed and must not be presented as "logged out".
// Exactly one freshness decision is made per call.
func (m *Manager) Validate(ctx context.Context, raw string) (Result, bool, error) {
	if raw == "" {
		return Result{}, false, nil
	}
	hash := utils.HashToken(raw)
	s, err := m.Sessions.Lookup(ctx, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}

	now := time.Now().UTC()
	if now.After(s.ExpiresAt) {
		if err := m.Sessions.Delete(ctx, hash); err != nil {
			log.Printf("session: delete expired session failed: %v", err)
		}
		return Result{}, false, nil
	}
	if s.ExpiresAt.Sub(now) < m.TTL/2 {
		exp := now.Add(m.TTL)
		if err := m.Sessions.UpdateExpiry(ctx, hash, exp); err != nil {
			return Result{}, false, err
		}
		return Result{UserID: s.UserID, ExpiresAt: exp, Fresh: false}, true, nil
	}
	return Result{UserID: s.UserID, ExpiresAt: s.ExpiresAt, Fresh: true}, true, nil
}

// Invalidate removes the session for a raw token.  Idempotent: tokens that
// were never issued or are already gone succeed silently.
func (m *Manager) Invalidate(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return m.Sessions.Delete(ctx, utils.HashToken(raw))
}
