package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ymoriya/panedash/internal/model"
)

// SessionRepo persists session rows (single 'token_hash' column keyed by
// the SHA-256 of the cookie token).
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Insert stores a new session row.
func (r *SessionRepo) Insert(ctx context.Context, tokenHash, userID string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (token_hash, user_id, expires_at) VALUES (?,?,?)",
		tokenHash, userID, exp)
	return err
}

// Lookup returns the session for a token hash, expired or not.  Expiry
// policy lives in the session manager; this just reads the row.
func (r *SessionRepo) Lookup(ctx context.Context, tokenHash string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT token_hash, user_id, expires_at, created_at FROM sessions WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&s.TokenHash, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

// UpdateExpiry pushes a session's expiry forward.
func (r *SessionRepo) UpdateExpiry(ctx context.Context, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET expires_at=? WHERE token_hash=?",
		exp, tokenHash)
	return err
}

// Delete removes a session row.  Deleting an absent row is not an error,
// which makes logout idempotent.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE token_hash=?", tokenHash)
	return err
}
