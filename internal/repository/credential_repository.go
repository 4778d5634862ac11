package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ymoriya/panedash/internal/model"
)

// CredentialRepo reads login credentials.  Rows are written by
// UserRepo.CreateWithDefaults and never updated by any visible path.
type CredentialRepo struct{ DB *sql.DB }

func NewCredentialRepo(db *sql.DB) *CredentialRepo { return &CredentialRepo{DB: db} }

// IdentityKey builds the composite lookup key for email/password login.
func IdentityKey(email string) string {
	return "email:" + strings.ToLower(strings.TrimSpace(email))
}

// GetByIdentity fetches a credential by its identity key.  Returns
// sql.ErrNoRows when no such login method exists.
func (r *CredentialRepo) GetByIdentity(ctx context.Context, key string) (model.Credential, error) {
	var cr model.Credential
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, password_hash FROM credentials WHERE id=? LIMIT 1",
		key).Scan(&cr.ID, &cr.UserID, &cr.PasswordHash)
	return cr, err
}
