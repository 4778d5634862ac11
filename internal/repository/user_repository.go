package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/ymoriya/panedash/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreateWithDefaults inserts a user together with their credential row and
// the starter layout/settings blobs in a single transaction, so a signup
// either fully exists or not at all.  Returns the new user id.
func (r *UserRepo) CreateWithDefaults(ctx context.Context, email string, name *string, passwordHash, layoutJSON, settingsJSON string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	id := uuid.NewString()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO users (id, email, name) VALUES (?,?,?)",
		id, email, name); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO credentials (id, user_id, password_hash) VALUES (?,?,?)",
		"email:"+email, id, passwordHash); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO layouts (user_id, data) VALUES (?,?)",
		id, layoutJSON); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO settings (user_id, data) VALUES (?,?)",
		id, settingsJSON); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, email, name, created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	return u, err
}
