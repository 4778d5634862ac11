package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// StateTable names a per-user JSON blob table.  Layouts and settings share
// the same schema (user_id PK, data TEXT, updated_at), so one repository
// serves both behind a load/save interface instead of two parallel code
// paths.
type StateTable string

const (
	TableLayouts  StateTable = "layouts"
	TableSettings StateTable = "settings"
)

// StateRepo loads and upserts per-user JSON blobs.
type StateRepo struct{ DB *sql.DB }

func NewStateRepo(db *sql.DB) *StateRepo { return &StateRepo{DB: db} }

// Load returns the stored blob for a user.  Missing rows surface as
// sql.ErrNoRows so callers can fall back to defaults.
func (r *StateRepo) Load(ctx context.Context, table StateTable, userID string) (string, error) {
	if err := checkTable(table); err != nil {
		return "", err
	}
	var data string
	err := r.DB.QueryRowContext(ctx,
		fmt.Sprintf("SELECT data FROM %s WHERE user_id=? LIMIT 1", table),
		userID).Scan(&data)
	return data, err
}

// Save upserts the blob for a user.  The store's atomic upsert is the only
// concurrency control; last write wins.
func (r *StateRepo) Save(ctx context.Context, table StateTable, userID, data string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (user_id, data) VALUES (?,?) ON DUPLICATE KEY UPDATE data=VALUES(data)", table),
		userID, data)
	return err
}

// checkTable rejects table names outside the fixed set; the name is
// interpolated into SQL and must never come from request input.
func checkTable(table StateTable) error {
	switch table {
	case TableLayouts, TableSettings:
		return nil
	}
	return fmt.Errorf("unknown state table %q", table)
}
