package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema lists the tables the service needs.  Statements are idempotent so
// EnsureSchema can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         VARCHAR(36)  NOT NULL PRIMARY KEY,
		email      VARCHAR(255) NOT NULL UNIQUE,
		name       VARCHAR(255) NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS credentials (
		id            VARCHAR(291) NOT NULL PRIMARY KEY,
		user_id       VARCHAR(36)  NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		CONSTRAINT fk_credentials_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token_hash VARCHAR(64) NOT NULL PRIMARY KEY,
		user_id    VARCHAR(36) NOT NULL,
		expires_at DATETIME    NOT NULL,
		created_at DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS layouts (
		user_id    VARCHAR(36) NOT NULL PRIMARY KEY,
		data       MEDIUMTEXT  NOT NULL,
		updated_at DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_layouts_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		user_id    VARCHAR(36) NOT NULL PRIMARY KEY,
		data       MEDIUMTEXT  NOT NULL,
		updated_at DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_settings_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
}

// EnsureSchema creates any missing tables.  The credential id column is wide
// enough for the "email:" prefix plus a full-length address.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
