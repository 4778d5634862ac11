package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The ID is an opaque UUID string generated at signup.  Name is
// optional and kept nullable in the database, so it is a pointer here.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Email     – unique email address.
//  Name      – optional display name (nil when not provided).
//  CreatedAt – timestamp of creation.
type User struct {
    ID        string    // users.id
    Email     string    // users.email
    Name      *string   // users.name (nullable)
    CreatedAt time.Time // users.created_at
}

// Credential models a row in the `credentials` table.  Each login method
// gets one row keyed by a composite identity string; email/password login
// uses "email:<address>".  The primary key guarantees at most one
// credential per identity key.
//
// Fields:
//  ID           – identity key ("email:" + address).
//  UserID       – owner of the credential.
//  PasswordHash – argon2id encoded hash of the password.
type Credential struct {
    ID           string // credentials.id
    UserID       string // credentials.user_id
    PasswordHash string // credentials.password_hash
}

// Session models an entry in the `sessions` table.  The raw cookie token
// is never stored; only its SHA-256 hex digest.
//
// Fields:
//  TokenHash – SHA-256 hex digest of the cookie token.
//  UserID    – owner of the session.
//  ExpiresAt – expiration timestamp of the session.
//  CreatedAt – timestamp of creation.
type Session struct {
    TokenHash string    // sessions.token_hash
    UserID    string    // sessions.user_id
    ExpiresAt time.Time // sessions.expires_at
    CreatedAt time.Time // sessions.created_at
}
