package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA-256 hashing for session tokens
    "encoding/hex"  // hex encoding functions
)

// NewSessionToken returns a cryptographically secure random token suitable
// for use as an opaque session identifier.  The raw value goes to the client
// in the session cookie; only its hash is persisted.
func NewSessionToken() (string, error) {
    return randomHex(32) // 32 bytes -> 64 hex chars
}

// HashToken returns the SHA-256 hash of a raw session token as a hex
// string.  Storing only the hash prevents attackers from using stolen
// database rows to hijack live sessions.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
