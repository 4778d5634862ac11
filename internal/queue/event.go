// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit log.
package queue

// AuditQueueName is the durable queue carrying identity lifecycle events.
const AuditQueueName = "dashboard.audit"

// AuditEvent is published when a user signs up, logs in or logs out.  It
// carries enough for downstream consumers to log or alert without querying
// the primary database.
type AuditEvent struct {
    Action     string `json:"action"` // "signup" | "login" | "logout"
    UserID     string `json:"user_id"`
    Email      string `json:"email,omitempty"`
    RemoteIP   string `json:"remote_ip,omitempty"`
    OccurredAt string `json:"occurred_at"` // RFC 3339
}
