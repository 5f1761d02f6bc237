package domain

import "time"

// APIKey is a tenant's authentication credential. The plaintext key is
// never stored; api_key_hash is compared via a constant-time verifier
// (§4.10) and tenant_id is attached to the request context on success.
type APIKey struct {
	ID          string
	TenantID    string
	APIKeyHash  string
	RateLimit   int
	IsActive    bool
	LastUsedAt  *time.Time
	CreatedAt   time.Time
}

// AuditEntry is one row in the api_key_audit_log table: every
// authentication attempt, successful or not.
type AuditEntry struct {
	ID         string
	KeyPrefix  string
	TenantID   string
	Success    bool
	RemoteAddr string
	OccurredAt time.Time
}
