package models

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Pagination describes list result paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ActorClaims carries the already-authenticated actor identity attached to
// mutations for audit logging. The registry performs no authentication of its
// own beyond verifying the token signature.
type ActorClaims struct {
	ActorID string `json:"actor_id"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

// AuditLog records who performed which mutation against which resource.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	ActorID    *string         `db:"actor_id" json:"actor_id,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resource_id,omitempty"`
	Payload    json.RawMessage `db:"payload" json:"payload,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address"`
	UserAgent  string          `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
