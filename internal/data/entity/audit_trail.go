package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditTrail is an append-only fact about a state-changing action.
// Writes are best-effort; failure must never abort the caller.
type AuditTrail struct {
	ID         uuid.UUID  `db:"id"`
	Action     string     `db:"action"`
	Scale      string     `db:"scale"`
	Label      string     `db:"label"`
	EntityType string     `db:"entity_type"`
	EntityID   string     `db:"entity_id"`
	UserID     *uuid.UUID `db:"user_id"`
	Metadata   []byte     `db:"metadata"`
	CreatedAt  time.Time  `db:"created_at"`
}
