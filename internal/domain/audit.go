package domain

import (
	"context"
	"time"
)

// AuditEntry is one row of the append-only audit trail.
type AuditEntry struct {
	ID         int64
	UserID     int64
	Action     string
	Resource   string
	ResourceID string
	Details    string
	IPAddress  string
	CreatedAt  time.Time

	// UserName is populated on listing by joining against users.
	UserName string
}

// AuditFilter narrows an audit log listing. Zero values mean "any".
type AuditFilter struct {
	UserID   int64
	Action   string
	Resource string
	Limit    int
	Offset   int
}

// AuditRepository defines the port for the audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, e AuditEntry) error
	// List returns matching entries, newest first.
	List(ctx context.Context, f AuditFilter) ([]AuditEntry, error)
}
