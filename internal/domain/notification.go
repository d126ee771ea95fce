package domain

import (
	"context"
	"time"
)

// Notification is an announcement broadcast to all users.
type Notification struct {
	ID        int64
	Title     string
	Message   string
	CreatedBy int64
	CreatedAt time.Time

	// Read is set when listing for a specific user.
	Read bool
	// ReadCount is set when listing with per-notification read totals.
	ReadCount int
}

// NotificationRepository defines the port for notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, title, message string, createdBy int64) (*Notification, error)
	Get(ctx context.Context, id int64) (*Notification, error)
	// ListForUser returns all notifications, newest first, with Read set
	// for the given user.
	ListForUser(ctx context.Context, userID int64) ([]Notification, error)
	// ListWithReadCounts returns all notifications, newest first, with
	// ReadCount populated.
	ListWithReadCounts(ctx context.Context) ([]Notification, error)
	// MarkRead records that the user has read the notification. Marking an
	// already-read notification is a no-op.
	MarkRead(ctx context.Context, id, userID int64) error
	// Delete removes the notification and its read records.
	Delete(ctx context.Context, id int64) error
}
