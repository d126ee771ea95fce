package memory

import (
	"context"
	"sort"

	"mytasker/internal/domain"
)

// NotificationRepo implements domain.NotificationRepository on a DB.
type NotificationRepo struct {
	db *DB
}

// NewNotificationRepo wraps a DB as a NotificationRepository.
func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, title, message string, createdBy int64) (*domain.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.notificationIDCounter++
	n := &domain.Notification{
		ID:        r.db.notificationIDCounter,
		Title:     title,
		Message:   message,
		CreatedBy: createdBy,
		CreatedAt: r.db.now(),
	}
	r.db.notifications = append(r.db.notifications, n)
	cp := *n
	return &cp, nil
}

// Get retrieves one notification.
func (r *NotificationRepo) Get(ctx context.Context, id int64) (*domain.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, n := range r.db.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

// ListForUser returns all notifications, newest first, with the user's
// read state.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.Notification, 0, len(r.db.notifications))
	for _, n := range r.db.notifications {
		cp := *n
		cp.Read = r.db.reads[n.ID][userID]
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ListWithReadCounts returns all notifications, newest first, with
// per-notification read totals.
func (r *NotificationRepo) ListWithReadCounts(ctx context.Context) ([]domain.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.Notification, 0, len(r.db.notifications))
	for _, n := range r.db.notifications {
		cp := *n
		cp.ReadCount = len(r.db.reads[n.ID])
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// MarkRead records that the user has read the notification. Re-marking
// is a no-op.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.reads[id] == nil {
		r.db.reads[id] = make(map[int64]bool)
	}
	r.db.reads[id][userID] = true
	return nil
}

// Delete removes the notification and its read records.
func (r *NotificationRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, n := range r.db.notifications {
		if n.ID == id {
			r.db.notifications = append(r.db.notifications[:i], r.db.notifications[i+1:]...)
			break
		}
	}
	delete(r.db.reads, id)
	return nil
}
