package postgres

import (
	"context"
	"database/sql"

	"mytasker/internal/domain"
)

// NotificationRepo implements domain.NotificationRepository on PostgreSQL.
type NotificationRepo struct {
	db *DB
}

// NewNotificationRepo wraps a DB as a NotificationRepository.
func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, title, message string, createdBy int64) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.sql.QueryRowContext(ctx,
		`INSERT INTO notifications (title, message, created_by)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, message, created_by, created_at`,
		title, message, createdBy).
		Scan(&n.ID, &n.Title, &n.Message, &n.CreatedBy, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Get retrieves one notification.
func (r *NotificationRepo) Get(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT id, title, message, created_by, created_at FROM notifications WHERE id = $1", id).
		Scan(&n.ID, &n.Title, &n.Message, &n.CreatedBy, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListForUser returns all notifications, newest first, with the user's
// read state.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT n.id, n.title, n.message, n.created_by, n.created_at,
		        nr.user_id IS NOT NULL AS read
		 FROM notifications n
		 LEFT JOIN notification_reads nr
		   ON nr.notification_id = n.id AND nr.user_id = $1
		 ORDER BY n.created_at DESC, n.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.CreatedBy,
			&n.CreatedAt, &n.Read); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListWithReadCounts returns all notifications, newest first, with
// per-notification read totals.
func (r *NotificationRepo) ListWithReadCounts(ctx context.Context) ([]domain.Notification, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT n.id, n.title, n.message, n.created_by, n.created_at,
		        COUNT(nr.user_id) AS read_count
		 FROM notifications n
		 LEFT JOIN notification_reads nr ON nr.notification_id = n.id
		 GROUP BY n.id
		 ORDER BY n.created_at DESC, n.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.CreatedBy,
			&n.CreatedAt, &n.ReadCount); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead records that the user has read the notification. Re-marking
// is a no-op.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO notification_reads (notification_id, user_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, userID)
	return err
}

// Delete removes the notification; read records cascade.
func (r *NotificationRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM notifications WHERE id = $1", id)
	return err
}
