package app

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"mytasker/internal/audit"
	"mytasker/internal/domain"
)

// Notification validation messages.
const (
	MsgNotificationTitleRequired   = "Notification title is required"
	MsgNotificationMessageRequired = "Notification message is required"
	MsgNotificationNotFound        = "Notification not found"
)

// NotificationService manages system-wide announcements. Creation and
// deletion are admin operations; the HTTP layer enforces that through
// the Gate before calling in.
type NotificationService struct {
	notifications domain.NotificationRepository
	audit         audit.Sink
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(notifications domain.NotificationRepository, sink audit.Sink, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, audit: sink, logger: logger}
}

// ListForUser returns all notifications with the user's read state.
func (s *NotificationService) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	return s.notifications.ListForUser(ctx, userID)
}

// ListWithReadCounts returns all notifications with read totals, for the
// admin view.
func (s *NotificationService) ListWithReadCounts(ctx context.Context) ([]domain.Notification, error) {
	return s.notifications.ListWithReadCounts(ctx)
}

// Create publishes a new announcement.
func (s *NotificationService) Create(ctx context.Context, actorID int64, title, message string) (*domain.Notification, Result) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" {
		return nil, failure(MsgNotificationTitleRequired)
	}
	if message == "" {
		return nil, failure(MsgNotificationMessageRequired)
	}
	n, err := s.notifications.Create(ctx, title, message, actorID)
	if err != nil {
		s.logger.Error("notification create failed", "error", err)
		return nil, failure(MsgStoreError)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     actorID,
		Action:     "CREATE_NOTIFICATION",
		Resource:   "notification",
		ResourceID: strconv.FormatInt(n.ID, 10),
		Details:    "Notification created: " + n.Title,
	})
	return n, success()
}

// MarkRead records that the user has read the notification. Marking an
// unknown notification is rejected; marking twice is not.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) Result {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		s.logger.Error("notification lookup failed", "notification_id", notificationID, "error", err)
		return failure(MsgStoreError)
	}
	if n == nil {
		return failure(MsgNotificationNotFound)
	}
	if err := s.notifications.MarkRead(ctx, notificationID, userID); err != nil {
		s.logger.Error("notification read mark failed", "notification_id", notificationID, "error", err)
		return failure(MsgStoreError)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     "READ_NOTIFICATION",
		Resource:   "notification",
		ResourceID: strconv.FormatInt(notificationID, 10),
	})
	return success()
}

// Delete removes a notification and its read records.
func (s *NotificationService) Delete(ctx context.Context, actorID, notificationID int64) Result {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		s.logger.Error("notification lookup failed", "notification_id", notificationID, "error", err)
		return failure(MsgStoreError)
	}
	if n == nil {
		return failure(MsgNotificationNotFound)
	}
	if err := s.notifications.Delete(ctx, notificationID); err != nil {
		s.logger.Error("notification delete failed", "notification_id", notificationID, "error", err)
		return failure(MsgStoreError)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     actorID,
		Action:     "DELETE_NOTIFICATION",
		Resource:   "notification",
		ResourceID: strconv.FormatInt(notificationID, 10),
		Details:    "Notification deleted: " + n.Title,
	})
	return success()
}
