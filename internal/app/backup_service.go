package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"mytasker/internal/audit"
	"mytasker/internal/backup"
)

// MsgBackupFailed is returned when a backup operation fails. The
// underlying tool error goes to the log, not the client.
const MsgBackupFailed = "Backup operation failed"

// BackupService runs database backup and restore on behalf of an
// administrator, recording each operation in the audit trail. When an
// uploader is configured, fresh backups are also copied offsite; upload
// failures are logged but do not fail the backup.
type BackupService struct {
	runner   *backup.Runner
	uploader *backup.Uploader
	audit    audit.Sink
	logger   *slog.Logger
}

// NewBackupService creates a BackupService. uploader may be nil.
func NewBackupService(runner *backup.Runner, uploader *backup.Uploader, sink audit.Sink, logger *slog.Logger) *BackupService {
	return &BackupService{runner: runner, uploader: uploader, audit: sink, logger: logger}
}

// List returns all backups, newest first.
func (s *BackupService) List() ([]backup.Info, error) {
	return s.runner.List()
}

// Create produces a new backup.
func (s *BackupService) Create(ctx context.Context, actorID int64) (*backup.Info, Result) {
	info, err := s.runner.Create(ctx)
	if err != nil {
		s.logger.Error("backup create failed", "error", err)
		return nil, failure(MsgBackupFailed)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     actorID,
		Action:     "CREATE_BACKUP",
		Resource:   "backup",
		ResourceID: info.Name,
		Details:    "Database backup created",
	})
	if s.uploader != nil && s.uploader.Enabled() {
		if err := s.uploader.Upload(ctx, filepath.Join(s.runner.Dir(), info.Name)); err != nil {
			s.logger.Error("backup upload failed", "name", info.Name, "error", err)
		}
	}
	return info, success()
}

// Restore replays the named backup into the database.
func (s *BackupService) Restore(ctx context.Context, actorID int64, name string) Result {
	if err := s.runner.Restore(ctx, name); err != nil {
		s.logger.Error("backup restore failed", "name", name, "error", err)
		return failure(MsgBackupFailed)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     actorID,
		Action:     "RESTORE_BACKUP",
		Resource:   "backup",
		ResourceID: name,
		Details:    "Database restored from backup",
	})
	return success()
}

// Open returns a reader over the named backup for download.
func (s *BackupService) Open(ctx context.Context, actorID int64, name string) (io.ReadCloser, int64, error) {
	rc, size, err := s.runner.Open(name)
	if err != nil {
		return nil, 0, err
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     actorID,
		Action:     "DOWNLOAD_BACKUP",
		Resource:   "backup",
		ResourceID: name,
	})
	return rc, size, nil
}

// Delete removes the named backup.
func (s *BackupService) Delete(ctx context.Context, actorID int64, name string) Result {
	if err := s.runner.Delete(name); err != nil {
		s.logger.Error("backup delete failed", "name", name, "error", err)
		return failure(MsgBackupFailed)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     actorID,
		Action:     "DELETE_BACKUP",
		Resource:   "backup",
		ResourceID: name,
		Details:    "Backup deleted",
	})
	return success()
}
