package memory

import (
	"context"

	"mytasker/internal/domain"
)

// AuditRepo implements domain.AuditRepository on a DB.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo wraps a DB as an AuditRepository.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

var _ domain.AuditRepository = (*AuditRepo)(nil)

// Insert appends one audit entry.
func (r *AuditRepo) Insert(ctx context.Context, e domain.AuditEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.auditIDCounter++
	e.ID = r.db.auditIDCounter
	if u := r.db.findUserLocked(e.UserID); u != nil {
		e.UserName = u.Name
	}
	r.db.auditLog = append(r.db.auditLog, e)
	return nil
}

// List returns matching entries, newest first.
func (r *AuditRepo) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var matched []domain.AuditEntry
	for i := len(r.db.auditLog) - 1; i >= 0; i-- {
		e := r.db.auditLog[i]
		if f.UserID != 0 && e.UserID != f.UserID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.Resource != "" && e.Resource != f.Resource {
			continue
		}
		matched = append(matched, e)
	}

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}
