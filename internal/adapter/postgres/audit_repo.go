package postgres

import (
	"context"
	"fmt"
	"strings"

	"mytasker/internal/domain"
)

// AuditRepo implements domain.AuditRepository on PostgreSQL.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo wraps a DB as an AuditRepository.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert appends one audit entry.
func (r *AuditRepo) Insert(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Details, e.IPAddress, e.CreatedAt)
	return err
}

// List returns matching entries, newest first. The user name is joined
// in; entries for deleted accounts keep an empty name.
func (r *AuditRepo) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != 0 {
		add("a.user_id = $%d", f.UserID)
	}
	if f.Action != "" {
		add("a.action = $%d", f.Action)
	}
	if f.Resource != "" {
		add("a.resource = $%d", f.Resource)
	}

	q := `SELECT a.id, a.user_id, a.action, a.resource, a.resource_id,
	             a.details, a.ip_address, a.created_at, COALESCE(u.name, '')
	      FROM audit_logs a
	      LEFT JOIN users u ON u.id = a.user_id`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY a.created_at DESC, a.id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Resource,
			&e.ResourceID, &e.Details, &e.IPAddress, &e.CreatedAt, &e.UserName); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
