// Package audit records security-relevant events. Sinks are side-effect
// only: recording failures never influence the outcome of the operation
// being audited.
package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"mytasker/internal/domain"
)

// Event is a single security-relevant occurrence.
type Event struct {
	UserID     int64     `json:"user_id"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Time       time.Time `json:"time"`
}

// Sink receives audit events.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// NoOpSink discards all events.
type NoOpSink struct{}

// Record implements Sink.
func (NoOpSink) Record(context.Context, Event) {}

// WriterSink writes one JSON object per event to w.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Record implements Sink. Encoding errors are silently dropped.
func (s *WriterSink) Record(_ context.Context, e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = json.NewEncoder(s.w).Encode(e)
}

// StoreSink persists events to the audit_logs table. Insert failures are
// logged and swallowed so that auditing never blocks the audited action.
type StoreSink struct {
	repo   domain.AuditRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewStoreSink creates a StoreSink backed by the given repository.
func NewStoreSink(repo domain.AuditRepository, logger *slog.Logger) *StoreSink {
	return &StoreSink{repo: repo, logger: logger, now: time.Now}
}

// Record implements Sink.
func (s *StoreSink) Record(ctx context.Context, e Event) {
	if e.Time.IsZero() {
		e.Time = s.now()
	}
	if e.IPAddress == "" {
		e.IPAddress = IPFromContext(ctx)
	}
	err := s.repo.Insert(ctx, domain.AuditEntry{
		UserID:     e.UserID,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		Details:    e.Details,
		IPAddress:  e.IPAddress,
		CreatedAt:  e.Time,
	})
	if err != nil {
		s.logger.Error("audit insert failed", "action", e.Action, "error", err)
	}
}

type ipKey struct{}

// WithIP attaches the client IP to the context so sinks can stamp events
// recorded deeper in the call chain.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// IPFromContext returns the client IP attached by WithIP, or "".
func IPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ipKey{}).(string)
	return ip
}
