// Package memory implements in-memory repositories for development and
// testing. All repositories share one DB and one lock.
package memory

import (
	"sort"
	"sync"
	"time"

	"mytasker/internal/domain"
)

// DB holds the shared in-memory state behind the repository wrappers.
type DB struct {
	mu            sync.Mutex
	users         []*domain.User
	tasks         []*domain.Task
	notifications []*domain.Notification
	reads         map[int64]map[int64]bool // notification ID -> user IDs
	auditLog      []domain.AuditEntry

	userIDCounter         int64
	taskIDCounter         int64
	notificationIDCounter int64
	auditIDCounter        int64

	now func() time.Time
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		reads: make(map[int64]map[int64]bool),
		now:   time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

func (db *DB) findUserLocked(id int64) *domain.User {
	for _, u := range db.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// deleteUserLocked removes the user and cascades to owned records, the
// way the SQL schema's foreign keys do.
func (db *DB) deleteUserLocked(id int64) {
	for i, u := range db.users {
		if u.ID == id {
			db.users = append(db.users[:i], db.users[i+1:]...)
			break
		}
	}
	kept := db.tasks[:0]
	for _, t := range db.tasks {
		if t.UserID != id {
			kept = append(kept, t)
		}
	}
	db.tasks = kept
	for _, users := range db.reads {
		delete(users, id)
	}
}

func sortUsersNewestFirst(users []domain.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
}
