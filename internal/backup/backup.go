// Package backup shells out to the PostgreSQL client tools to produce
// and restore full-database SQL dumps on local disk.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ConnInfo carries the connection parameters passed to pg_dump and psql.
type ConnInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// Info describes one backup file on disk.
type Info struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Backup file names embed a timestamp and nothing else. The pattern
// doubles as the path-traversal guard for user-supplied names.
var validName = regexp.MustCompile(`^backup_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.sql$`)

// Runner creates, lists, restores, and deletes database backups in a
// single directory.
type Runner struct {
	dir    string
	conn   ConnInfo
	pgDump string
	psql   string
	logger *slog.Logger

	now func() time.Time
}

// NewRunner creates a Runner. Empty tool paths default to looking up
// pg_dump and psql on PATH.
func NewRunner(dir string, conn ConnInfo, pgDump, psql string, logger *slog.Logger) *Runner {
	if pgDump == "" {
		pgDump = "pg_dump"
	}
	if psql == "" {
		psql = "psql"
	}
	return &Runner{dir: dir, conn: conn, pgDump: pgDump, psql: psql, logger: logger, now: time.Now}
}

// Dir returns the backup directory.
func (r *Runner) Dir() string { return r.dir }

// Create dumps the database to a new timestamped file and returns its
// description. A dump that produces an empty file is treated as failed.
func (r *Runner) Create(ctx context.Context) (*Info, error) {
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return nil, fmt.Errorf("backup dir: %w", err)
	}

	name := "backup_" + r.now().Format("2006-01-02_15-04-05") + ".sql"
	path := filepath.Join(r.dir, name)

	cmd := exec.CommandContext(ctx, r.pgDump,
		"-h", r.conn.Host,
		"-p", r.conn.Port,
		"-U", r.conn.User,
		"-d", r.conn.DBName,
		"-f", path,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+r.conn.Password)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("pg_dump: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}
	if fi.Size() == 0 {
		os.Remove(path)
		return nil, fmt.Errorf("pg_dump produced an empty file")
	}

	r.logger.Info("backup created", "name", name, "size", fi.Size())
	return &Info{Name: name, Size: fi.Size(), Modified: fi.ModTime()}, nil
}

// Restore replays the named backup into the database.
func (r *Runner) Restore(ctx context.Context, name string) error {
	path, err := r.resolve(name)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, r.psql,
		"-h", r.conn.Host,
		"-p", r.conn.Port,
		"-U", r.conn.User,
		"-d", r.conn.DBName,
		"-f", path,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+r.conn.Password)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("psql: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	r.logger.Info("backup restored", "name", name)
	return nil
}

// List returns all backups, newest first.
func (r *Runner) List() ([]Info, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() || !validName.MatchString(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Name: e.Name(), Size: fi.Size(), Modified: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modified.After(out[j].Modified) })
	return out, nil
}

// Open returns a reader over the named backup, for download.
func (r *Runner) Open(name string) (io.ReadCloser, int64, error) {
	path, err := r.resolve(name)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open backup: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat backup: %w", err)
	}
	return f, fi.Size(), nil
}

// Delete removes the named backup.
func (r *Runner) Delete(name string) error {
	path, err := r.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}

// resolve validates a user-supplied name and maps it to a path inside
// the backup directory. Names that do not match the generated pattern,
// including anything with separators or dot segments, are rejected.
func (r *Runner) resolve(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid backup name %q", name)
	}
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("backup not found: %w", err)
	}
	return path, nil
}
