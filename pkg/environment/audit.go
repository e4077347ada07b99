package environment

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// AuditLog is a SQLite-backed, append-only record of environment builds
// (build_audit, written by Builder) and security scan decisions
// (scan_audit, written through RecordScan; the scan and run paths in this
// module do not call it) — purely additive observability supplementing the
// in-memory, TTL-bound caches the core relies on at request time. No
// execution-path decision ever depends on reading these rows back.
type AuditLog struct {
	db *sql.DB
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS build_audit (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	language   TEXT NOT NULL,
	cache_key  TEXT NOT NULL,
	success    INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_build_audit_key ON build_audit(cache_key);

CREATE TABLE IF NOT EXISTS scan_audit (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	scan_id        TEXT NOT NULL,
	skill_name     TEXT DEFAULT '',
	sandbox_level  TEXT NOT NULL,
	high_count     INTEGER NOT NULL,
	hard_blocked   INTEGER NOT NULL,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_audit_scan_id ON scan_audit(scan_id);
`

// OpenAuditLog opens (creating if needed) the SQLite audit database at path.
func OpenAuditLog(path string) (*AuditLog, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir %q: %w", dir, err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}

	return &AuditLog{db: db}, nil
}

// Close releases the underlying database handle.
func (a *AuditLog) Close() error { return a.db.Close() }

// RecordBuild appends a row describing one environment build attempt.
func (a *AuditLog) RecordBuild(language, cacheKey string, success bool, elapsed time.Duration) {
	_, _ = a.db.Exec(
		`INSERT INTO build_audit (language, cache_key, success, elapsed_ms, created_at) VALUES (?, ?, ?, ?, ?)`,
		language, cacheKey, boolToInt(success), elapsed.Milliseconds(), time.Now().UTC().Format(time.RFC3339),
	)
}

// RecordScan appends a row describing one security-scan decision.
func (a *AuditLog) RecordScan(scanID, skillName, sandboxLevel string, highCount int, hardBlocked bool) {
	_, _ = a.db.Exec(
		`INSERT INTO scan_audit (scan_id, skill_name, sandbox_level, high_count, hard_blocked, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		scanID, skillName, sandboxLevel, highCount, boolToInt(hardBlocked), time.Now().UTC().Format(time.RFC3339),
	)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
