// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/infrastructure/config"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db *sql.DB
	// q runs statements: db itself, or the open transaction of a
	// repository handed out by WithinTx.
	q    querier
	tx   bool
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// One connection: SQLite has a single writer, the PRAGMAs below are
	// per connection, and each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		q:    db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection. It is a no-op on the
// repository of a transaction.
func (r *Repository) Close() error {
	if r.tx {
		return nil
	}
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Owning records. Links between records carry no foreign keys so a
	-- dangling link can be read back and reported.
	CREATE TABLE IF NOT EXISTS persons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		given_name TEXT NOT NULL DEFAULT '',
		surname TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		name_note TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		research_notes TEXT NOT NULL DEFAULT '',
		medical TEXT NOT NULL DEFAULT '',
		death_cause TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS families (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		husband_id INTEGER NOT NULL DEFAULT 0,
		wife_id INTEGER NOT NULL DEFAULT 0,
		marriage_date TEXT NOT NULL DEFAULT '',
		marriage_location INTEGER NOT NULL DEFAULT 0,
		marriage_note TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		seal_date TEXT NOT NULL DEFAULT '',
		seal_temple INTEGER NOT NULL DEFAULT 0,
		seal_note TEXT NOT NULL DEFAULT '',
		not_married INTEGER NOT NULL DEFAULT 0,
		no_children INTEGER NOT NULL DEFAULT 0,
		marriage_end_date TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_families_husband ON families(husband_id);
	CREATE INDEX IF NOT EXISTS idx_families_wife ON families(wife_id);

	CREATE TABLE IF NOT EXISTS children (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		person_id INTEGER NOT NULL DEFAULT 0,
		family_id INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		father_relation TEXT NOT NULL DEFAULT '',
		mother_relation TEXT NOT NULL DEFAULT '',
		par_seal_date TEXT NOT NULL DEFAULT '',
		par_seal_temple INTEGER NOT NULL DEFAULT 0,
		par_seal_note TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_children_family ON children(family_id);

	CREATE TABLE IF NOT EXISTS names (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		person_id INTEGER NOT NULL DEFAULT 0,
		given_name TEXT NOT NULL DEFAULT '',
		surname TEXT NOT NULL DEFAULT '',
		aka_note TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_names_person ON names(person_id);

	CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		person_id INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		opened_date TEXT NOT NULL DEFAULT '',
		address_id INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT ''
	);

	-- Standalone events owned by a person or family
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_kind TEXT NOT NULL,
		owner_id INTEGER NOT NULL,
		subtype INTEGER NOT NULL,
		event_date TEXT NOT NULL DEFAULT '',
		place_id INTEGER NOT NULL DEFAULT 0,
		kind INTEGER NOT NULL DEFAULT 0,
		address_id INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		preferred INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_events_owner ON events(owner_kind, owner_id, sort_order);
	-- At most one preferred event per owner and subtype
	CREATE UNIQUE INDEX IF NOT EXISTS idx_events_preferred
		ON events(owner_kind, owner_id, subtype) WHERE preferred = 1;

	-- Locations, temples and addresses
	CREATE TABLE IF NOT EXISTS places (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		code TEXT NOT NULL DEFAULT ''
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_places_name ON places(kind, name COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		publisher TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS citations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id INTEGER NOT NULL REFERENCES sources(id),
		detail TEXT NOT NULL DEFAULT '',
		type INTEGER NOT NULL,
		record_id INTEGER NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_citations_record ON citations(type, record_id, sort_order);

	-- Users allowed to edit. An empty table lets every signed-on user edit.
	CREATE TABLE IF NOT EXISTS editors (
		user_name TEXT PRIMARY KEY,
		can_edit INTEGER NOT NULL DEFAULT 1
	);

	-- Audit log (tracks all write actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		target TEXT,
		user_name TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_target ON audit_log(target);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.q.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// LogAction logs an action to the audit log. A string "user" detail is
// also stored in its own column.
func (r *Repository) LogAction(ctx context.Context, action string, target string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var targetStr, userName sql.NullString
	if target != "" {
		targetStr = sql.NullString{String: target, Valid: true}
	}
	if u, ok := details["user"].(string); ok && u != "" {
		userName = sql.NullString{String: u, Valid: true}
	}

	query := `INSERT INTO audit_log (action, target, user_name, details) VALUES (?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query, action, targetStr, userName, detailsJSON)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a specific target.
func (r *Repository) FindAuditLog(ctx context.Context, target string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, target, user_name, details, created_at
		FROM audit_log
		WHERE target = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.queryAuditLog(ctx, query, target)
}

// FindAuditLogByAction finds audit log entries by action type.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, action, target, user_name, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	// Use limit parameter as capacity hint if available
	var entries []entities.AuditEntry
	if len(args) > 0 {
		if limit, ok := args[len(args)-1].(int); ok && limit > 0 {
			entries = make([]entities.AuditEntry, 0, limit)
		}
	}

	for rows.Next() {
		var entry entities.AuditEntry
		var target, userName, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&target,
			&userName,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.Target = target.String
		entry.UserName = userName.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
