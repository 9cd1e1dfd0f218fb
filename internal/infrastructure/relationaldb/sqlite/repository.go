// Package sqlite provides a SQLite implementation of the GraphStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/thodel/outremer/internal/domain/entities"
	"github.com/thodel/outremer/internal/infrastructure/config"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.GraphStore using SQLite. The unified entity
// document is stored as JSON alongside the queryable columns, so the store
// round-trips the full record without mirroring every nested field into
// the schema.
type Repository struct {
	db   *sql.DB
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
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Unified entities (one row per canonical person)
	CREATE TABLE IF NOT EXISTS unified_entities (
		id TEXT PRIMARY KEY,
		preferred_label TEXT NOT NULL,
		needs_review INTEGER NOT NULL DEFAULT 0,
		document TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_unified_label ON unified_entities(preferred_label);
	CREATE INDEX IF NOT EXISTS idx_unified_review ON unified_entities(needs_review);

	-- Audit log (tracks merge runs and entity writes)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		entity_id TEXT,
		details TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

const upsertEntitySQL = `
	INSERT INTO unified_entities (id, preferred_label, needs_review, document, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		preferred_label = excluded.preferred_label,
		needs_review = excluded.needs_review,
		document = excluded.document,
		updated_at = excluded.updated_at`

// SaveEntity saves or replaces a unified entity by canonical id.
func (r *Repository) SaveEntity(ctx context.Context, entity *entities.UnifiedEntity) error {
	doc, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshaling entity %s: %w", entity.ID, err)
	}

	_, err = r.db.ExecContext(ctx, upsertEntitySQL,
		entity.ID, entity.PreferredLabel, boolToInt(entity.NeedsReview()), string(doc), timeNow().UTC())
	if err != nil {
		return fmt.Errorf("saving entity %s: %w", entity.ID, err)
	}
	return nil
}

// SaveBatch saves multiple entities in one transaction.
func (r *Repository) SaveBatch(ctx context.Context, ents []*entities.UnifiedEntity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertEntitySQL)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := timeNow().UTC()
	for _, entity := range ents {
		doc, err := json.Marshal(entity)
		if err != nil {
			return fmt.Errorf("marshaling entity %s: %w", entity.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			entity.ID, entity.PreferredLabel, boolToInt(entity.NeedsReview()), string(doc), now); err != nil {
			return fmt.Errorf("saving entity %s: %w", entity.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// FindEntity retrieves an entity by canonical id. Returns nil, nil when the
// id is unknown.
func (r *Repository) FindEntity(ctx context.Context, id string) (*entities.UnifiedEntity, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM unified_entities WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying entity %s: %w", id, err)
	}

	var entity entities.UnifiedEntity
	if err := json.Unmarshal([]byte(doc), &entity); err != nil {
		return nil, fmt.Errorf("decoding entity %s: %w", id, err)
	}
	return &entity, nil
}

// CountEntities returns the number of stored entities.
func (r *Repository) CountEntities(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM unified_entities").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return n, nil
}

// CountFlagged returns the number of entities flagged for review.
func (r *Repository) CountFlagged(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM unified_entities WHERE needs_review = 1").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting flagged entities: %w", err)
	}
	return n, nil
}

// LogAction appends an entry to the audit log.
func (r *Repository) LogAction(ctx context.Context, action, entityID string, details map[string]any) error {
	var detailsJSON string
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling audit details: %w", err)
		}
		detailsJSON = string(data)
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_log (action, entity_id, details, created_at) VALUES (?, ?, ?, ?)",
		action, entityID, detailsJSON, timeNow().UTC())
	if err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
