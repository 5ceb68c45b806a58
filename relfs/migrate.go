package relfs

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// schemaState is the result of inspecting the git_objects table's
// column list, per spec.md §4.2.
type schemaState int

const (
	schemaAbsent schemaState = iota
	schemaV1
	schemaV2
)

// inspectSchema implements the three-way detection of spec.md §4.2:
// the table may be absent, present without a chunk_index column (v1),
// or present with one (v2).
func inspectSchema(ctx context.Context, db *sql.DB) (schemaState, error) {
	rows, err := db.QueryContext(ctx, `PRAGMA table_info(git_objects)`)
	if err != nil {
		return schemaAbsent, fmt.Errorf("inspect git_objects schema: %w", err)
	}
	defer rows.Close()

	hasChunkIndex := false
	columnCount := 0
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return schemaAbsent, fmt.Errorf("scan table_info row: %w", err)
		}
		columnCount++
		if name == "chunk_index" {
			hasChunkIndex = true
		}
	}
	if err := rows.Err(); err != nil {
		return schemaAbsent, fmt.Errorf("iterate table_info rows: %w", err)
	}

	if columnCount == 0 {
		return schemaAbsent, nil
	}
	if !hasChunkIndex {
		return schemaV1, nil
	}
	return schemaV2, nil
}

// init runs the schema detection and migration procedure of spec.md
// §4.2 to completion, leaving git_objects in v2 shape with the root
// directory row present. It must be called once, before any other
// Store method, per spec.md §3.5.
func (s *Store) init(ctx context.Context) error {
	state, err := inspectSchema(ctx, s.db)
	if err != nil {
		return err
	}

	if state == schemaV1 {
		s.logger.Info("detected legacy schema, migrating in place", "table", "git_objects")
		start := time.Now()
		if err := s.migrateV1ToV2(ctx); err != nil {
			return fmt.Errorf("migrate v1 schema: %w", err)
		}
		s.metrics.observeMigration(time.Since(start))
		s.logger.Info("legacy schema migration complete", "duration", time.Since(start))
	}

	// Bootstrap (or confirm) the v2 schema. This is always safe to run:
	// the DDL is IF NOT EXISTS and the root row insert is INSERT OR
	// IGNORE, so it is a no-op against a table already in v2 shape
	// (whether that shape pre-existed or was just produced by the
	// migration above).
	goose.SetBaseFS(embeddedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("bootstrap v2 schema: %w", err)
	}

	return nil
}

// migrateV1ToV2 implements spec.md §4.2 case 2: copy every v1 row into
// a v2-shaped shadow table (preserving `data` byte-for-byte, resetting
// `size` to 0), drop the original, rename the shadow into place, and
// recreate the indexes and root row. It runs inside one transaction so
// the migration is atomic under the store's write semantics.
func (s *Store) migrateV1ToV2(ctx context.Context) error {
	shadow := "git_objects_v2_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer tx.Rollback()

	ddl := fmt.Sprintf(`CREATE TABLE %s (
		path        TEXT    NOT NULL,
		chunk_index INTEGER NOT NULL,
		parent_path TEXT    NOT NULL DEFAULT '',
		data        BLOB,
		is_dir      INTEGER NOT NULL DEFAULT 0,
		size        INTEGER NOT NULL DEFAULT 0,
		mtime       INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (path, chunk_index)
	)`, shadow)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create shadow table: %w", err)
	}

	copyStmt := fmt.Sprintf(`INSERT INTO %s (path, chunk_index, parent_path, data, is_dir, size, mtime)
		SELECT path, 0, parent_path, data, is_dir, 0, mtime FROM git_objects`, shadow)
	if _, err := tx.ExecContext(ctx, copyStmt); err != nil {
		return fmt.Errorf("copy legacy rows: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE git_objects`); err != nil {
		return fmt.Errorf("drop legacy table: %w", err)
	}

	renameStmt := fmt.Sprintf(`ALTER TABLE %s RENAME TO git_objects`, shadow)
	if _, err := tx.ExecContext(ctx, renameStmt); err != nil {
		return fmt.Errorf("rename shadow table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_git_objects_parent ON git_objects (parent_path, path)`); err != nil {
		return fmt.Errorf("create parent index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_git_objects_is_dir ON git_objects (is_dir, path)`); err != nil {
		return fmt.Errorf("create is_dir index: %w", err)
	}

	now := time.Now().UnixMilli()
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO git_objects (path, chunk_index, parent_path, data, is_dir, size, mtime)
		VALUES ('', 0, '', NULL, 1, 0, ?)`, now); err != nil {
		return fmt.Errorf("insert root row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
