package relfs

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// openRawDB opens a database without running Store's schema bootstrap,
// so tests can seed a legacy v1 table first.
func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.sqlite")
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInspectSchemaAbsent(t *testing.T) {
	db := openRawDB(t)
	state, err := inspectSchema(context.Background(), db)
	if err != nil {
		t.Fatalf("inspectSchema() = %v", err)
	}
	if state != schemaAbsent {
		t.Fatalf("state = %v, want schemaAbsent", state)
	}
}

func TestMigrateV1ToV2PreservesLegacyData(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	const v1DDL = `CREATE TABLE git_objects (
		path        TEXT NOT NULL PRIMARY KEY,
		parent_path TEXT NOT NULL DEFAULT '',
		data        TEXT,
		is_dir      INTEGER NOT NULL DEFAULT 0,
		mtime       INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := db.ExecContext(ctx, v1DDL); err != nil {
		t.Fatalf("create v1 table: %v", err)
	}

	const seed = `INSERT INTO git_objects (path, parent_path, data, is_dir, mtime) VALUES (?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, seed, "readme", "", "aGVsbG8=", 0, 1000); err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	state, err := inspectSchema(ctx, db)
	if err != nil {
		t.Fatalf("inspectSchema() = %v", err)
	}
	if state != schemaV1 {
		t.Fatalf("state = %v, want schemaV1", state)
	}

	s := &Store{db: db, logger: slog.Default(), metrics: newStoreMetrics()}
	if err := s.migrateV1ToV2(ctx); err != nil {
		t.Fatalf("migrateV1ToV2() = %v", err)
	}

	state, err = inspectSchema(ctx, db)
	if err != nil {
		t.Fatalf("inspectSchema() after migration = %v", err)
	}
	if state != schemaV2 {
		t.Fatalf("state after migration = %v, want schemaV2", state)
	}

	var data string
	var chunkIndex, size int64
	const q = `SELECT chunk_index, data, size FROM git_objects WHERE path = 'readme'`
	if err := db.QueryRowContext(ctx, q).Scan(&chunkIndex, &data, &size); err != nil {
		t.Fatalf("read migrated row: %v", err)
	}
	if chunkIndex != 0 {
		t.Fatalf("chunk_index = %d, want 0", chunkIndex)
	}
	if data != "aGVsbG8=" {
		t.Fatalf("data = %q, want the original base64 text unchanged", data)
	}
	if size != 0 {
		t.Fatalf("size = %d, want 0 (reset on migration)", size)
	}

	decoded, err := decodeChunkData(data)
	if err != nil {
		t.Fatalf("decodeChunkData() = %v", err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("decoded legacy data = %q, want %q", decoded, "hello")
	}

	var rootIsDir int
	const rootQ = `SELECT is_dir FROM git_objects WHERE path = ''`
	if err := db.QueryRowContext(ctx, rootQ).Scan(&rootIsDir); err != nil {
		t.Fatalf("read root row: %v", err)
	}
	if rootIsDir != 1 {
		t.Fatalf("root row is_dir = %d, want 1", rootIsDir)
	}
}
