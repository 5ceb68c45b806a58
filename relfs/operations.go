package relfs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xoderx/gitvfs/vfs"
	"github.com/xoderx/gitvfs/vpath"
)

var _ vfs.Filesystem = (*Store)(nil)

// plainError reports a precondition violation that carries no vfs.Code,
// per spec.md §7.
type plainError string

func (e plainError) Error() string { return string(e) }

var (
	errCannotWriteRoot  = plainError("cannot write to root")
	errCannotRemoveRoot = plainError("cannot remove root")
)

// chunk0Row is the metadata carried by a path's chunk-0 row.
type chunk0Row struct {
	isDir      bool
	parentPath string
	data       any
	size       int64
	mtime      int64
}

func (s *Store) readChunk0(ctx context.Context, path string) (chunk0Row, bool, error) {
	const q = `SELECT is_dir, parent_path, data, size, mtime FROM git_objects WHERE path = ? AND chunk_index = 0`
	var row chunk0Row
	var isDir int
	err := s.db.QueryRowContext(ctx, q, path).Scan(&isDir, &row.parentPath, &row.data, &row.size, &row.mtime)
	if errors.Is(err, sql.ErrNoRows) {
		return chunk0Row{}, false, nil
	}
	if err != nil {
		return chunk0Row{}, false, fmt.Errorf("read chunk 0 for %q: %w", path, err)
	}
	row.isDir = isDir != 0
	return row, true, nil
}

func (s *Store) insertDirRow(ctx context.Context, path, parentPath string, mtime int64) error {
	const ins = `INSERT INTO git_objects (path, chunk_index, parent_path, data, is_dir, size, mtime)
		VALUES (?, 0, ?, NULL, 1, 0, ?)
		ON CONFLICT (path, chunk_index) DO NOTHING`
	_, err := s.db.ExecContext(ctx, ins, path, parentPath, mtime)
	if err != nil {
		return fmt.Errorf("insert directory row for %q: %w", path, err)
	}
	return nil
}

// ReadFile implements vfs.Filesystem, per spec.md §4.3.
func (s *Store) ReadFile(ctx context.Context, origPath string, opts vfs.ReadFileOptions) (_ []byte, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("read_file", time.Since(start), err) }()

	path := vpath.Normalize(origPath)

	row, ok, err := s.readChunk0(ctx, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, vfs.ErrNoEnt("readFile", origPath)
	}
	if row.isDir {
		return nil, vfs.ErrIsDir("readFile", origPath)
	}

	const q = `SELECT data FROM git_objects WHERE path = ? ORDER BY chunk_index ASC`
	rows, err := s.db.QueryContext(ctx, q, path)
	if err != nil {
		return nil, fmt.Errorf("read chunks for %q: %w", path, err)
	}
	defer rows.Close()

	var buf []byte
	for rows.Next() {
		var raw any
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan chunk for %q: %w", path, err)
		}
		decoded, err := decodeChunkData(raw)
		if err != nil {
			return nil, fmt.Errorf("decode chunk for %q: %w", path, err)
		}
		buf = append(buf, decoded...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks for %q: %w", path, err)
	}

	return buf, nil
}

// WriteFile implements vfs.Filesystem, per spec.md §4.4.
func (s *Store) WriteFile(ctx context.Context, origPath string, data []byte) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("write_file", time.Since(start), err) }()

	path := vpath.Normalize(origPath)
	if path == "" {
		return errCannotWriteRoot
	}

	row, ok, err := s.readChunk0(ctx, path)
	if err != nil {
		return err
	}
	if ok && row.isDir {
		return vfs.ErrIsDir("writeFile", origPath)
	}

	now := time.Now().UnixMilli()
	parts := vpath.Split(path)
	for i := 1; i < len(parts); i++ {
		dirPath := strings.Join(parts[:i], "/")
		parentPath := strings.Join(parts[:i-1], "/")
		if err := s.insertDirRow(ctx, dirPath, parentPath, now); err != nil {
			return err
		}
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM git_objects WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete existing chunks for %q: %w", path, err)
	}

	parent := vpath.Dir(path)
	total := len(data)
	count := chunkCount(total)
	const ins = `INSERT INTO git_objects (path, chunk_index, parent_path, data, is_dir, size, mtime) VALUES (?, ?, ?, ?, 0, ?, ?)`
	for i := 0; i < count; i++ {
		slice := chunkSlice(data, i)
		chunkParent := ""
		size := int64(0)
		if i == 0 {
			chunkParent = parent
			size = int64(total)
		}
		if _, err := s.db.ExecContext(ctx, ins, path, i, chunkParent, slice, size, now); err != nil {
			return fmt.Errorf("insert chunk %d for %q: %w", i, path, err)
		}
	}
	return nil
}

// Unlink implements vfs.Filesystem, per spec.md §4.5.
func (s *Store) Unlink(ctx context.Context, origPath string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("unlink", time.Since(start), err) }()

	path := vpath.Normalize(origPath)

	row, ok, err := s.readChunk0(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return vfs.ErrNoEnt("unlink", origPath)
	}
	if row.isDir {
		return vfs.ErrPerm("unlink", origPath)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM git_objects WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete chunks for %q: %w", path, err)
	}
	return nil
}

// RemoveDir implements vfs.Filesystem, per spec.md §4.5.
func (s *Store) RemoveDir(ctx context.Context, origPath string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("rmdir", time.Since(start), err) }()

	path := vpath.Normalize(origPath)
	if path == "" {
		return errCannotRemoveRoot
	}

	row, ok, err := s.readChunk0(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return vfs.ErrNoEnt("rmdir", origPath)
	}
	if !row.isDir {
		return vfs.ErrNotDir("rmdir", origPath)
	}

	var childExists int
	const probe = `SELECT 1 FROM git_objects WHERE parent_path = ? AND chunk_index = 0 LIMIT 1`
	err = s.db.QueryRowContext(ctx, probe, path).Scan(&childExists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("probe children of %q: %w", path, err)
	}
	if err == nil {
		return vfs.ErrNotEmpty("rmdir", origPath)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM git_objects WHERE path = ? AND chunk_index = 0`, path); err != nil {
		return fmt.Errorf("delete directory row for %q: %w", path, err)
	}
	return nil
}

// ReadDir implements vfs.Filesystem, per spec.md §4.6.
func (s *Store) ReadDir(ctx context.Context, origPath string) (_ []string, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("read_dir", time.Since(start), err) }()

	path := vpath.Normalize(origPath)

	if path != "" {
		row, ok, err := s.readChunk0(ctx, path)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, vfs.ErrNoEnt("readdir", origPath)
		}
		if !row.isDir {
			return nil, vfs.ErrNotDir("readdir", origPath)
		}
	}

	const q = `SELECT path FROM git_objects WHERE parent_path = ? AND chunk_index = 0 AND path != ?`
	rows, err := s.db.QueryContext(ctx, q, path, path)
	if err != nil {
		return nil, fmt.Errorf("list children of %q: %w", path, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var childPath string
		if err := rows.Scan(&childPath); err != nil {
			return nil, fmt.Errorf("scan child of %q: %w", path, err)
		}
		out = append(out, vpath.Base(childPath))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children of %q: %w", path, err)
	}
	return out, nil
}

// MakeDir implements vfs.Filesystem, per spec.md §4.6. It is not
// recursive: only write_file implicitly creates ancestor directories.
func (s *Store) MakeDir(ctx context.Context, origPath string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("mkdir", time.Since(start), err) }()

	path := vpath.Normalize(origPath)
	if path == "" {
		return nil
	}

	parts := vpath.Split(path)
	if len(parts) > 1 {
		parent := strings.Join(parts[:len(parts)-1], "/")
		parentRow, ok, err := s.readChunk0(ctx, parent)
		if err != nil {
			return err
		}
		if !ok || !parentRow.isDir {
			return vfs.ErrNoEnt("mkdir", origPath)
		}
	}

	row, ok, err := s.readChunk0(ctx, path)
	if err != nil {
		return err
	}
	if ok {
		if row.isDir {
			return nil
		}
		return vfs.ErrExist("mkdir", origPath)
	}

	parent := vpath.Dir(path)
	now := time.Now().UnixMilli()
	if err := s.insertDirRow(ctx, path, parent, now); err != nil {
		return err
	}
	return nil
}

// Stat implements vfs.Filesystem, per spec.md §4.3.
func (s *Store) Stat(ctx context.Context, origPath string) (_ vfs.FileInfo, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("stat", time.Since(start), err) }()

	path := vpath.Normalize(origPath)

	if path == "" {
		row, ok, err := s.readChunk0(ctx, "")
		if err != nil {
			return vfs.FileInfo{}, err
		}
		if !ok {
			return vfs.DirInfo("", time.Now().UnixMilli()), nil
		}
		return vfs.DirInfo("", row.mtime), nil
	}

	row, ok, err := s.readChunk0(ctx, path)
	if err != nil {
		return vfs.FileInfo{}, err
	}
	if !ok {
		return vfs.FileInfo{}, vfs.ErrNoEnt("stat", origPath)
	}

	if row.isDir {
		return vfs.DirInfo(vpath.Base(path), row.mtime), nil
	}

	size := row.size
	if size == 0 {
		switch v := row.data.(type) {
		case []byte:
			size = int64(len(v))
		case string:
			size = legacyDecodedLen(v)
		}
	}
	return vfs.FileEntryInfo(vpath.Base(path), size, row.mtime), nil
}

// Lstat implements vfs.Filesystem. PersistentFS never reports the
// symlink bit, so Lstat is identical to Stat (spec.md §4.3).
func (s *Store) Lstat(ctx context.Context, path string) (vfs.FileInfo, error) {
	return s.Stat(ctx, path)
}

// Symlink implements vfs.Filesystem, per spec.md §4.8: the target is
// stored as the regular file contents of path.
func (s *Store) Symlink(ctx context.Context, target, path string) error {
	return s.WriteFile(ctx, path, []byte(target))
}

// ReadLink implements vfs.Filesystem, per spec.md §4.8.
func (s *Store) ReadLink(ctx context.Context, path string) (string, error) {
	data, err := s.ReadFile(ctx, path, vfs.ReadFileOptions{Encoding: vfs.EncodingUTF8})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Chmod implements vfs.Filesystem. No-op, per spec.md §4.9.
func (s *Store) Chmod(context.Context, string, int64) error { return nil }

// Rename implements vfs.Filesystem, per spec.md §4.7.
func (s *Store) Rename(ctx context.Context, origOldPath, origNewPath string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("rename", time.Since(start), err) }()

	oldPath := vpath.Normalize(origOldPath)
	newPath := vpath.Normalize(origNewPath)

	const q = `SELECT chunk_index, parent_path, data, is_dir, size, mtime FROM git_objects WHERE path = ? ORDER BY chunk_index ASC`
	rows, err := s.db.QueryContext(ctx, q, oldPath)
	if err != nil {
		return fmt.Errorf("read source rows for %q: %w", oldPath, err)
	}

	type srcRow struct {
		chunkIndex int
		parentPath string
		data       any
		isDir      int
		size       int64
		mtime      int64
	}
	var src []srcRow
	for rows.Next() {
		var r srcRow
		if err := rows.Scan(&r.chunkIndex, &r.parentPath, &r.data, &r.isDir, &r.size, &r.mtime); err != nil {
			rows.Close()
			return fmt.Errorf("scan source row for %q: %w", oldPath, err)
		}
		src = append(src, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate source rows for %q: %w", oldPath, err)
	}
	rows.Close()

	if len(src) == 0 {
		return vfs.ErrNoEnt("rename", origOldPath)
	}

	newParent := vpath.Dir(newPath)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rename tx: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO git_objects (path, chunk_index, parent_path, data, is_dir, size, mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (path, chunk_index) DO UPDATE SET
			parent_path = excluded.parent_path,
			data        = excluded.data,
			is_dir      = excluded.is_dir,
			size        = excluded.size,
			mtime       = excluded.mtime`
	for _, r := range src {
		parentPath := r.parentPath
		if r.chunkIndex == 0 {
			parentPath = newParent
		}
		if _, err := tx.ExecContext(ctx, upsert, newPath, r.chunkIndex, parentPath, r.data, r.isDir, r.size, r.mtime); err != nil {
			return fmt.Errorf("upsert renamed chunk %d for %q: %w", r.chunkIndex, newPath, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM git_objects WHERE path = ?`, oldPath); err != nil {
		return fmt.Errorf("delete source rows for %q: %w", oldPath, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rename: %w", err)
	}
	return nil
}

// Exists implements vfs.Filesystem, per spec.md §4.3.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.Stat(ctx, path)
	if err == nil {
		return true, nil
	}
	if code, ok := vfs.CodeOf(err); ok && code == vfs.ENOENT {
		return false, nil
	}
	return false, err
}
