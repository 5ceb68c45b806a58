package relfs

import (
	"context"
	"fmt"
	"time"
)

// ExportedObject is one path's fully concatenated byte content, as
// produced by ExportGitObjects.
type ExportedObject struct {
	Path string
	Data []byte
}

// ExportGitObjects yields a deterministic, path-ordered sequence of
// (path, bytes) entries for every non-directory row whose path begins
// with ".git/", per spec.md §4.10. The ordering is explicit in the SQL
// scan: relying on index order alone would not guarantee it (spec.md
// §9).
func (s *Store) ExportGitObjects(ctx context.Context) (_ []ExportedObject, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("export_git_objects", time.Since(start), err) }()

	const q = `SELECT path, data FROM git_objects
		WHERE is_dir = 0 AND path LIKE '.git/%'
		ORDER BY path ASC, chunk_index ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("scan git objects: %w", err)
	}
	defer rows.Close()

	var out []ExportedObject
	var current *ExportedObject
	for rows.Next() {
		var path string
		var raw any
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("scan exported row: %w", err)
		}
		decoded, err := decodeChunkData(raw)
		if err != nil {
			return nil, fmt.Errorf("decode exported chunk for %q: %w", path, err)
		}

		if current == nil || current.Path != path {
			if current != nil {
				out = append(out, *current)
			}
			current = &ExportedObject{Path: path}
		}
		current.Data = append(current.Data, decoded...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate git objects: %w", err)
	}
	if current != nil {
		out = append(out, *current)
	}

	return out, nil
}
