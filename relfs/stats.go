package relfs

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// LargestObject names the path with the most stored bytes and that
// byte count. StorageStats.LargestObject is nil if the store holds no
// files.
type LargestObject struct {
	Path  string
	Bytes int64
}

// StorageStats summarizes the store's file population, per spec.md
// §4.11: total_objects, total_bytes (legacy base64 text counted by
// character length, not decoded length, per spec.md §9), and the
// largest single object by stored length.
type StorageStats struct {
	TotalObjects  int64
	TotalBytes    int64
	LargestObject *LargestObject
}

// StorageStats computes the current StorageStats by scanning every
// non-directory row.
func (s *Store) StorageStats(ctx context.Context) (_ StorageStats, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("storage_stats", time.Since(start), err) }()

	const q = `SELECT path, data FROM git_objects WHERE is_dir = 0 ORDER BY path ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return StorageStats{}, fmt.Errorf("scan objects for stats: %w", err)
	}
	defer rows.Close()

	lengths := make(map[string]int64)
	order := make([]string, 0)
	for rows.Next() {
		var path string
		var raw any
		if err := rows.Scan(&path, &raw); err != nil {
			return StorageStats{}, fmt.Errorf("scan stats row: %w", err)
		}
		if _, seen := lengths[path]; !seen {
			order = append(order, path)
		}
		lengths[path] += rawDataLen(raw)
	}
	if err := rows.Err(); err != nil {
		return StorageStats{}, fmt.Errorf("iterate stats rows: %w", err)
	}

	stats := StorageStats{TotalObjects: int64(len(order))}
	var largest *LargestObject
	for _, path := range order {
		n := lengths[path]
		stats.TotalBytes += n
		if largest == nil || n > largest.Bytes {
			largest = &LargestObject{Path: path, Bytes: n}
		}
	}
	stats.LargestObject = largest

	s.logger.Info("storage stats",
		"total_objects", stats.TotalObjects,
		"total_bytes", humanize.Bytes(uint64(stats.TotalBytes)),
	)

	return stats, nil
}
