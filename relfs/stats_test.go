package relfs_test

import (
	"context"
	"testing"
)

func TestStorageStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.WriteFile(ctx, "a.txt", []byte("12345")); err != nil {
		t.Fatalf("WriteFile(a.txt) = %v", err)
	}
	if err := s.WriteFile(ctx, "b.txt", []byte("1234567890")); err != nil {
		t.Fatalf("WriteFile(b.txt) = %v", err)
	}
	if err := s.MakeDir(ctx, "dir"); err != nil {
		t.Fatalf("MakeDir(dir) = %v", err)
	}

	stats, err := s.StorageStats(ctx)
	if err != nil {
		t.Fatalf("StorageStats() = %v", err)
	}

	if stats.TotalObjects != 2 {
		t.Fatalf("TotalObjects = %d, want 2 (directories excluded)", stats.TotalObjects)
	}
	if stats.TotalBytes != 15 {
		t.Fatalf("TotalBytes = %d, want 15", stats.TotalBytes)
	}
	if stats.LargestObject == nil || stats.LargestObject.Path != "b.txt" || stats.LargestObject.Bytes != 10 {
		t.Fatalf("LargestObject = %+v, want {b.txt 10}", stats.LargestObject)
	}
}

func TestStorageStatsEmpty(t *testing.T) {
	s := openTestStore(t)
	stats, err := s.StorageStats(context.Background())
	if err != nil {
		t.Fatalf("StorageStats() = %v", err)
	}
	if stats.TotalObjects != 0 || stats.LargestObject != nil {
		t.Fatalf("stats on an empty store = %+v, want zero value", stats)
	}
}
