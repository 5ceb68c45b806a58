package relfs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/xoderx/gitvfs/relfs"
	"github.com/xoderx/gitvfs/vfs"
	"github.com/xoderx/gitvfs/vfstest"
)

func openTestStore(t *testing.T) *relfs.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.sqlite")
	s, err := relfs.Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestContract(t *testing.T) {
	suite.Run(t, &vfstest.ContractSuite{
		New: func(t *testing.T) (vfs.Filesystem, func()) {
			return openTestStore(t), nil
		},
	})
}

func TestRenameMissingSourceIsENOENT(t *testing.T) {
	s := openTestStore(t)
	err := s.Rename(context.Background(), "missing", "also-missing")
	if code, ok := vfs.CodeOf(err); !ok || code != vfs.ENOENT {
		t.Fatalf("Rename() on a missing source = %v, want ENOENT", err)
	}
}

func TestLargeFileChunking(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	data := make([]byte, 5_000_000)
	for i := range data {
		data[i] = 0xAB
	}

	if err := s.WriteFile(ctx, "big.bin", data); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	got, err := s.ReadFile(ctx, "big.bin", vfs.ReadFileOptions{})
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(data))
	}
	for i, b := range got {
		if b != 0xAB {
			t.Fatalf("byte %d = %x, want 0xAB", i, b)
		}
	}

	info, err := s.Stat(ctx, "big.bin")
	if err != nil {
		t.Fatalf("Stat() = %v", err)
	}
	if info.Size != int64(len(data)) {
		t.Fatalf("Stat().Size = %d, want %d", info.Size, len(data))
	}
}

func TestMkdirRejectsMissingParent(t *testing.T) {
	s := openTestStore(t)
	err := s.MakeDir(context.Background(), "a/b")
	if code, ok := vfs.CodeOf(err); !ok || code != vfs.ENOENT {
		t.Fatalf("MakeDir() with a missing parent = %v, want ENOENT", err)
	}
}

func TestMkdirOnExistingFileIsEEXIST(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.WriteFile(ctx, "x", []byte("1")); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}
	err := s.MakeDir(ctx, "x")
	if code, ok := vfs.CodeOf(err); !ok || code != vfs.EEXIST {
		t.Fatalf("MakeDir() over a file = %v, want EEXIST", err)
	}
}

func TestMkdirOnExistingDirIsNoOp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.MakeDir(ctx, "x"); err != nil {
		t.Fatalf("MakeDir() = %v", err)
	}
	if err := s.MakeDir(ctx, "x"); err != nil {
		t.Fatalf("second MakeDir() = %v, want nil", err)
	}
}
