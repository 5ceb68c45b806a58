package ephemeralfs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/xoderx/gitvfs/ephemeralfs"
	"github.com/xoderx/gitvfs/vfs"
	"github.com/xoderx/gitvfs/vfstest"
)

func TestContract(t *testing.T) {
	suite.Run(t, &vfstest.ContractSuite{
		New: func(t *testing.T) (vfs.Filesystem, func()) {
			return ephemeralfs.New(), nil
		},
		ImplicitDirs: true,
	})
}

func TestRenameMissingSourceIsNoOp(t *testing.T) {
	fs := ephemeralfs.New()
	if err := fs.Rename(context.Background(), "missing", "also-missing"); err != nil {
		t.Fatalf("Rename() on a missing source returned %v, want nil", err)
	}
}

func TestLstatReportsSymlinkBit(t *testing.T) {
	fs := ephemeralfs.New()
	ctx := context.Background()

	if err := fs.Symlink(ctx, "target", "link"); err != nil {
		t.Fatalf("Symlink() = %v", err)
	}

	info, err := fs.Lstat(ctx, "link")
	if err != nil {
		t.Fatalf("Lstat() = %v", err)
	}
	if !info.IsSymlink() {
		t.Fatal("Lstat() on a symlink did not report the symlink bit")
	}

	statInfo, err := fs.Stat(ctx, "link")
	if err != nil {
		t.Fatalf("Stat() = %v", err)
	}
	if statInfo.IsSymlink() {
		t.Fatal("Stat() should follow the symlink, not report it as one")
	}
}

func TestWorkingTreeFilesExcludesGitDir(t *testing.T) {
	fs := ephemeralfs.New()
	ctx := context.Background()

	_ = fs.WriteFile(ctx, "README.md", []byte("hi"))
	_ = fs.WriteFile(ctx, ".git/HEAD", []byte("ref: refs/heads/main"))

	files := fs.WorkingTreeFiles()
	if len(files) != 1 || files[0] != "README.md" {
		t.Fatalf("WorkingTreeFiles() = %v, want [README.md]", files)
	}
}

func TestWriteToRootIsRejected(t *testing.T) {
	fs := ephemeralfs.New()
	if err := fs.WriteFile(context.Background(), "", []byte("x")); err == nil {
		t.Fatal("WriteFile(\"\") succeeded, want an error")
	}
}
