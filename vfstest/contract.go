// Package vfstest holds a black-box contract suite exercised against
// both gitvfs backings, so EphemeralFS and PersistentFS are tested
// against the same expectations (the ephemeral backing serves as the
// oracle for the persistent one). The one difference is directory
// handling: a backing with ImplicitDirs set has no-op MakeDir and
// RemoveDir, and the directory tests expect that. Modeled on go-git's
// storage/test conformance suites, which run one Storer contract
// against every concrete backing.
package vfstest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/xoderx/gitvfs/vfs"
)

// Factory builds a fresh, empty Filesystem for one test. teardown is
// called after the test completes and may be nil.
type Factory func(t *testing.T) (fs vfs.Filesystem, teardown func())

// ContractSuite is the backing-agnostic behavior every vfs.Filesystem
// implementation must satisfy.
type ContractSuite struct {
	suite.Suite
	New Factory
	// ImplicitDirs marks a backing whose directories exist only as
	// prefixes of stored paths (EphemeralFS): MakeDir and RemoveDir are
	// no-ops, so directory tests create a directory by writing a file
	// beneath it and expect RemoveDir to return nil.
	ImplicitDirs bool

	fs  vfs.Filesystem
	ctx context.Context
}

func (s *ContractSuite) SetupTest() {
	fs, teardown := s.New(s.T())
	s.fs = fs
	s.ctx = context.Background()
	if teardown != nil {
		s.T().Cleanup(teardown)
	}
}

func (s *ContractSuite) TestWriteThenReadRoundTrips() {
	s.Require().NoError(s.fs.WriteFile(s.ctx, "a/b/c.txt", []byte("hello")))

	data, err := s.fs.ReadFile(s.ctx, "a/b/c.txt", vfs.ReadFileOptions{Encoding: vfs.EncodingUTF8})
	s.Require().NoError(err)
	s.Equal("hello", string(data))

	info, err := s.fs.Stat(s.ctx, "a/b/c.txt")
	s.Require().NoError(err)
	s.EqualValues(5, info.Size)
}

func (s *ContractSuite) TestWriteCreatesAncestorDirectories() {
	s.Require().NoError(s.fs.WriteFile(s.ctx, "a/b/c.txt", []byte("hello")))

	root, err := s.fs.ReadDir(s.ctx, "")
	s.Require().NoError(err)
	s.Contains(root, "a")

	aChildren, err := s.fs.ReadDir(s.ctx, "a")
	s.Require().NoError(err)
	s.Contains(aChildren, "b")

	bChildren, err := s.fs.ReadDir(s.ctx, "a/b")
	s.Require().NoError(err)
	s.Contains(bChildren, "c.txt")

	aInfo, err := s.fs.Stat(s.ctx, "a")
	s.Require().NoError(err)
	s.True(aInfo.IsDir())
}

func (s *ContractSuite) TestReadMissingFileIsENOENT() {
	_, err := s.fs.ReadFile(s.ctx, "nope.txt", vfs.ReadFileOptions{})
	s.requireCode(err, vfs.ENOENT)
}

func (s *ContractSuite) TestReadDirectoryAsFileIsEISDIR() {
	s.Require().NoError(s.fs.WriteFile(s.ctx, "a/b.txt", []byte("x")))
	_, err := s.fs.ReadFile(s.ctx, "a", vfs.ReadFileOptions{})
	s.requireCode(err, vfs.EISDIR)
}

func (s *ContractSuite) TestRewriteReplacesContent() {
	s.Require().NoError(s.fs.WriteFile(s.ctx, "f", []byte("first")))
	s.Require().NoError(s.fs.WriteFile(s.ctx, "f", []byte("second, and longer")))

	data, err := s.fs.ReadFile(s.ctx, "f", vfs.ReadFileOptions{Encoding: vfs.EncodingUTF8})
	s.Require().NoError(err)
	s.Equal("second, and longer", string(data))
}

func (s *ContractSuite) TestUnlinkOnDirectoryIsEPERM() {
	if s.ImplicitDirs {
		s.Require().NoError(s.fs.WriteFile(s.ctx, "d/f", []byte("1")))
	} else {
		s.Require().NoError(s.fs.MakeDir(s.ctx, "d"))
	}
	err := s.fs.Unlink(s.ctx, "d")
	s.requireCode(err, vfs.EPERM)
}

func (s *ContractSuite) TestRmdirTwiceIsENOENT() {
	s.Require().NoError(s.fs.MakeDir(s.ctx, "x"))
	s.Require().NoError(s.fs.RemoveDir(s.ctx, "x"))

	err := s.fs.RemoveDir(s.ctx, "x")
	if s.ImplicitDirs {
		s.Require().NoError(err)
		return
	}
	s.requireCode(err, vfs.ENOENT)
}

func (s *ContractSuite) TestRmdirNonEmptyIsENOTEMPTY() {
	s.Require().NoError(s.fs.WriteFile(s.ctx, "d/f", []byte("1")))

	err := s.fs.RemoveDir(s.ctx, "d")
	if s.ImplicitDirs {
		s.Require().NoError(err)
	} else {
		s.requireCode(err, vfs.ENOTEMPTY)
	}

	s.Require().NoError(s.fs.Unlink(s.ctx, "d/f"))
	s.Require().NoError(s.fs.RemoveDir(s.ctx, "d"))
}

func (s *ContractSuite) TestRenameMovesContentAndRemovesSource() {
	s.Require().NoError(s.fs.WriteFile(s.ctx, "a", []byte("payload")))
	s.Require().NoError(s.fs.Rename(s.ctx, "a", "b"))

	data, err := s.fs.ReadFile(s.ctx, "b", vfs.ReadFileOptions{})
	s.Require().NoError(err)
	s.Equal("payload", string(data))

	_, err = s.fs.ReadFile(s.ctx, "a", vfs.ReadFileOptions{})
	s.requireCode(err, vfs.ENOENT)
}

func (s *ContractSuite) TestSymlinkRoundTrips() {
	s.Require().NoError(s.fs.Symlink(s.ctx, "HEAD", "refs/head-link"))

	target, err := s.fs.ReadLink(s.ctx, "refs/head-link")
	s.Require().NoError(err)
	s.Equal("HEAD", target)

	data, err := s.fs.ReadFile(s.ctx, "refs/head-link", vfs.ReadFileOptions{Encoding: vfs.EncodingUTF8})
	s.Require().NoError(err)
	s.Equal("HEAD", string(data))
}

func (s *ContractSuite) TestExistsReflectsState() {
	ok, err := s.fs.Exists(s.ctx, "thing")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.fs.WriteFile(s.ctx, "thing", []byte("x")))

	ok, err = s.fs.Exists(s.ctx, "thing")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *ContractSuite) requireCode(err error, want vfs.Code) {
	s.Require().Error(err)
	code, ok := vfs.CodeOf(err)
	s.True(ok, "error %v carries no vfs.Code", err)
	s.Equal(want, code)
}
