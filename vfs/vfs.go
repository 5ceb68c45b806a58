// Package vfs declares the POSIX-shaped filesystem contract shared by
// the ephemeral and persistent backings: the capability set a consuming
// git implementation library binds against, independent of how paths are
// actually stored. It generalizes the narrower Filesystem contract of
// go-git's utils/fs package (Create/Open/Stat/ReadDir/Rename/Join) with
// the directory, symlink, and existence operations this spec requires.
package vfs

import "context"

// Mode constants reported by Stat/Lstat. Permissions are never enforced
// (spec.md Non-goals); these are the fixed values every entry reports.
const (
	ModeDir     = 0o040755
	ModeFile    = 0o100644
	ModeSymlink = 0o120000
)

// Encoding selects how ReadFile decodes the concatenated chunk bytes.
type Encoding int

const (
	// EncodingBinary returns the raw byte sequence.
	EncodingBinary Encoding = iota
	// EncodingUTF8 returns the UTF-8 decoding of the byte sequence.
	EncodingUTF8
)

// ReadFileOptions controls ReadFile's return shape.
type ReadFileOptions struct {
	Encoding Encoding
}

// FileInfo is the stat result returned by Stat and Lstat. It mirrors the
// shape a consuming git library expects from Node's fs.Stats: a handful
// of numeric fields plus type predicates, none of them backed by real
// POSIX metadata.
type FileInfo struct {
	Name    string
	Size    int64
	Mode    int64
	MtimeMs int64
	// Dev, Ino, Uid, Gid are always zero; this filesystem never models
	// them (spec.md Non-goals: true POSIX permissions).
	Dev, Ino, Uid, Gid int64
	isDir              bool
	isSymlink          bool
}

// IsDir reports whether the entry is a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }

// IsFile reports whether the entry is a regular file.
func (fi FileInfo) IsFile() bool { return !fi.isDir && !fi.isSymlink }

// IsSymlink reports whether the entry is a symbolic link.
func (fi FileInfo) IsSymlink() bool { return fi.isSymlink }

// DirInfo builds a directory FileInfo for name.
func DirInfo(name string, mtimeMs int64) FileInfo {
	return FileInfo{Name: name, Size: 0, Mode: ModeDir, MtimeMs: mtimeMs, isDir: true}
}

// FileEntryInfo builds a regular-file FileInfo for name.
func FileEntryInfo(name string, size, mtimeMs int64) FileInfo {
	return FileInfo{Name: name, Size: size, Mode: ModeFile, MtimeMs: mtimeMs}
}

// SymlinkInfo builds a symbolic-link FileInfo for name (used only by
// EphemeralFS's Lstat; PersistentFS never reports the symlink bit, per
// spec.md §4.8).
func SymlinkInfo(name string, mtimeMs int64) FileInfo {
	return FileInfo{Name: name, Size: 0, Mode: ModeSymlink, MtimeMs: mtimeMs, isSymlink: true}
}

// Filesystem is the capability set spec.md §2/§6.1 requires of both
// backings. Every method takes a context so the persistent backing's
// statement executor has somewhere to hang cancellation/deadlines, even
// though spec.md §5 forbids acting on a cancellation mid-operation.
type Filesystem interface {
	ReadFile(ctx context.Context, path string, opts ReadFileOptions) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	Unlink(ctx context.Context, path string) error
	ReadDir(ctx context.Context, path string) ([]string, error)
	MakeDir(ctx context.Context, path string) error
	RemoveDir(ctx context.Context, path string) error
	Stat(ctx context.Context, path string) (FileInfo, error)
	Lstat(ctx context.Context, path string) (FileInfo, error)
	Symlink(ctx context.Context, target, path string) error
	ReadLink(ctx context.Context, path string) (string, error)
	Chmod(ctx context.Context, path string, mode int64) error
	Rename(ctx context.Context, oldPath, newPath string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Promises returns fs itself. The consuming git library expects a
// "promises" surface equivalent to the synchronous one it was handed;
// since every method here already returns through a normal Go call
// (there is no separate callback-based surface to alias away from), the
// self-alias is the whole of the contract. See spec.md §9 ("Ownership").
func Promises(fs Filesystem) Filesystem { return fs }
