// Package ephemeralfs implements the vfs.Filesystem contract over
// in-process maps. One Filesystem value backs exactly one clone
// operation and is discarded by the caller when the clone finishes; it
// never touches a database. Its structure follows go-git's
// storage/memory.Storage: plain Go maps, no locking, no persistence.
package ephemeralfs

import (
	"context"
	"strings"
	"time"

	"github.com/xoderx/gitvfs/vfs"
	"github.com/xoderx/gitvfs/vpath"
)

// Filesystem is the ephemeral, per-clone backing. The zero value is not
// ready to use; construct one with New.
type Filesystem struct {
	files    map[string][]byte
	symlinks map[string]string
	mtimes   map[string]int64
	now      func() int64
}

// New returns an empty Filesystem ready for a single clone operation.
func New() *Filesystem {
	return &Filesystem{
		files:    make(map[string][]byte),
		symlinks: make(map[string]string),
		mtimes:   make(map[string]int64),
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

var _ vfs.Filesystem = (*Filesystem)(nil)

func (f *Filesystem) touch(path string) int64 {
	ms := f.now()
	f.mtimes[path] = ms
	return ms
}

// hasDescendant reports whether any file or symlink key is strictly
// under path, i.e. path is (at least) an implicit directory.
func (f *Filesystem) hasDescendant(path string) bool {
	prefix := path + "/"
	if path == "" {
		return len(f.files) > 0 || len(f.symlinks) > 0
	}
	for k := range f.files {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	for k := range f.symlinks {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// ReadFile implements vfs.Filesystem. A symlink reads back the target
// string it was created with, the same content write_file would have
// stored for it (spec.md §4.8's ReadFile-returns-target guarantee,
// carried over to EphemeralFS for consistency with PersistentFS).
func (f *Filesystem) ReadFile(_ context.Context, origPath string, opts vfs.ReadFileOptions) ([]byte, error) {
	path := vpath.Normalize(origPath)

	if data, ok := f.files[path]; ok {
		return decodeOpts(data, opts), nil
	}

	if target, ok := f.symlinks[path]; ok {
		return decodeOpts([]byte(target), opts), nil
	}

	if f.hasDescendant(path) {
		return nil, vfs.ErrIsDir("readFile", origPath)
	}
	return nil, vfs.ErrNoEnt("readFile", origPath)
}

func decodeOpts(data []byte, opts vfs.ReadFileOptions) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// WriteFile implements vfs.Filesystem.
func (f *Filesystem) WriteFile(_ context.Context, origPath string, data []byte) error {
	path := vpath.Normalize(origPath)
	if path == "" {
		return errCannotWriteRoot
	}

	if f.hasDescendant(path) {
		return vfs.ErrIsDir("writeFile", origPath)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	f.files[path] = buf
	f.touch(path)
	return nil
}

// Unlink implements vfs.Filesystem.
func (f *Filesystem) Unlink(_ context.Context, origPath string) error {
	path := vpath.Normalize(origPath)

	_, fileOK := f.files[path]
	_, symOK := f.symlinks[path]
	if !fileOK && !symOK {
		if f.hasDescendant(path) {
			return vfs.ErrPerm("unlink", origPath)
		}
		return vfs.ErrNoEnt("unlink", origPath)
	}

	delete(f.files, path)
	delete(f.symlinks, path)
	delete(f.mtimes, path)
	return nil
}

// ReadDir implements vfs.Filesystem.
func (f *Filesystem) ReadDir(_ context.Context, origPath string) ([]string, error) {
	path := vpath.Normalize(origPath)

	if path != "" {
		if _, ok := f.files[path]; ok {
			return nil, vfs.ErrNotDir("readdir", origPath)
		}
		if _, ok := f.symlinks[path]; ok {
			return nil, vfs.ErrNotDir("readdir", origPath)
		}
		if !f.hasDescendant(path) {
			return nil, vfs.ErrNoEnt("readdir", origPath)
		}
	}

	prefix := ""
	if path != "" {
		prefix = path + "/"
	}

	seen := make(map[string]struct{})
	var out []string
	collect := func(k string) {
		if !strings.HasPrefix(k, prefix) {
			return
		}
		rest := k[len(prefix):]
		if rest == "" {
			return
		}
		seg := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seg = rest[:i]
		}
		if _, ok := seen[seg]; !ok {
			seen[seg] = struct{}{}
			out = append(out, seg)
		}
	}
	for k := range f.files {
		collect(k)
	}
	for k := range f.symlinks {
		collect(k)
	}
	return out, nil
}

// MakeDir implements vfs.Filesystem. Directories are implicit; this is
// a no-op (spec.md §4.12).
func (f *Filesystem) MakeDir(context.Context, string) error { return nil }

// RemoveDir implements vfs.Filesystem. No-op, per spec.md §4.12.
func (f *Filesystem) RemoveDir(context.Context, string) error { return nil }

// Chmod implements vfs.Filesystem. No-op, per spec.md §4.12.
func (f *Filesystem) Chmod(context.Context, string, int64) error { return nil }

// Stat implements vfs.Filesystem. Symlinks are followed.
func (f *Filesystem) Stat(_ context.Context, origPath string) (vfs.FileInfo, error) {
	path := vpath.Normalize(origPath)

	if path == "" {
		return vfs.DirInfo("", f.mtimes[""]), nil
	}

	if data, ok := f.files[path]; ok {
		return vfs.FileEntryInfo(vpath.Base(path), int64(len(data)), f.mtimes[path]), nil
	}

	if target, ok := f.symlinks[path]; ok {
		size := int64(0)
		if td, ok2 := f.files[target]; ok2 {
			size = int64(len(td))
		}
		return vfs.FileEntryInfo(vpath.Base(path), size, f.mtimes[path]), nil
	}

	if f.hasDescendant(path) {
		return vfs.DirInfo(vpath.Base(path), f.mtimes[path]), nil
	}

	return vfs.FileInfo{}, vfs.ErrNoEnt("stat", origPath)
}

// Lstat implements vfs.Filesystem. Symlinks are reported as such, not
// followed (spec.md §4.12).
func (f *Filesystem) Lstat(_ context.Context, origPath string) (vfs.FileInfo, error) {
	path := vpath.Normalize(origPath)

	if path == "" {
		return vfs.DirInfo("", f.mtimes[""]), nil
	}

	if _, ok := f.symlinks[path]; ok {
		return vfs.SymlinkInfo(vpath.Base(path), f.mtimes[path]), nil
	}

	if data, ok := f.files[path]; ok {
		return vfs.FileEntryInfo(vpath.Base(path), int64(len(data)), f.mtimes[path]), nil
	}

	if f.hasDescendant(path) {
		return vfs.DirInfo(vpath.Base(path), f.mtimes[path]), nil
	}

	return vfs.FileInfo{}, vfs.ErrNoEnt("lstat", origPath)
}

// Symlink implements vfs.Filesystem. It records the target in the
// symlink map only; it never creates a file entry (spec.md §4.12).
func (f *Filesystem) Symlink(_ context.Context, target, path string) error {
	path = vpath.Normalize(path)
	f.symlinks[path] = target
	f.touch(path)
	return nil
}

// ReadLink implements vfs.Filesystem.
func (f *Filesystem) ReadLink(_ context.Context, origPath string) (string, error) {
	path := vpath.Normalize(origPath)
	target, ok := f.symlinks[path]
	if !ok {
		return "", vfs.ErrNoEnt("readlink", origPath)
	}
	return target, nil
}

// Rename implements vfs.Filesystem. A missing source is a silent
// no-op: this asymmetry with PersistentFS.Rename is preserved on
// purpose (spec.md §9).
func (f *Filesystem) Rename(_ context.Context, oldPath, newPath string) error {
	oldPath = vpath.Normalize(oldPath)
	newPath = vpath.Normalize(newPath)

	data, fileOK := f.files[oldPath]
	target, symOK := f.symlinks[oldPath]
	if !fileOK && !symOK {
		return nil
	}

	mtime, hadMtime := f.mtimes[oldPath]
	if !hadMtime {
		mtime = f.now()
	}

	if fileOK {
		f.files[newPath] = data
		delete(f.files, oldPath)
	}
	if symOK {
		f.symlinks[newPath] = target
		delete(f.symlinks, oldPath)
	}
	f.mtimes[newPath] = mtime
	delete(f.mtimes, oldPath)
	return nil
}

// Exists implements vfs.Filesystem.
func (f *Filesystem) Exists(ctx context.Context, path string) (bool, error) {
	_, err := f.Stat(ctx, path)
	if err == nil {
		return true, nil
	}
	if code, ok := vfs.CodeOf(err); ok && code == vfs.ENOENT {
		return false, nil
	}
	return false, err
}

// WorkingTreeFiles returns every file-map key that is non-empty and
// outside ".git", matching the original clone-time contract used to
// extract a checked-out working tree from the clone scratch space.
func (f *Filesystem) WorkingTreeFiles() []string {
	var out []string
	for k := range f.files {
		if k == "" || k == ".git" || strings.HasPrefix(k, ".git/") {
			continue
		}
		out = append(out, k)
	}
	return out
}

var errCannotWriteRoot = vfsPlainError("cannot write to root")

type vfsPlainError string

func (e vfsPlainError) Error() string { return string(e) }
