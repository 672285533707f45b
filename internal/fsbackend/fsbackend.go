/*
 * januskey: provably reversible file operations
 * Copyright © 2026 The Januskey Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package fsbackend is the local filesystem backend of spec §6: the
// only backend contract implemented here, though the capability set is
// designed so a remote (SSH/S3) backend could satisfy the same
// interface out of process.
package fsbackend

import (
	"crypto/rand"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jdjewell/januskey/internal/jkerr"
)

// Backend is the capability set a backend must provide. Local is the
// only implementation specified; symlink and Unix-mode permission
// calls may be no-ops or errors on platforms that don't support them.
type Backend interface {
	Exists(path string) bool
	IsFile(path string) bool
	IsDir(path string) bool
	IsSymlink(path string) bool
	Read(path string) ([]byte, error)
	Write(path string, data []byte, perm fs.FileMode) error
	RemoveFile(path string) error
	RemoveDir(path string) error
	RemoveDirAll(path string) error
	CreateDir(path string, perm fs.FileMode) error
	CreateDirAll(path string, perm fs.FileMode) error
	Rename(src, dst string) error
	Copy(src, dst string) error
	Metadata(path string) (fs.FileInfo, error)
	SymlinkMetadata(path string) (fs.FileInfo, error)
	ReadLink(path string) (string, error)
	Symlink(target, linkPath string) error
	SetPermissions(path string, perm fs.FileMode) error
	SetMtime(path string, mtime time.Time) error
	Truncate(path string, size int64) error
	Append(path string, data []byte) error
	ReadDir(path string) ([]os.DirEntry, error)
	WalkDir(root string, fn filepath.WalkFunc) error
	SecureOverwrite(path string, passes int) error
}

// Local implements Backend against the real local filesystem.
type Local struct{}

var _ Backend = Local{}

func (Local) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (Local) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (Local) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (Local) IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func (Local) Read(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, jkerr.Wrapf(jkerr.FileNotFound, "fsbackend: %s", path)
		}
		return nil, fmt.Errorf("fsbackend: read %q: %w", path, err)
	}
	return b, nil
}

func (Local) Write(path string, data []byte, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("fsbackend: mkdir %q: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("fsbackend: write %q: %w", path, err)
	}
	return nil
}

func (Local) RemoveFile(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return jkerr.Wrapf(jkerr.FileNotFound, "fsbackend: %s", path)
		}
		return fmt.Errorf("fsbackend: remove %q: %w", path, err)
	}
	return nil
}

func (Local) RemoveDir(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return jkerr.Wrapf(jkerr.DirectoryNotFound, "fsbackend: %s", path)
		}
		return fmt.Errorf("fsbackend: rmdir %q: %w", path, err)
	}
	return nil
}

func (Local) RemoveDirAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("fsbackend: rmdir -r %q: %w", path, err)
	}
	return nil
}

func (Local) CreateDir(path string, perm fs.FileMode) error {
	if err := os.Mkdir(path, perm); err != nil {
		if os.IsExist(err) {
			return jkerr.Wrapf(jkerr.PathExists, "fsbackend: %s", path)
		}
		return fmt.Errorf("fsbackend: mkdir %q: %w", path, err)
	}
	return nil
}

func (Local) CreateDirAll(path string, perm fs.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("fsbackend: mkdir -p %q: %w", path, err)
	}
	return nil
}

func (Local) Rename(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("fsbackend: rename %q -> %q: %w", src, dst, err)
	}
	return nil
}

func (Local) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("fsbackend: open %q: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("fsbackend: stat %q: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("fsbackend: mkdir %q: %w", filepath.Dir(dst), err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return jkerr.Wrapf(jkerr.PathExists, "fsbackend: %s", dst)
		}
		return fmt.Errorf("fsbackend: create %q: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("fsbackend: copy %q -> %q: %w", src, dst, err)
	}
	return nil
}

func (Local) Metadata(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fsbackend: stat %q: %w", path, err)
	}
	return info, nil
}

func (Local) SymlinkMetadata(path string) (fs.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("fsbackend: lstat %q: %w", path, err)
	}
	return info, nil
}

func (Local) ReadLink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", fmt.Errorf("fsbackend: readlink %q: %w", path, err)
	}
	return target, nil
}

func (Local) Symlink(target, linkPath string) error {
	if err := os.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
		return fmt.Errorf("fsbackend: mkdir %q: %w", filepath.Dir(linkPath), err)
	}
	if err := os.Symlink(target, linkPath); err != nil {
		if os.IsExist(err) {
			return jkerr.Wrapf(jkerr.PathExists, "fsbackend: %s", linkPath)
		}
		return jkerr.Wrapf(jkerr.OperationFailed, "fsbackend: symlink %s -> %s: %v", linkPath, target, err)
	}
	return nil
}

func (Local) SetPermissions(path string, perm fs.FileMode) error {
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("fsbackend: chmod %q: %w", path, err)
	}
	return nil
}

func (Local) SetMtime(path string, mtime time.Time) error {
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		return fmt.Errorf("fsbackend: chtimes %q: %w", path, err)
	}
	return nil
}

func (Local) Truncate(path string, size int64) error {
	if err := os.Truncate(path, size); err != nil {
		return fmt.Errorf("fsbackend: truncate %q: %w", path, err)
	}
	return nil
}

func (Local) Append(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("fsbackend: open %q for append: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("fsbackend: append %q: %w", path, err)
	}
	return nil
}

func (Local) ReadDir(path string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("fsbackend: readdir %q: %w", path, err)
	}
	return entries, nil
}

func (Local) WalkDir(root string, fn filepath.WalkFunc) error {
	return filepath.Walk(root, fn)
}

// SecureOverwrite overwrites path's contents with `passes` rounds
// (zero bytes, then 0xFF bytes, then cryptographically random bytes,
// repeating the pattern if passes > 3) in <=8 KiB chunks, fsyncing
// after each pass. Used only by the obliteration manager.
func (Local) SecureOverwrite(path string, passes int) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("fsbackend: stat %q: %w", path, err)
	}
	size := info.Size()

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("fsbackend: open %q: %w", path, err)
	}
	defer f.Close()

	const chunkSize = 8 * 1024
	for pass := 0; pass < passes; pass++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("fsbackend: seek %q: %w", path, err)
		}

		var remaining int64 = size
		for remaining > 0 {
			n := int64(chunkSize)
			if n > remaining {
				n = remaining
			}
			chunk, err := overwritePattern(pass%3, int(n))
			if err != nil {
				return err
			}
			if _, err := f.Write(chunk); err != nil {
				return fmt.Errorf("fsbackend: overwrite %q: %w", path, err)
			}
			remaining -= n
		}

		if err := f.Sync(); err != nil {
			return fmt.Errorf("fsbackend: fsync %q: %w", path, err)
		}
	}
	return nil
}

func overwritePattern(pass int, n int) ([]byte, error) {
	buf := make([]byte, n)
	switch pass {
	case 0:
		// already zero
	case 1:
		for i := range buf {
			buf[i] = 0xFF
		}
	case 2:
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("fsbackend: random overwrite pattern: %w", err)
		}
	}
	return buf, nil
}

// IsUnderDir reports whether path resides within dir, guarding against
// ".." traversal and unsafe prefix comparisons.
func IsUnderDir(path, dir string) (bool, error) {
	ap, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	ad, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(ad, ap)
	if err != nil {
		return false, err
	}
	if rel == "." {
		return true, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return !filepath.IsAbs(rel), nil
}
