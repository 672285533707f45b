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

package fsbackend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jdjewell/januskey/internal/jkerr"
)

func TestLocalWriteReadExists(t *testing.T) {
	var l Local
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "f.txt")

	require.NoError(t, l.Write(path, []byte("hello"), 0o644))
	require.True(t, l.Exists(path))
	require.True(t, l.IsFile(path))

	b, err := l.Read(path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))
}

func TestLocalReadMissingFileReturnsNotFound(t *testing.T) {
	var l Local
	_, err := l.Read(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, jkerr.FileNotFound)
}

func TestLocalRenameAndCopy(t *testing.T) {
	var l Local
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, l.Write(src, []byte("data"), 0o644))

	dst := filepath.Join(dir, "b.txt")
	require.NoError(t, l.Copy(src, dst))
	require.True(t, l.Exists(src))
	require.True(t, l.Exists(dst))

	dst2 := filepath.Join(dir, "c.txt")
	require.NoError(t, l.Rename(dst, dst2))
	require.False(t, l.Exists(dst))
	require.True(t, l.Exists(dst2))
}

func TestLocalCopyRefusesToOverwrite(t *testing.T) {
	var l Local
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	require.NoError(t, l.Write(src, []byte("a"), 0o644))
	require.NoError(t, l.Write(dst, []byte("b"), 0o644))

	err := l.Copy(src, dst)
	require.Error(t, err)
}

func TestLocalSymlink(t *testing.T) {
	var l Local
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, l.Write(target, []byte("x"), 0o644))

	link := filepath.Join(dir, "link")
	require.NoError(t, l.Symlink(target, link))
	require.True(t, l.IsSymlink(link))

	got, err := l.ReadLink(link)
	require.NoError(t, err)
	require.Equal(t, target, got)
}

func TestLocalAppendAndTruncate(t *testing.T) {
	var l Local
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, l.Write(path, []byte("abc"), 0o644))

	require.NoError(t, l.Append(path, []byte("def")))
	b, err := l.Read(path)
	require.NoError(t, err)
	require.Equal(t, "abcdef", string(b))

	require.NoError(t, l.Truncate(path, 3))
	b, err = l.Read(path)
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))
}

func TestLocalSecureOverwriteChangesContentAndKeepsSize(t *testing.T) {
	var l Local
	dir := t.TempDir()
	path := filepath.Join(dir, "secret.txt")
	original := []byte("sensitive data to destroy")
	require.NoError(t, l.Write(path, original, 0o644))

	require.NoError(t, l.SecureOverwrite(path, 3))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(len(original)), info.Size())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEqual(t, original, b)
}

func TestIsUnderDir(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "a", "b.txt")

	ok, err := IsUnderDir(inside, dir)
	require.NoError(t, err)
	require.True(t, ok)

	outside := filepath.Join(dir, "..", "escaped.txt")
	ok, err = IsUnderDir(outside, dir)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = IsUnderDir(dir, dir)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsUnderDirRejectsSiblingPrefixCollision(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "bar")
	sibling := filepath.Join(parent, "bar-baz", "f.txt")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	ok, err := IsUnderDir(sibling, dir)
	require.NoError(t, err)
	require.False(t, ok)
}
