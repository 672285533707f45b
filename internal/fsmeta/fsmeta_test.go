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

package fsmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCaptureAndApplyPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o640))

	m, err := Capture(path)
	require.NoError(t, err)
	require.Equal(t, uint32(0o640), m.Permissions)
	require.False(t, m.IsSymlink)
	require.Nil(t, m.SymlinkTarget)

	require.NoError(t, os.Chmod(path, 0o600))
	require.NoError(t, Apply(path, m))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestCaptureSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	m, err := Capture(link)
	require.NoError(t, err)
	require.True(t, m.IsSymlink)
	require.NotNil(t, m.SymlinkTarget)
	require.Equal(t, target, *m.SymlinkTarget)
}

func TestApplyMtimeRestoresOnlyTimestamp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	m, err := Capture(path)
	require.NoError(t, err)

	later := m.Modified.Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	require.NoError(t, ApplyMtime(path, m))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.WithinDuration(t, m.Modified, info.ModTime(), time.Second)
}

func TestCaptureMissingFileFails(t *testing.T) {
	_, err := Capture(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
