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

package ffi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitOpenStatusClose(t *testing.T) {
	root := t.TempDir()

	handle, res := Init(root)
	require.Equal(t, Ok, res)
	defer Close(handle)

	require.True(t, IsInitialized(root))

	status, res := GetStatus(handle)
	require.Equal(t, Ok, res)
	require.True(t, status.Initialized)
	require.Equal(t, uint32(0), status.TotalOperations)
}

func TestOpenUninitializedFails(t *testing.T) {
	root := t.TempDir()
	_, res := Open(root, "tester")
	require.Equal(t, ErrNotInitialized, res)
}

func TestHistoryAndUndoRoundTrip(t *testing.T) {
	root := t.TempDir()
	handle, res := Init(root)
	require.Equal(t, Ok, res)
	defer Close(handle)

	path := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	r, ok := lookup(handle)
	require.True(t, ok)
	_, err := r.Delete(path)
	require.NoError(t, err)

	require.Equal(t, int32(1), HistoryCount(handle))
	p, res := HistoryPath(handle, 0)
	require.Equal(t, Ok, res)
	require.Equal(t, path, p)

	require.Equal(t, Ok, UndoLast(handle))
	require.FileExists(t, path)
}

func TestInvalidHandleReturnsNotFound(t *testing.T) {
	require.Equal(t, ErrNotFound, UndoLast(99999))
	require.Equal(t, int32(-1), HistoryCount(99999))
}
