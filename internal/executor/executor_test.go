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

package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jdjewell/januskey/internal/content"
	"github.com/jdjewell/januskey/internal/fsbackend"
	"github.com/jdjewell/januskey/internal/journal"
)

func newTestExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	root := t.TempDir()
	workdir := filepath.Join(root, "work")
	require.NoError(t, os.MkdirAll(workdir, 0o755))

	store, err := content.New(filepath.Join(root, "blobs"), false)
	require.NoError(t, err)
	jr, err := journal.Open(filepath.Join(root, "metadata.json"))
	require.NoError(t, err)

	return &Executor{
		Backend: fsbackend.Local{},
		Content: store,
		Journal: jr,
		User:    "tester",
	}, workdir
}

func TestDeleteAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	opID, err := e.Delete(path, nil)
	require.NoError(t, err)
	require.NoFileExists(t, path)

	require.NoError(t, e.Undo(opID, nil))
	require.FileExists(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))

	rec, err := e.Journal.Get(opID)
	require.NoError(t, err)
	require.True(t, rec.Undone)
}

func TestModifyAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	path := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(path, []byte("version one"), 0o644))

	opID, err := e.Modify(path, []byte("version two, much longer content here"), nil)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "version two, much longer content here", string(data))

	require.NoError(t, e.Undo(opID, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "version one", string(data))
}

func TestModifyWithDeltasAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	e.DeltasEnabled = true
	path := filepath.Join(dir, "c.txt")

	original := make([]byte, 5000)
	for i := range original {
		original[i] = byte('a' + i%26)
	}
	require.NoError(t, os.WriteFile(path, original, 0o644))

	modified := append([]byte(nil), original...)
	modified[0] = 'Z'

	opID, err := e.Modify(path, modified, nil)
	require.NoError(t, err)

	rec, err := e.Journal.Get(opID)
	require.NoError(t, err)
	require.True(t, rec.IsDelta)

	require.NoError(t, e.Undo(opID, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, data)
}

func TestMoveAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	opID, err := e.Move(src, dst, nil)
	require.NoError(t, err)
	require.NoFileExists(t, src)
	require.FileExists(t, dst)

	require.NoError(t, e.Undo(opID, nil))
	require.FileExists(t, src)
	require.NoFileExists(t, dst)
}

func TestCopyAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "copy.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	opID, err := e.Copy(src, dst, nil)
	require.NoError(t, err)
	require.FileExists(t, src)
	require.FileExists(t, dst)

	require.NoError(t, e.Undo(opID, nil))
	require.FileExists(t, src)
	require.NoFileExists(t, dst)
}

func TestMkdirAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	path := filepath.Join(dir, "subdir")

	opID, err := e.Mkdir(path, false, nil)
	require.NoError(t, err)
	require.DirExists(t, path)

	require.NoError(t, e.Undo(opID, nil))
	require.NoDirExists(t, path)
}

func TestRmdirRecursiveAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	root := filepath.Join(dir, "tree")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.txt"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "deep.txt"), []byte("deep"), 0o644))

	opID, err := e.RmdirRecursive(root, nil)
	require.NoError(t, err)
	require.NoDirExists(t, root)

	require.NoError(t, e.Undo(opID, nil))
	require.DirExists(t, root)
	topData, err := os.ReadFile(filepath.Join(root, "top.txt"))
	require.NoError(t, err)
	require.Equal(t, "top", string(topData))
	deepData, err := os.ReadFile(filepath.Join(root, "nested", "deep.txt"))
	require.NoError(t, err)
	require.Equal(t, "deep", string(deepData))
}

func TestAppendAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	path := filepath.Join(dir, "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\n"), 0o644))

	opID, err := e.Append(path, []byte("line two\n"), nil)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "line one\nline two\n", string(data))

	require.NoError(t, e.Undo(opID, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "line one\n", string(data))
}

func TestTruncateAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	opID, err := e.Truncate(path, 4, nil)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "0123", string(data))

	require.NoError(t, e.Undo(opID, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "0123456789", string(data))
}

func TestTouchCreateAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	path := filepath.Join(dir, "fresh.txt")

	opID, err := e.Touch(path, true, nil)
	require.NoError(t, err)
	require.FileExists(t, path)

	require.NoError(t, e.Undo(opID, nil))
	require.NoFileExists(t, path)
}

func TestUndoTwiceFails(t *testing.T) {
	e, dir := newTestExecutor(t)
	path := filepath.Join(dir, "once.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	opID, err := e.Delete(path, nil)
	require.NoError(t, err)
	require.NoError(t, e.Undo(opID, nil))
	require.Error(t, e.Undo(opID, nil))
}

func TestChmodAndUndo(t *testing.T) {
	e, dir := newTestExecutor(t)
	path := filepath.Join(dir, "perm.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	opID, err := e.Chmod(path, 0o600, nil)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, e.Undo(opID, nil))
	info, err = os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
