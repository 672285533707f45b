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

package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	root := t.TempDir()
	_, err := Init(root)
	require.NoError(t, err)
	r, err := Open(root, "tester")
	require.NoError(t, err)
	return r, root
}

func TestInitTwiceFails(t *testing.T) {
	root := t.TempDir()
	_, err := Init(root)
	require.NoError(t, err)
	_, err = Init(root)
	require.Error(t, err)
}

func TestOpenWithoutInitFails(t *testing.T) {
	root := t.TempDir()
	_, err := Open(root, "tester")
	require.Error(t, err)
}

func TestDeleteThenUndoLast(t *testing.T) {
	r, root := newTestRepo(t)
	path := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	_, err := r.Delete(path)
	require.NoError(t, err)
	require.NoFileExists(t, path)

	_, err = r.UndoLast()
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestTransactionRollback(t *testing.T) {
	r, root := newTestRepo(t)
	a := filepath.Join(root, "a.txt")
	b := filepath.Join(root, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o644))

	_, err := r.Begin(nil)
	require.NoError(t, err)

	_, err = r.Delete(a)
	require.NoError(t, err)
	_, err = r.Delete(b)
	require.NoError(t, err)

	require.NoError(t, r.Rollback())

	require.FileExists(t, a)
	require.FileExists(t, b)
	require.False(t, r.Txn.HasActive())
}

func TestTransactionCommitKeepsMutations(t *testing.T) {
	r, root := newTestRepo(t)
	a := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))

	_, err := r.Begin(nil)
	require.NoError(t, err)
	_, err = r.Delete(a)
	require.NoError(t, err)
	require.NoError(t, r.Commit())

	require.NoFileExists(t, a)
	require.False(t, r.Txn.HasActive())
}

func TestBeginWhileActiveFails(t *testing.T) {
	r, _ := newTestRepo(t)
	_, err := r.Begin(nil)
	require.NoError(t, err)
	_, err = r.Begin(nil)
	require.Error(t, err)
}

func TestObliterationMakesContentUnrecoverable(t *testing.T) {
	r, root := newTestRepo(t)
	path := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(path, []byte("sensitive"), 0o644))

	opID, err := r.Delete(path)
	require.NoError(t, err)

	rec, err := r.Journal.Get(opID)
	require.NoError(t, err)
	require.NotNil(t, rec.ContentHash)

	reason := "user request"
	legalBasis := "GDPR Art. 17"
	oblitRec, err := r.Obliterate(*rec.ContentHash, &reason, &legalBasis)
	require.NoError(t, err)
	require.Contains(t, oblitRec.CleanedOperationIDs, opID)

	ok, err := r.Oblit.Verify(oblitRec.Proof.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.Error(t, r.UndoByID(opID))
}

func TestPruneProtectsActiveTransaction(t *testing.T) {
	r, root := newTestRepo(t)
	for i := 0; i < 3; i++ {
		p := filepath.Join(root, "f.txt")
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		_, err := r.Delete(p)
		require.NoError(t, err)
		_, err = r.UndoLast()
		require.NoError(t, err)
	}

	a := filepath.Join(root, "active.txt")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	_, err := r.Begin(nil)
	require.NoError(t, err)
	opID, err := r.Delete(a)
	require.NoError(t, err)

	removed, err := r.Prune(0)
	require.NoError(t, err)
	require.True(t, removed > 0)

	_, err = r.Journal.Get(opID)
	require.NoError(t, err)
}
