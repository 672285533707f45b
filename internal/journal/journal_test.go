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

package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func rec(opType OperationType, path string) *Record {
	return &Record{
		ID:        NewID(),
		OpType:    opType,
		Timestamp: time.Now().UTC(),
		User:      "tester",
		Path:      path,
	}
}

func TestOpenCreatesEmptyJournalWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	j, err := Open(path)
	require.NoError(t, err)
	require.Empty(t, j.All())
}

func TestAppendGetAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	j, err := Open(path)
	require.NoError(t, err)

	r := rec(OpCreate, "/a/b.txt")
	require.NoError(t, j.Append(r))

	got, err := j.Get(r.ID)
	require.NoError(t, err)
	require.Equal(t, r.Path, got.Path)

	reopened, err := Open(path)
	require.NoError(t, err)
	require.Len(t, reopened.All(), 1)
	require.Equal(t, r.ID, reopened.All()[0].ID)
}

func TestGetUnknownIDFails(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)
	_, err = j.Get("nonexistent")
	require.Error(t, err)
}

func TestLastUndoableSkipsUndoneRecords(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	r1 := rec(OpCreate, "/a")
	r2 := rec(OpDelete, "/b")
	require.NoError(t, j.Append(r1))
	require.NoError(t, j.Append(r2))

	require.NoError(t, j.MarkUndone(r2.ID, NewID()))

	last, err := j.LastUndoable()
	require.NoError(t, err)
	require.Equal(t, r1.ID, last.ID)
}

func TestLastUndoableEmptyJournalFails(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)
	_, err = j.LastUndoable()
	require.Error(t, err)
}

func TestLastNUndoableOrdersMostRecentFirst(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	r1 := rec(OpCreate, "/a")
	r2 := rec(OpCreate, "/b")
	r3 := rec(OpCreate, "/c")
	require.NoError(t, j.Append(r1))
	require.NoError(t, j.Append(r2))
	require.NoError(t, j.Append(r3))

	got := j.LastNUndoable(2)
	require.Len(t, got, 2)
	require.Equal(t, r3.ID, got[0].ID)
	require.Equal(t, r2.ID, got[1].ID)
}

func TestTransactionOperationsFiltersByTxID(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	txID := "tx-1"
	r1 := rec(OpCreate, "/a")
	r1.TransactionID = &txID
	r2 := rec(OpCreate, "/b")

	require.NoError(t, j.Append(r1))
	require.NoError(t, j.Append(r2))

	ops := j.TransactionOperations(txID)
	require.Len(t, ops, 1)
	require.Equal(t, r1.ID, ops[0].ID)
}

func TestFilterByTypeAndPath(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	require.NoError(t, j.Append(rec(OpCreate, "/a/one.txt")))
	require.NoError(t, j.Append(rec(OpDelete, "/a/two.txt")))
	require.NoError(t, j.Append(rec(OpCreate, "/b/three.txt")))

	creates := j.FilterByType(OpCreate)
	require.Len(t, creates, 2)

	matched, err := j.FilterByPath("/a/*")
	require.NoError(t, err)
	require.Len(t, matched, 2)

	_, err = j.FilterByPath("[")
	require.Error(t, err)
}

func TestMarkUndoneRejectsDoubleUndo(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	r := rec(OpDelete, "/a")
	require.NoError(t, j.Append(r))

	require.NoError(t, j.MarkUndone(r.ID, NewID()))
	err = j.MarkUndone(r.ID, NewID())
	require.Error(t, err)
}

func TestPruneRespectsProtectedIDs(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	r1 := rec(OpCreate, "/a")
	r2 := rec(OpCreate, "/b")
	r3 := rec(OpCreate, "/c")
	require.NoError(t, j.Append(r1))
	require.NoError(t, j.Append(r2))
	require.NoError(t, j.Append(r3))

	removed, err := j.Prune(1, map[string]bool{r1.ID: true})
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	remaining := j.All()
	ids := []string{remaining[0].ID, remaining[1].ID}
	require.Contains(t, ids, r1.ID)
	require.Contains(t, ids, r3.ID)
}

func TestPruneNoopWhenUnderLimit(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)
	require.NoError(t, j.Append(rec(OpCreate, "/a")))

	removed, err := j.Prune(10, nil)
	require.NoError(t, err)
	require.Equal(t, 0, removed)
	require.Len(t, j.All(), 1)
}
