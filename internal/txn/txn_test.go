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

package txn

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeginRequiresNoActiveTransaction(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)

	name := "first"
	tx, err := m.Begin(&name, "tester")
	require.NoError(t, err)
	require.True(t, m.HasActive())

	id, ok := m.ActiveID()
	require.True(t, ok)
	require.Equal(t, tx.ID, id)

	_, err = m.Begin(nil, "tester")
	require.Error(t, err)
}

func TestAddOperationFailsWithoutActiveTransaction(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)

	err = m.AddOperation("op-1")
	require.Error(t, err)
}

func TestAddOperationAndCommit(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)

	_, err = m.Begin(nil, "tester")
	require.NoError(t, err)

	require.NoError(t, m.AddOperation("op-1"))
	require.NoError(t, m.AddOperation("op-2"))

	require.NoError(t, m.Commit())
	require.False(t, m.HasActive())

	tx, ok := m.Active()
	require.False(t, ok)
	require.Nil(t, tx)
}

func TestCommitWithoutActiveTransactionFails(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)
	require.Error(t, m.Commit())
}

func TestRollbackInvokesUndoInReverseOrder(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)

	_, err = m.Begin(nil, "tester")
	require.NoError(t, err)
	require.NoError(t, m.AddOperation("op-1"))
	require.NoError(t, m.AddOperation("op-2"))
	require.NoError(t, m.AddOperation("op-3"))

	var undone []string
	err = m.Rollback(func(opID string) error {
		undone = append(undone, opID)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"op-3", "op-2", "op-1"}, undone)
	require.False(t, m.HasActive())
}

func TestRollbackWithoutActiveTransactionFails(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)
	err = m.Rollback(func(string) error { return nil })
	require.Error(t, err)
}

func TestRollbackLeavesTransactionActiveOnFailure(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)

	_, err = m.Begin(nil, "tester")
	require.NoError(t, err)
	require.NoError(t, m.AddOperation("op-1"))

	err = m.Rollback(func(opID string) error {
		return require.AnError
	})
	require.Error(t, err)
	require.True(t, m.HasActive())
}

func TestReopenPreservesTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	m, err := Open(path)
	require.NoError(t, err)

	name := "persisted"
	tx, err := m.Begin(&name, "tester")
	require.NoError(t, err)
	require.NoError(t, m.AddOperation("op-1"))
	require.NoError(t, m.Commit())

	reopened, err := Open(path)
	require.NoError(t, err)
	got, err := reopened.Get(tx.ID)
	require.NoError(t, err)
	require.Equal(t, Committed, got.State)
	require.Equal(t, []string{"op-1"}, got.OperationIDs)
}

func TestGetUnknownTransactionFails(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)
	_, err = m.Get("nope")
	require.Error(t, err)
}

func TestPreviewSummarizesOperationsAndDistinctPaths(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)

	tx, err := m.Begin(nil, "tester")
	require.NoError(t, err)
	require.NoError(t, m.AddOperation("op-1"))
	require.NoError(t, m.AddOperation("op-2"))

	lookup := func(opID string) (string, string, *string, error) {
		switch opID {
		case "op-1":
			secondary := "/b"
			return "MOVE", "/a", &secondary, nil
		default:
			return "DELETE", "/a", nil, nil
		}
	}

	entries, distinctPaths, err := Preview(tx, lookup)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2, distinctPaths)
}

func TestPreviewPropagatesLookupError(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "transactions.json"))
	require.NoError(t, err)

	tx, err := m.Begin(nil, "tester")
	require.NoError(t, err)
	require.NoError(t, m.AddOperation("op-1"))

	_, _, err = Preview(tx, func(string) (string, string, *string, error) {
		return "", "", nil, require.AnError
	})
	require.Error(t, err)
}
