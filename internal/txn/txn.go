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

// Package txn implements the transaction manager of spec §4.5: at most
// one Active transaction per working directory, grouped commit, and
// reverse-order rollback via undo.
package txn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jdjewell/januskey/internal/jkerr"
)

// State is the transaction lifecycle state.
type State string

const (
	Active      State = "ACTIVE"
	Committed   State = "COMMITTED"
	RolledBack  State = "ROLLED_BACK"
)

// Transaction groups operation ids with a single Active -> terminal
// lifecycle.
type Transaction struct {
	ID           string     `json:"id"`
	Name         *string    `json:"name,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	State        State      `json:"state"`
	OperationIDs []string   `json:"operation_ids"`
	User         string     `json:"user"`
}

const currentVersion = "1.0"

type document struct {
	Version             string         `json:"version"`
	Transactions        []*Transaction `json:"transactions"`
	ActiveTransactionID  *string       `json:"active_transaction_id,omitempty"`
}

// Manager persists transactions to transactions.json and enforces the
// single-active-transaction invariant.
type Manager struct {
	path string
	doc  document
}

// Open loads the transaction log from path, creating an empty one if
// absent.
func Open(path string) (*Manager, error) {
	m := &Manager{path: path, doc: document{Version: currentVersion}}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("txn: read %q: %w", path, err)
	}
	if err := json.Unmarshal(b, &m.doc); err != nil {
		return nil, jkerr.Wrapf(jkerr.MetadataCorrupted, "txn: parse %q: %v", path, err)
	}
	return m, nil
}

func (m *Manager) persist() error {
	b, err := json.MarshalIndent(m.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("txn: marshal: %w", err)
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("txn: mkdir %q: %w", filepath.Dir(m.path), err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("txn: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("txn: rename %q -> %q: %w", tmp, m.path, err)
	}
	return nil
}

// HasActive reports whether a transaction is currently Active.
func (m *Manager) HasActive() bool {
	return m.doc.ActiveTransactionID != nil
}

// ActiveID returns the id of the Active transaction, if any.
func (m *Manager) ActiveID() (string, bool) {
	if m.doc.ActiveTransactionID == nil {
		return "", false
	}
	return *m.doc.ActiveTransactionID, true
}

// Active returns the Active transaction, if any.
func (m *Manager) Active() (*Transaction, bool) {
	id, ok := m.ActiveID()
	if !ok {
		return nil, false
	}
	for _, t := range m.doc.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Get returns the transaction with the given id.
func (m *Manager) Get(id string) (*Transaction, error) {
	for _, t := range m.doc.Transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, jkerr.Wrapf(jkerr.InvalidOperationID, "txn: %s", id)
}

// Begin starts a new Active transaction. Fails with TransactionActive
// if one is already Active.
func (m *Manager) Begin(name *string, user string) (*Transaction, error) {
	if m.HasActive() {
		id, _ := m.ActiveID()
		return nil, jkerr.Wrapf(jkerr.TransactionActive, "txn: %s", id)
	}

	t := &Transaction{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: time.Now().UTC(),
		State:     Active,
		User:      user,
	}
	m.doc.Transactions = append(m.doc.Transactions, t)
	m.doc.ActiveTransactionID = &t.ID

	if err := m.persist(); err != nil {
		m.doc.Transactions = m.doc.Transactions[:len(m.doc.Transactions)-1]
		m.doc.ActiveTransactionID = nil
		return nil, err
	}
	return t, nil
}

// AddOperation appends opID to the Active transaction's operation list.
func (m *Manager) AddOperation(opID string) error {
	t, ok := m.Active()
	if !ok {
		return jkerr.NoActiveTransaction
	}
	t.OperationIDs = append(t.OperationIDs, opID)
	return m.persist()
}

// Commit marks the Active transaction Committed. The underlying
// mutations remain in place; only the bookkeeping changes.
func (m *Manager) Commit() error {
	t, ok := m.Active()
	if !ok {
		return jkerr.NoActiveTransaction
	}
	now := time.Now().UTC()
	t.State = Committed
	t.CompletedAt = &now
	m.doc.ActiveTransactionID = nil
	return m.persist()
}

// UndoFunc inverts a single operation id; it is supplied by the
// executor so txn stays independent of the journal/content-store
// machinery.
type UndoFunc func(opID string) error

// Rollback undoes every operation of the Active transaction in reverse
// append order, then marks it RolledBack. If undo fails partway, the
// transaction is left Active (per spec §4.5) and the error is
// returned; the caller must retry or escalate.
func (m *Manager) Rollback(undo UndoFunc) error {
	t, ok := m.Active()
	if !ok {
		return jkerr.NoActiveTransaction
	}

	for i := len(t.OperationIDs) - 1; i >= 0; i-- {
		if err := undo(t.OperationIDs[i]); err != nil {
			return fmt.Errorf("txn: rollback failed on operation %s: %w", t.OperationIDs[i], err)
		}
	}

	now := time.Now().UTC()
	t.State = RolledBack
	t.CompletedAt = &now
	m.doc.ActiveTransactionID = nil
	return m.persist()
}

// PreviewEntry summarizes one operation for Preview.
type PreviewEntry struct {
	OpType        string  `json:"op_type"`
	Path          string  `json:"path"`
	SecondaryPath *string `json:"secondary_path,omitempty"`
}

// Preview summarizes a transaction's operations and the count of
// distinct affected paths, given a lookup function from operation id
// to (opType, path, secondaryPath).
func Preview(t *Transaction, lookup func(opID string) (opType, path string, secondary *string, err error)) ([]PreviewEntry, int, error) {
	entries := make([]PreviewEntry, 0, len(t.OperationIDs))
	paths := map[string]bool{}
	for _, id := range t.OperationIDs {
		opType, path, secondary, err := lookup(id)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, PreviewEntry{OpType: opType, Path: path, SecondaryPath: secondary})
		paths[path] = true
		if secondary != nil {
			paths[*secondary] = true
		}
	}
	return entries, len(paths), nil
}
