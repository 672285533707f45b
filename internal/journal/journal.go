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

// Package journal implements the append-only operation journal of spec
// §4.4, backed by a single JSON document at metadata.json. Writes use
// the write-temp-then-rename pattern for durability, the same idiom
// used across januskey's other JSON-backed stores.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jdjewell/januskey/internal/contenthash"
	"github.com/jdjewell/januskey/internal/fsmeta"
	"github.com/jdjewell/januskey/internal/jkerr"
)

// OperationType enumerates the 12 mutation kinds of spec §3.
type OperationType string

const (
	OpDelete   OperationType = "DELETE"
	OpModify   OperationType = "MODIFY"
	OpMove     OperationType = "MOVE"
	OpCopy     OperationType = "COPY"
	OpChmod    OperationType = "CHMOD"
	OpCreate   OperationType = "CREATE"
	OpMkdir    OperationType = "MKDIR"
	OpRmdir    OperationType = "RMDIR"
	OpSymlink  OperationType = "SYMLINK"
	OpAppend   OperationType = "APPEND"
	OpTruncate OperationType = "TRUNCATE"
	OpTouch    OperationType = "TOUCH"
)

// Record is the journal entry described in spec §3.
type Record struct {
	ID                string            `json:"id"`
	OpType            OperationType     `json:"op_type"`
	Timestamp         time.Time         `json:"timestamp"`
	User              string            `json:"user"`
	Path              string            `json:"path"`
	PathSecondary     *string           `json:"path_secondary,omitempty"`
	ContentHash       *contenthash.Hash `json:"content_hash,omitempty"`
	NewContentHash    *contenthash.Hash `json:"new_content_hash,omitempty"`
	OriginalMetadata  *fsmeta.Metadata  `json:"original_metadata,omitempty"`
	NewMetadata       *fsmeta.Metadata  `json:"new_metadata,omitempty"`
	TransactionID     *string           `json:"transaction_id,omitempty"`
	Undone            bool              `json:"undone"`
	UndoOperationID   *string           `json:"undo_operation_id,omitempty"`
	IsDelta           bool              `json:"is_delta"`
}

// NewID returns a fresh opaque operation identifier.
func NewID() string { return uuid.NewString() }

const currentVersion = "1.0"

type document struct {
	Version    string    `json:"version"`
	Operations []*Record `json:"operations"`
}

// Journal is the in-memory, file-backed operation log.
type Journal struct {
	path string
	doc  document
}

// Open loads the journal from path, creating an empty one if absent.
func Open(path string) (*Journal, error) {
	j := &Journal{path: path, doc: document{Version: currentVersion}}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("journal: read %q: %w", path, err)
	}

	if err := json.Unmarshal(b, &j.doc); err != nil {
		return nil, jkerr.Wrapf(jkerr.MetadataCorrupted, "journal: parse %q: %v", path, err)
	}
	return j, nil
}

func (j *Journal) persist() error {
	b, err := json.MarshalIndent(j.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("journal: marshal: %w", err)
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("journal: mkdir %q: %w", filepath.Dir(j.path), err)
	}

	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("journal: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("journal: rename %q -> %q: %w", tmp, j.path, err)
	}
	return nil
}

// Append pushes record onto the journal and persists it.
func (j *Journal) Append(r *Record) error {
	j.doc.Operations = append(j.doc.Operations, r)
	if err := j.persist(); err != nil {
		// Roll back the in-memory append so the journal's view stays
		// consistent with what's actually durable on disk.
		j.doc.Operations = j.doc.Operations[:len(j.doc.Operations)-1]
		return err
	}
	return nil
}

// Get returns the record with the given id.
func (j *Journal) Get(id string) (*Record, error) {
	for _, r := range j.doc.Operations {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, jkerr.Wrapf(jkerr.InvalidOperationID, "journal: %s", id)
}

// All returns every record in append order. Callers must not mutate
// the returned slice's records directly; use MarkUndone.
func (j *Journal) All() []*Record {
	return j.doc.Operations
}

// LastUndoable returns the single most recent record with Undone ==
// false, or an error if none exists.
func (j *Journal) LastUndoable() (*Record, error) {
	for i := len(j.doc.Operations) - 1; i >= 0; i-- {
		if !j.doc.Operations[i].Undone {
			return j.doc.Operations[i], nil
		}
	}
	return nil, jkerr.NothingToUndo
}

// LastNUndoable returns up to n most recent undoable records, most
// recent first.
func (j *Journal) LastNUndoable(n int) []*Record {
	var out []*Record
	for i := len(j.doc.Operations) - 1; i >= 0 && len(out) < n; i-- {
		if !j.doc.Operations[i].Undone {
			out = append(out, j.doc.Operations[i])
		}
	}
	return out
}

// TransactionOperations returns records whose TransactionID matches
// txID, in append order.
func (j *Journal) TransactionOperations(txID string) []*Record {
	var out []*Record
	for _, r := range j.doc.Operations {
		if r.TransactionID != nil && *r.TransactionID == txID {
			out = append(out, r)
		}
	}
	return out
}

// FilterByType returns records of the given OperationType.
func (j *Journal) FilterByType(t OperationType) []*Record {
	var out []*Record
	for _, r := range j.doc.Operations {
		if r.OpType == t {
			out = append(out, r)
		}
	}
	return out
}

// FilterByPath returns records whose Path matches the glob pattern
// (filepath.Match semantics).
func (j *Journal) FilterByPath(pattern string) ([]*Record, error) {
	var out []*Record
	for _, r := range j.doc.Operations {
		ok, err := filepath.Match(pattern, r.Path)
		if err != nil {
			return nil, jkerr.Wrapf(jkerr.InvalidPattern, "journal: %s: %v", pattern, err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// MarkUndone flags id as undone, recording the id of the new forward
// record documenting its inverse, and persists.
func (j *Journal) MarkUndone(id, undoID string) error {
	r, err := j.Get(id)
	if err != nil {
		return err
	}
	if r.Undone {
		return jkerr.Wrapf(jkerr.OperationFailed, "journal: %s already undone", id)
	}
	r.Undone = true
	r.UndoOperationID = &undoID
	return j.persist()
}

// Prune drops the oldest records beyond keepLast, except any record
// referenced by protectedIDs (operations belonging to an open
// transaction, or referenced by an obliteration record for audit).
func (j *Journal) Prune(keepLast int, protectedIDs map[string]bool) (removed int, err error) {
	if keepLast < 0 {
		keepLast = 0
	}
	if len(j.doc.Operations) <= keepLast {
		return 0, nil
	}

	excess := len(j.doc.Operations) - keepLast
	var kept []*Record
	droppedCount := 0
	for i, r := range j.doc.Operations {
		if i < excess && !protectedIDs[r.ID] {
			droppedCount++
			continue
		}
		kept = append(kept, r)
	}

	j.doc.Operations = kept
	if err := j.persist(); err != nil {
		return 0, err
	}
	return droppedCount, nil
}
