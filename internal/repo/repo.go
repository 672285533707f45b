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

// Package repo wires the content store, journal, transaction manager,
// obliteration manager, and executor into a single handle over one
// working directory's .januskey state, per spec §6's on-disk layout.
// It is the orchestration layer the CLI (and the FFI surface) call
// into, playing the role modctl's internal/db.go once played for
// wiring database access -- except every store here is a JSON
// document, not SQL.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jdjewell/januskey/internal/config"
	"github.com/jdjewell/januskey/internal/content"
	"github.com/jdjewell/januskey/internal/contenthash"
	"github.com/jdjewell/januskey/internal/executor"
	"github.com/jdjewell/januskey/internal/fsbackend"
	"github.com/jdjewell/januskey/internal/jkerr"
	"github.com/jdjewell/januskey/internal/journal"
	"github.com/jdjewell/januskey/internal/oblit"
	"github.com/jdjewell/januskey/internal/txn"
)

// StateDir is the name of the per-working-directory state directory.
const StateDir = ".januskey"

// Repo is a fully wired handle over one working directory's reversible
// operation state.
type Repo struct {
	Root    string
	Config  *config.Config
	Content *content.Store
	Journal *journal.Journal
	Txn     *txn.Manager
	Oblit   *oblit.Manager
	Exec    *executor.Executor
	Backend fsbackend.Backend
}

func statePaths(root string) (configPath, contentDir, journalPath, txnPath, oblitPath string) {
	base := filepath.Join(root, StateDir)
	return filepath.Join(base, "config.json"),
		filepath.Join(base, "content"),
		filepath.Join(base, "metadata.json"),
		filepath.Join(base, "transactions", "transactions.json"),
		filepath.Join(base, "obliterations.json")
}

// IsInitialized reports whether root has an initialized .januskey
// state directory.
func IsInitialized(root string) bool {
	base := filepath.Join(root, StateDir)
	info, err := os.Stat(base)
	return err == nil && info.IsDir()
}

// Init creates a fresh .januskey state directory under root with
// default configuration, failing if one already exists.
func Init(root string) (*Repo, error) {
	if IsInitialized(root) {
		return nil, jkerr.Wrapf(jkerr.OperationFailed, "repo: %s already initialized", root)
	}

	configPath, contentDir, _, _, _ := statePaths(root)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("repo: mkdir %q: %w", filepath.Dir(configPath), err)
	}
	if err := config.Save(configPath, &config.Default); err != nil {
		return nil, err
	}
	if _, err := content.New(contentDir, config.Default.Compression); err != nil {
		return nil, err
	}

	return Open(root, "")
}

// Open loads an existing .januskey state directory under root for
// operations executed as user. It fails with NotInitialized if root
// has not been initialized.
func Open(root string, user string) (*Repo, error) {
	if !IsInitialized(root) {
		return nil, jkerr.Wrapf(jkerr.NotInitialized, "repo: %s", root)
	}

	configPath, contentDir, journalPath, txnPath, oblitPath := statePaths(root)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := content.New(contentDir, cfg.Compression)
	if err != nil {
		return nil, err
	}

	jr, err := journal.Open(journalPath)
	if err != nil {
		return nil, err
	}

	txnMgr, err := txn.Open(txnPath)
	if err != nil {
		return nil, err
	}

	oblitMgr, err := oblit.Open(oblitPath, store)
	if err != nil {
		return nil, err
	}

	backend := fsbackend.Local{}

	r := &Repo{
		Root:    root,
		Config:  cfg,
		Content: store,
		Journal: jr,
		Txn:     txnMgr,
		Oblit:   oblitMgr,
		Backend: backend,
		Exec: &executor.Executor{
			Backend:       backend,
			Content:       store,
			Journal:       jr,
			User:          user,
			DeltasEnabled: cfg.DeltasEnabled,
		},
	}
	return r, nil
}

// currentTxID returns the active transaction id, if any, as the
// *string forward operations stamp their records with.
func (r *Repo) currentTxID() *string {
	if id, ok := r.Txn.ActiveID(); ok {
		return &id
	}
	return nil
}

// recordTxn associates opID with the active transaction, if one
// exists. Forward operation wrappers call this immediately after the
// executor call succeeds.
func (r *Repo) recordTxn(opID string, err error) (string, error) {
	if err != nil {
		return opID, err
	}
	if _, ok := r.Txn.ActiveID(); ok {
		if txErr := r.Txn.AddOperation(opID); txErr != nil {
			return opID, txErr
		}
	}
	return opID, nil
}

// UndoLast inverts the journal's single most recent undoable record.
func (r *Repo) UndoLast() (string, error) {
	rec, err := r.Journal.LastUndoable()
	if err != nil {
		return "", err
	}
	if err := r.Exec.Undo(rec.ID, r.currentTxID()); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// UndoByID inverts the record with the given operation id.
func (r *Repo) UndoByID(opID string) error {
	return r.Exec.Undo(opID, r.currentTxID())
}

// Begin starts a new transaction.
func (r *Repo) Begin(name *string) (*txn.Transaction, error) {
	return r.Txn.Begin(name, r.Exec.User)
}

// Commit commits the active transaction.
func (r *Repo) Commit() error { return r.Txn.Commit() }

// Rollback undoes every operation of the active transaction in
// reverse order via the executor, then marks it RolledBack.
func (r *Repo) Rollback() error {
	return r.Txn.Rollback(func(opID string) error {
		return r.Exec.Undo(opID, nil)
	})
}

// Prune drops journal records beyond keepLast, protecting any record
// that belongs to the active transaction or is referenced by an
// obliteration record (per SPEC_FULL.md's open-question decision).
func (r *Repo) Prune(keepLast int) (int, error) {
	protected := map[string]bool{}
	if t, ok := r.Txn.Active(); ok {
		for _, id := range t.OperationIDs {
			protected[id] = true
		}
	}
	for _, rec := range r.Oblit.All() {
		for _, id := range rec.CleanedOperationIDs {
			protected[id] = true
		}
	}
	return r.Journal.Prune(keepLast, protected)
}

// Obliterate destroys the blob addressed by h, recording reason and
// legalBasis on the audit log, and associating any journal records
// that referenced it for later auditing.
func (r *Repo) Obliterate(h contenthash.Hash, reason, legalBasis *string) (*oblit.ObliterationRecord, error) {
	cleaned := referencingOperationIDs(r.Journal, h)
	return r.Oblit.Obliterate(r.Backend, h, r.Exec.User, reason, legalBasis, cleaned)
}

// ObliterateBatch destroys every hash in hashes, collecting successes
// and failures independently.
func (r *Repo) ObliterateBatch(hashes []contenthash.Hash, reason, legalBasis *string) oblit.BatchResult {
	return r.Oblit.ObliterateBatch(r.Backend, hashes, r.Exec.User, reason, legalBasis)
}

func referencingOperationIDs(j *journal.Journal, h contenthash.Hash) []string {
	var ids []string
	for _, rec := range j.All() {
		if (rec.ContentHash != nil && *rec.ContentHash == h) || (rec.NewContentHash != nil && *rec.NewContentHash == h) {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

// --- Forward operation wrappers ------------------------------------------
//
// Each wraps the corresponding executor method, stamping the result
// onto the active transaction (if any) exactly once, in one place,
// rather than at every call site.

func (r *Repo) Delete(path string) (string, error) {
	return r.recordTxn(r.Exec.Delete(path, r.currentTxID()))
}

func (r *Repo) Modify(path string, newContent []byte) (string, error) {
	return r.recordTxn(r.Exec.Modify(path, newContent, r.currentTxID()))
}

func (r *Repo) Move(source, destination string) (string, error) {
	return r.recordTxn(r.Exec.Move(source, destination, r.currentTxID()))
}

func (r *Repo) Copy(source, destination string) (string, error) {
	return r.recordTxn(r.Exec.Copy(source, destination, r.currentTxID()))
}

func (r *Repo) Chmod(path string, mode os.FileMode) (string, error) {
	return r.recordTxn(r.Exec.Chmod(path, mode, r.currentTxID()))
}

func (r *Repo) Create(path string, contentBytes []byte, perm os.FileMode) (string, error) {
	return r.recordTxn(r.Exec.Create(path, contentBytes, perm, r.currentTxID()))
}

func (r *Repo) Mkdir(path string, parents bool) (string, error) {
	return r.recordTxn(r.Exec.Mkdir(path, parents, r.currentTxID()))
}

func (r *Repo) Rmdir(path string, recursive bool) (string, error) {
	if recursive {
		return r.recordTxn(r.Exec.RmdirRecursive(path, r.currentTxID()))
	}
	return r.recordTxn(r.Exec.Rmdir(path, r.currentTxID()))
}

func (r *Repo) Symlink(linkPath, target string) (string, error) {
	return r.recordTxn(r.Exec.Symlink(linkPath, target, r.currentTxID()))
}

func (r *Repo) Append(path string, data []byte) (string, error) {
	return r.recordTxn(r.Exec.Append(path, data, r.currentTxID()))
}

func (r *Repo) Truncate(path string, size int64) (string, error) {
	return r.recordTxn(r.Exec.Truncate(path, size, r.currentTxID()))
}

func (r *Repo) Touch(path string, create bool) (string, error) {
	return r.recordTxn(r.Exec.Touch(path, create, r.currentTxID()))
}
