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

// Package executor implements the per-operation forward and undo
// semantics of spec §4.3. Every exported forward method validates
// preconditions, captures inverse state into the content store,
// appends a journal record, and only then mutates the filesystem --
// so a crash leaves a journal record for any captured state, never an
// orphan capture. A crash between journal append and mutation leaves a
// record for an operation that did not happen; undo does not detect
// this: undo of such a Create, Mkdir, Move, Copy or Symlink record fails
// because the path it removes or moves is absent.
package executor

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jdjewell/januskey/internal/content"
	"github.com/jdjewell/januskey/internal/contenthash"
	"github.com/jdjewell/januskey/internal/delta"
	"github.com/jdjewell/januskey/internal/fsbackend"
	"github.com/jdjewell/januskey/internal/fsmeta"
	"github.com/jdjewell/januskey/internal/jkerr"
	"github.com/jdjewell/januskey/internal/journal"
	"github.com/jdjewell/januskey/internal/logging"
)

// Executor ties the journal, content store, and filesystem backend
// together to perform and invert every OperationType in spec §3.
type Executor struct {
	Backend       fsbackend.Backend
	Content       *content.Store
	Journal       *journal.Journal
	User          string
	DeltasEnabled bool
}

func ptr[T any](v T) *T { return &v }

func (e *Executor) now() time.Time { return time.Now().UTC() }

func (e *Executor) record(opType journal.OperationType, path string, txID *string) *journal.Record {
	return &journal.Record{
		ID:            journal.NewID(),
		OpType:        opType,
		Timestamp:     e.now(),
		User:          e.User,
		Path:          path,
		TransactionID: txID,
	}
}

// --- Delete -----------------------------------------------------------

// Delete removes an existing file, capturing its full bytes and
// metadata so undo can recreate it.
func (e *Executor) Delete(path string, txID *string) (string, error) {
	if !e.Backend.IsFile(path) {
		return "", jkerr.Wrapf(jkerr.FileNotFound, "executor: delete %s", path)
	}

	meta, err := fsmeta.Capture(path)
	if err != nil {
		return "", err
	}
	data, err := e.Backend.Read(path)
	if err != nil {
		return "", err
	}
	h, err := e.Content.Store(data)
	if err != nil {
		return "", fmt.Errorf("executor: delete %s: capture: %w", path, err)
	}

	r := e.record(journal.OpDelete, path, txID)
	r.ContentHash = &h
	r.OriginalMetadata = &meta
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.RemoveFile(path); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoDelete(r *journal.Record, txID *string) error {
	if r.ContentHash == nil || r.OriginalMetadata == nil {
		return jkerr.Wrapf(jkerr.MetadataCorrupted, "executor: delete record %s missing captured state", r.ID)
	}
	data, err := e.Content.Retrieve(*r.ContentHash)
	if err != nil {
		return err
	}
	if err := e.Backend.Write(r.Path, data, fs.FileMode(r.OriginalMetadata.Permissions)); err != nil {
		return err
	}
	if err := fsmeta.Apply(r.Path, *r.OriginalMetadata); err != nil {
		return err
	}

	undo := e.record(journal.OpCreate, r.Path, txID)
	undo.NewContentHash = r.ContentHash
	return e.finishUndo(r, undo)
}

// --- Modify -------------------------------------------------------------

// Modify overwrites an existing file's bytes, capturing either the
// full original content or (if DeltasEnabled) a reverse delta.
func (e *Executor) Modify(path string, newContent []byte, txID *string) (string, error) {
	if !e.Backend.IsFile(path) {
		return "", jkerr.Wrapf(jkerr.FileNotFound, "executor: modify %s", path)
	}

	meta, err := fsmeta.Capture(path)
	if err != nil {
		return "", err
	}
	original, err := e.Backend.Read(path)
	if err != nil {
		return "", err
	}

	newHash, err := e.Content.Store(newContent)
	if err != nil {
		return "", fmt.Errorf("executor: modify %s: store new content: %w", path, err)
	}

	r := e.record(journal.OpModify, path, txID)
	r.NewContentHash = &newHash
	r.OriginalMetadata = &meta

	if e.DeltasEnabled {
		// Reverse-delta convention: store delta(original <- new), i.e.
		// computed as if newContent were the source and original the
		// target, so undo can apply it against the (soon to be current)
		// new bytes.
		d, err := delta.Compute(newContent, original)
		if err != nil {
			return "", fmt.Errorf("executor: modify %s: compute delta: %w", path, err)
		}
		encoded, err := encodeDelta(d)
		if err != nil {
			return "", err
		}
		h, err := e.Content.Store(encoded)
		if err != nil {
			return "", fmt.Errorf("executor: modify %s: store delta: %w", path, err)
		}
		r.ContentHash = &h
		r.IsDelta = true
	} else {
		h, err := e.Content.Store(original)
		if err != nil {
			return "", fmt.Errorf("executor: modify %s: store original: %w", path, err)
		}
		r.ContentHash = &h
	}

	if err := e.Journal.Append(r); err != nil {
		return "", err
	}
	if err := e.Backend.Write(path, newContent, fs.FileMode(meta.Permissions)); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoModify(r *journal.Record, txID *string) error {
	if r.ContentHash == nil {
		return jkerr.Wrapf(jkerr.MetadataCorrupted, "executor: modify record %s missing captured state", r.ID)
	}

	var original []byte
	if r.IsDelta {
		current, err := e.Backend.Read(r.Path)
		if err != nil {
			return err
		}
		if r.NewContentHash != nil && !r.NewContentHash.Verify(current) {
			return jkerr.Wrapf(jkerr.OperationFailed, "executor: modify record %s: file changed since execute; undo invalid", r.ID)
		}
		encoded, err := e.Content.Retrieve(*r.ContentHash)
		if err != nil {
			return err
		}
		d, err := decodeDelta(encoded)
		if err != nil {
			return err
		}
		original, err = delta.Apply(current, d)
		if err != nil {
			return fmt.Errorf("executor: modify record %s: apply delta: %w", r.ID, err)
		}
	} else {
		b, err := e.Content.Retrieve(*r.ContentHash)
		if err != nil {
			return err
		}
		original = b
	}

	perm := os.FileMode(0o644)
	if r.OriginalMetadata != nil {
		perm = fs.FileMode(r.OriginalMetadata.Permissions)
	}
	if err := e.Backend.Write(r.Path, original, perm); err != nil {
		return err
	}
	if r.OriginalMetadata != nil {
		if err := fsmeta.Apply(r.Path, *r.OriginalMetadata); err != nil {
			return err
		}
	}

	restoredHash := contenthash.Sum(original)
	undo := e.record(journal.OpModify, r.Path, txID)
	undo.NewContentHash = &restoredHash
	return e.finishUndo(r, undo)
}

// --- Move ---------------------------------------------------------------

// Move renames source to destination.
func (e *Executor) Move(source, destination string, txID *string) (string, error) {
	if !e.Backend.Exists(source) {
		return "", jkerr.Wrapf(jkerr.FileNotFound, "executor: move %s", source)
	}
	if e.Backend.Exists(destination) {
		return "", jkerr.Wrapf(jkerr.PathExists, "executor: move -> %s", destination)
	}

	meta, err := fsmeta.Capture(source)
	if err != nil {
		return "", err
	}

	r := e.record(journal.OpMove, source, txID)
	r.PathSecondary = ptr(destination)
	r.OriginalMetadata = &meta
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.Rename(source, destination); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoMove(r *journal.Record, txID *string) error {
	if r.PathSecondary == nil {
		return jkerr.Wrapf(jkerr.MetadataCorrupted, "executor: move record %s missing destination", r.ID)
	}
	if !e.Backend.Exists(*r.PathSecondary) {
		return jkerr.Wrapf(jkerr.FileNotFound, "executor: undo move: %s", *r.PathSecondary)
	}
	if e.Backend.Exists(r.Path) {
		return jkerr.Wrapf(jkerr.PathExists, "executor: undo move -> %s", r.Path)
	}
	if err := e.Backend.Rename(*r.PathSecondary, r.Path); err != nil {
		return err
	}

	undo := e.record(journal.OpMove, *r.PathSecondary, txID)
	undo.PathSecondary = ptr(r.Path)
	return e.finishUndo(r, undo)
}

// --- Copy -----------------------------------------------------------------

// Copy duplicates source to destination.
func (e *Executor) Copy(source, destination string, txID *string) (string, error) {
	if !e.Backend.IsFile(source) {
		return "", jkerr.Wrapf(jkerr.FileNotFound, "executor: copy %s", source)
	}
	if e.Backend.Exists(destination) {
		return "", jkerr.Wrapf(jkerr.PathExists, "executor: copy -> %s", destination)
	}

	r := e.record(journal.OpCopy, source, txID)
	r.PathSecondary = ptr(destination)
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.Copy(source, destination); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoCopy(r *journal.Record, txID *string) error {
	if r.PathSecondary == nil {
		return jkerr.Wrapf(jkerr.MetadataCorrupted, "executor: copy record %s missing destination", r.ID)
	}
	if err := e.Backend.RemoveFile(*r.PathSecondary); err != nil {
		return err
	}

	undo := e.record(journal.OpDelete, *r.PathSecondary, txID)
	return e.finishUndo(r, undo)
}

// --- Chmod ----------------------------------------------------------------

// Chmod changes a path's permissions (and, where supported, restores
// owner/group during undo -- see SPEC_FULL.md's Chown note).
func (e *Executor) Chmod(path string, mode fs.FileMode, txID *string) (string, error) {
	if !e.Backend.Exists(path) {
		return "", jkerr.Wrapf(jkerr.FileNotFound, "executor: chmod %s", path)
	}

	meta, err := fsmeta.Capture(path)
	if err != nil {
		return "", err
	}
	newMeta := meta
	newMeta.Permissions = uint32(mode.Perm())

	r := e.record(journal.OpChmod, path, txID)
	r.OriginalMetadata = &meta
	r.NewMetadata = &newMeta
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.SetPermissions(path, mode.Perm()); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoChmod(r *journal.Record, txID *string) error {
	if r.OriginalMetadata == nil {
		return jkerr.Wrapf(jkerr.MetadataCorrupted, "executor: chmod record %s missing original metadata", r.ID)
	}
	if err := e.Backend.SetPermissions(r.Path, fs.FileMode(r.OriginalMetadata.Permissions)); err != nil {
		return err
	}
	if err := fsmeta.Apply(r.Path, *r.OriginalMetadata); err != nil {
		return err
	}

	undo := e.record(journal.OpChmod, r.Path, txID)
	undo.NewMetadata = r.OriginalMetadata
	return e.finishUndo(r, undo)
}

// --- Create ---------------------------------------------------------------

// Create writes a new file at an absent path.
func (e *Executor) Create(path string, contentBytes []byte, perm fs.FileMode, txID *string) (string, error) {
	if e.Backend.Exists(path) {
		return "", jkerr.Wrapf(jkerr.PathExists, "executor: create %s", path)
	}

	h, err := e.Content.Store(contentBytes)
	if err != nil {
		return "", fmt.Errorf("executor: create %s: %w", path, err)
	}

	r := e.record(journal.OpCreate, path, txID)
	r.NewContentHash = &h
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.Write(path, contentBytes, perm); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoCreate(r *journal.Record, txID *string) error {
	if err := e.Backend.RemoveFile(r.Path); err != nil {
		return err
	}
	undo := e.record(journal.OpDelete, r.Path, txID)
	return e.finishUndo(r, undo)
}

// --- Mkdir ------------------------------------------------------------

// Mkdir creates a directory, optionally its parents.
func (e *Executor) Mkdir(path string, parents bool, txID *string) (string, error) {
	if e.Backend.Exists(path) {
		return "", jkerr.Wrapf(jkerr.PathExists, "executor: mkdir %s", path)
	}

	r := e.record(journal.OpMkdir, path, txID)
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	var err error
	if parents {
		err = e.Backend.CreateDirAll(path, 0o755)
	} else {
		err = e.Backend.CreateDir(path, 0o755)
	}
	if err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoMkdir(r *journal.Record, txID *string) error {
	if err := e.Backend.RemoveDir(r.Path); err != nil {
		return err
	}
	undo := e.record(journal.OpRmdir, r.Path, txID)
	return e.finishUndo(r, undo)
}

// --- Rmdir (empty) ----------------------------------------------------

// Rmdir removes an empty directory. Use RmdirRecursive for a
// non-empty one.
func (e *Executor) Rmdir(path string, txID *string) (string, error) {
	if !e.Backend.IsDir(path) {
		return "", jkerr.Wrapf(jkerr.DirectoryNotFound, "executor: rmdir %s", path)
	}

	meta, err := fsmeta.Capture(path)
	if err != nil {
		return "", err
	}

	r := e.record(journal.OpRmdir, path, txID)
	r.OriginalMetadata = &meta
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.RemoveDir(path); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

// RmdirRecursive removes a directory and everything under it, capturing
// a manifest of every file's relative path and content hash so undo
// can recreate the directory and every file in it with its original
// bytes. Undo does not recreate empty subdirectories, and it writes the
// restored files with mode 0644 rather than their original permissions.
func (e *Executor) RmdirRecursive(path string, txID *string) (string, error) {
	if !e.Backend.IsDir(path) {
		return "", jkerr.Wrapf(jkerr.DirectoryNotFound, "executor: rmdir -r %s", path)
	}

	meta, err := fsmeta.Capture(path)
	if err != nil {
		return "", err
	}

	var entries []ManifestEntry
	walkErr := e.Backend.WalkDir(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(path, p)
		if relErr != nil {
			return relErr
		}
		data, readErr := e.Backend.Read(p)
		if readErr != nil {
			return readErr
		}
		h, storeErr := e.Content.Store(data)
		if storeErr != nil {
			return storeErr
		}
		entries = append(entries, ManifestEntry{RelPath: rel, Hash: h})
		return nil
	})
	if walkErr != nil {
		return "", fmt.Errorf("executor: rmdir -r %s: capture: %w", path, walkErr)
	}

	manifestBytes, err := encodeManifest(Manifest{Entries: entries})
	if err != nil {
		return "", err
	}
	manifestHash, err := e.Content.Store(manifestBytes)
	if err != nil {
		return "", fmt.Errorf("executor: rmdir -r %s: store manifest: %w", path, err)
	}

	r := e.record(journal.OpRmdir, path, txID)
	r.ContentHash = &manifestHash
	r.OriginalMetadata = &meta
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.RemoveDirAll(path); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoRmdir(r *journal.Record, txID *string) error {
	perm := os.FileMode(0o755)
	if r.OriginalMetadata != nil {
		perm = fs.FileMode(r.OriginalMetadata.Permissions)
	}
	if err := e.Backend.CreateDirAll(r.Path, perm); err != nil {
		return err
	}
	if r.OriginalMetadata != nil {
		if err := fsmeta.Apply(r.Path, *r.OriginalMetadata); err != nil {
			return err
		}
	}

	if r.ContentHash != nil {
		manifestBytes, err := e.Content.Retrieve(*r.ContentHash)
		if err != nil {
			return err
		}
		manifest, err := decodeManifest(manifestBytes)
		if err != nil {
			return err
		}
		for _, entry := range manifest.Entries {
			data, err := e.Content.Retrieve(entry.Hash)
			if err != nil {
				return err
			}
			full := filepath.Join(r.Path, entry.RelPath)
			if err := e.Backend.CreateDirAll(filepath.Dir(full), 0o755); err != nil {
				return err
			}
			if err := e.Backend.Write(full, data, 0o644); err != nil {
				return err
			}
		}
	}

	undo := e.record(journal.OpMkdir, r.Path, txID)
	return e.finishUndo(r, undo)
}

// --- Symlink ----------------------------------------------------------

// Symlink creates a symbolic link at linkPath pointing to target.
func (e *Executor) Symlink(linkPath, target string, txID *string) (string, error) {
	if e.Backend.Exists(linkPath) {
		return "", jkerr.Wrapf(jkerr.PathExists, "executor: symlink %s", linkPath)
	}

	r := e.record(journal.OpSymlink, linkPath, txID)
	r.PathSecondary = ptr(target)
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.Symlink(target, linkPath); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoSymlink(r *journal.Record, txID *string) error {
	if err := e.Backend.RemoveFile(r.Path); err != nil {
		return err
	}
	undo := e.record(journal.OpDelete, r.Path, txID)
	return e.finishUndo(r, undo)
}

// --- Append -----------------------------------------------------------

// Append writes appended bytes to the end of an existing file.
func (e *Executor) Append(path string, data []byte, txID *string) (string, error) {
	if !e.Backend.IsFile(path) {
		return "", jkerr.Wrapf(jkerr.FileNotFound, "executor: append %s", path)
	}

	meta, err := fsmeta.Capture(path)
	if err != nil {
		return "", err
	}
	h, err := e.Content.Store(data)
	if err != nil {
		return "", fmt.Errorf("executor: append %s: %w", path, err)
	}

	r := e.record(journal.OpAppend, path, txID)
	r.OriginalMetadata = &meta
	r.ContentHash = &h
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.Append(path, data); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoAppend(r *journal.Record, txID *string) error {
	if r.OriginalMetadata == nil {
		return jkerr.Wrapf(jkerr.MetadataCorrupted, "executor: append record %s missing original size", r.ID)
	}
	if err := e.Backend.Truncate(r.Path, int64(r.OriginalMetadata.Size)); err != nil {
		return err
	}
	undo := e.record(journal.OpTruncate, r.Path, txID)
	return e.finishUndo(r, undo)
}

// --- Truncate ----------------------------------------------------------

// Truncate sets an existing file's length, capturing its full bytes
// for undo (a delta is not worth it: the whole point of truncate is
// usually to discard most of the file).
func (e *Executor) Truncate(path string, size int64, txID *string) (string, error) {
	if !e.Backend.IsFile(path) {
		return "", jkerr.Wrapf(jkerr.FileNotFound, "executor: truncate %s", path)
	}

	meta, err := fsmeta.Capture(path)
	if err != nil {
		return "", err
	}
	original, err := e.Backend.Read(path)
	if err != nil {
		return "", err
	}
	h, err := e.Content.Store(original)
	if err != nil {
		return "", fmt.Errorf("executor: truncate %s: %w", path, err)
	}

	r := e.record(journal.OpTruncate, path, txID)
	r.ContentHash = &h
	r.OriginalMetadata = &meta
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if err := e.Backend.Truncate(path, size); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoTruncate(r *journal.Record, txID *string) error {
	if r.ContentHash == nil {
		return jkerr.Wrapf(jkerr.MetadataCorrupted, "executor: truncate record %s missing captured bytes", r.ID)
	}
	data, err := e.Content.Retrieve(*r.ContentHash)
	if err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if r.OriginalMetadata != nil {
		perm = fs.FileMode(r.OriginalMetadata.Permissions)
	}
	if err := e.Backend.Write(r.Path, data, perm); err != nil {
		return err
	}
	if r.OriginalMetadata != nil {
		if err := fsmeta.Apply(r.Path, *r.OriginalMetadata); err != nil {
			return err
		}
	}

	restoredHash := contenthash.Sum(data)
	undo := e.record(journal.OpModify, r.Path, txID)
	undo.NewContentHash = &restoredHash
	return e.finishUndo(r, undo)
}

// --- Touch --------------------------------------------------------------

// Touch creates an empty file if absent (and create is true), or
// updates an existing file's mtime to now.
func (e *Executor) Touch(path string, create bool, txID *string) (string, error) {
	existed := e.Backend.Exists(path)

	r := e.record(journal.OpTouch, path, txID)
	if existed {
		meta, err := fsmeta.Capture(path)
		if err != nil {
			return "", err
		}
		r.OriginalMetadata = &meta
	}
	if err := e.Journal.Append(r); err != nil {
		return "", err
	}

	if !existed {
		if !create {
			return r.ID, jkerr.Wrapf(jkerr.FileNotFound, "executor: touch %s", path)
		}
		if err := e.Backend.Write(path, nil, 0o644); err != nil {
			return r.ID, err
		}
		return r.ID, nil
	}

	if err := e.Backend.SetMtime(path, e.now()); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

func (e *Executor) undoTouch(r *journal.Record, txID *string) error {
	if r.OriginalMetadata != nil {
		if err := fsmeta.ApplyMtime(r.Path, *r.OriginalMetadata); err != nil {
			return err
		}
		undo := e.record(journal.OpTouch, r.Path, txID)
		undo.NewMetadata = r.OriginalMetadata
		return e.finishUndo(r, undo)
	}

	if err := e.Backend.RemoveFile(r.Path); err != nil {
		return err
	}
	undo := e.record(journal.OpDelete, r.Path, txID)
	return e.finishUndo(r, undo)
}

// --- Undo dispatch -------------------------------------------------------

// finishUndo appends the new forward record documenting the inverse
// mutation and flags the original record as undone.
func (e *Executor) finishUndo(original *journal.Record, undo *journal.Record) error {
	if err := e.Journal.Append(undo); err != nil {
		return err
	}
	if err := e.Journal.MarkUndone(original.ID, undo.ID); err != nil {
		return err
	}
	logging.WithOperation(original.ID).Debug().
		Str("undo_operation_id", undo.ID).
		Str("op_type", string(original.OpType)).
		Str("path", original.Path).
		Msg("operation undone")
	return nil
}

// Undo inverts the operation recorded under opID. It fails if the
// record is already undone, and dispatches to the per-op inverse
// action of spec §4.3.
func (e *Executor) Undo(opID string, txID *string) error {
	r, err := e.Journal.Get(opID)
	if err != nil {
		return err
	}
	if r.Undone {
		return jkerr.Wrapf(jkerr.OperationFailed, "executor: %s already undone", opID)
	}

	switch r.OpType {
	case journal.OpDelete:
		return e.undoDelete(r, txID)
	case journal.OpModify:
		return e.undoModify(r, txID)
	case journal.OpMove:
		return e.undoMove(r, txID)
	case journal.OpCopy:
		return e.undoCopy(r, txID)
	case journal.OpChmod:
		return e.undoChmod(r, txID)
	case journal.OpCreate:
		return e.undoCreate(r, txID)
	case journal.OpMkdir:
		return e.undoMkdir(r, txID)
	case journal.OpRmdir:
		return e.undoRmdir(r, txID)
	case journal.OpSymlink:
		return e.undoSymlink(r, txID)
	case journal.OpAppend:
		return e.undoAppend(r, txID)
	case journal.OpTruncate:
		return e.undoTruncate(r, txID)
	case journal.OpTouch:
		return e.undoTouch(r, txID)
	default:
		return jkerr.Wrapf(jkerr.OperationFailed, "executor: unknown op type %q", r.OpType)
	}
}

func encodeDelta(d delta.Delta) ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("executor: encode delta: %w", err)
	}
	return b, nil
}

func decodeDelta(b []byte) (delta.Delta, error) {
	var d delta.Delta
	if err := json.Unmarshal(b, &d); err != nil {
		return delta.Delta{}, fmt.Errorf("executor: decode delta: %w", err)
	}
	return d, nil
}
