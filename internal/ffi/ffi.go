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

// Package ffi implements the handle-table logic backing januskey's
// C-compatible foreign function interface. It holds no cgo of its own
// -- the exported C functions live in cmd/libjanuskey, since cgo's
// //export only works from package main -- so this package stays
// plain, testable Go that cmd/libjanuskey's thin wrappers call into.
//
// The surface mirrors the original Rust implementation's ffi module:
// an opaque handle over a Repo, a result-code enum, and plain
// accessor functions rather than exposing Go structs across the
// boundary. Handles are small int32 keys into an in-process table
// rather than raw pointers, so a misbehaving caller can at worst pass
// a stale or out-of-range handle, never dereference Go memory.
package ffi

import (
	"errors"
	"sync"

	"github.com/jdjewell/januskey/internal/contenthash"
	"github.com/jdjewell/januskey/internal/jkerr"
	"github.com/jdjewell/januskey/internal/repo"
)

// Result is the FFI's result-code enum, matching the original ffi.rs's
// JkResult verbatim.
type Result int32

const (
	Ok                 Result = 0
	ErrNotInitialized  Result = 1
	ErrIoError         Result = 2
	ErrNotFound        Result = 3
	ErrInvalidPath     Result = 4
	ErrOperationFailed Result = 5
	ErrNullPointer     Result = 6
	ErrInvalidUtf8     Result = 7
)

// ResultFor maps a Go error from the repo layer onto the FFI's fixed
// result-code enum.
func ResultFor(err error) Result {
	if err == nil {
		return Ok
	}
	switch {
	case errors.Is(err, jkerr.NotInitialized):
		return ErrNotInitialized
	case errors.Is(err, jkerr.FileNotFound), errors.Is(err, jkerr.DirectoryNotFound), errors.Is(err, jkerr.InvalidOperationID):
		return ErrNotFound
	case errors.Is(err, jkerr.PathExists):
		return ErrInvalidPath
	default:
		return ErrOperationFailed
	}
}

// Status is the C-compatible status snapshot returned by jk_status.
type Status struct {
	Initialized           bool
	TotalOperations       uint32
	ReversibleOperations  uint32
	ObliteratedCount      uint32
	StorageBytes          uint64
}

var (
	mu     sync.Mutex
	table  = map[int32]*repo.Repo{}
	nextID int32 = 1
)

func store(r *repo.Repo) int32 {
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	table[id] = r
	return id
}

func lookup(handle int32) (*repo.Repo, bool) {
	mu.Lock()
	defer mu.Unlock()
	r, ok := table[handle]
	return r, ok
}

// Close releases a handle. Further use of handle after this call is
// undefined.
func Close(handle int32) {
	mu.Lock()
	defer mu.Unlock()
	delete(table, handle)
}

// Init initializes fresh januskey state at path and returns a handle
// to it.
func Init(path string) (int32, Result) {
	r, err := repo.Init(path)
	if err != nil {
		return 0, ResultFor(err)
	}
	return store(r), Ok
}

// Open opens existing januskey state at path for operations
// attributed to user.
func Open(path, user string) (int32, Result) {
	r, err := repo.Open(path, user)
	if err != nil {
		return 0, ResultFor(err)
	}
	return store(r), Ok
}

// IsInitialized reports whether path has initialized januskey state.
func IsInitialized(path string) bool {
	return repo.IsInitialized(path)
}

// GetStatus fills out a status snapshot for handle.
func GetStatus(handle int32) (Status, Result) {
	r, ok := lookup(handle)
	if !ok {
		return Status{}, ErrNotFound
	}

	totalSize, err := r.Content.TotalSize()
	if err != nil {
		return Status{}, ResultFor(err)
	}

	records := r.Journal.All()
	var reversible uint32
	for _, rec := range records {
		if !rec.Undone {
			reversible++
		}
	}

	return Status{
		Initialized:          true,
		TotalOperations:      uint32(len(records)),
		ReversibleOperations: reversible,
		ObliteratedCount:     uint32(len(r.Oblit.All())),
		StorageBytes:         uint64(totalSize),
	}, Ok
}

// UndoLast undoes handle's most recent undoable operation.
func UndoLast(handle int32) Result {
	r, ok := lookup(handle)
	if !ok {
		return ErrNotFound
	}
	_, err := r.UndoLast()
	return ResultFor(err)
}

// UndoByID undoes the operation identified by opID.
func UndoByID(handle int32, opID string) Result {
	r, ok := lookup(handle)
	if !ok {
		return ErrNotFound
	}
	return ResultFor(r.UndoByID(opID))
}

// Obliterate destroys the blob addressed by contentHash. reason and
// legalBasis may be nil.
func Obliterate(handle int32, contentHash string, reason, legalBasis *string) Result {
	r, ok := lookup(handle)
	if !ok {
		return ErrNotFound
	}
	_, err := r.Obliterate(contenthash.Hash(contentHash), reason, legalBasis)
	return ResultFor(err)
}

// HistoryCount returns the number of journal records for handle, or
// -1 if handle is invalid.
func HistoryCount(handle int32) int32 {
	r, ok := lookup(handle)
	if !ok {
		return -1
	}
	return int32(len(r.Journal.All()))
}

// HistoryPath returns the path of the index'th most recent journal
// record (0 is most recent).
func HistoryPath(handle int32, index int32) (string, Result) {
	r, ok := lookup(handle)
	if !ok {
		return "", ErrNotFound
	}
	records := r.Journal.All()
	i := int(index)
	if i < 0 || i >= len(records) {
		return "", ErrInvalidPath
	}
	return records[len(records)-1-i].Path, Ok
}

// Version is the FFI's semantic version string.
const Version = "1.0.0"

// Name is the library's name.
const Name = "januskey"
