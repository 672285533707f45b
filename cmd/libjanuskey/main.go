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

// Command libjanuskey builds januskey's C-compatible shared/static
// library (-buildmode=c-shared or c-archive). cgo's //export directive
// only takes effect in package main, so this package stays a thin
// translation layer over internal/ffi's handle-table logic: every
// function here does C-type conversion and nothing else.
package main

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	int32_t initialized;
	uint32_t total_operations;
	uint32_t reversible_operations;
	uint32_t obliterated_count;
	uint64_t storage_bytes;
} jk_status_t;
*/
import "C"

import (
	"unsafe"

	"github.com/jdjewell/januskey/internal/ffi"
)

func cGoString(s *C.char) (string, bool) {
	if s == nil {
		return "", false
	}
	return C.GoString(s), true
}

// jk_init initializes fresh januskey state at path and returns a
// handle to it, or the negated result code on failure.
//
//export jk_init
func jk_init(path *C.char) C.int32_t {
	p, ok := cGoString(path)
	if !ok {
		return -C.int32_t(ffi.ErrNullPointer)
	}
	handle, res := ffi.Init(p)
	if res != ffi.Ok {
		return -C.int32_t(res)
	}
	return C.int32_t(handle)
}

// jk_open opens existing januskey state at path for operations
// attributed to user, returning a handle or the negated result code.
//
//export jk_open
func jk_open(path *C.char, user *C.char) C.int32_t {
	p, ok := cGoString(path)
	if !ok {
		return -C.int32_t(ffi.ErrNullPointer)
	}
	u, _ := cGoString(user)
	handle, res := ffi.Open(p, u)
	if res != ffi.Ok {
		return -C.int32_t(res)
	}
	return C.int32_t(handle)
}

// jk_is_initialized reports whether path has initialized januskey
// state, without opening it.
//
//export jk_is_initialized
func jk_is_initialized(path *C.char) C.int32_t {
	p, ok := cGoString(path)
	if !ok {
		return 0
	}
	if ffi.IsInitialized(p) {
		return 1
	}
	return 0
}

// jk_close releases a handle returned by jk_init or jk_open.
//
//export jk_close
func jk_close(handle C.int32_t) {
	ffi.Close(int32(handle))
}

// jk_status fills out with handle's current repo state.
//
//export jk_status
func jk_status(handle C.int32_t, out *C.jk_status_t) C.int32_t {
	if out == nil {
		return C.int32_t(ffi.ErrNullPointer)
	}
	status, res := ffi.GetStatus(int32(handle))
	if res != ffi.Ok {
		return C.int32_t(res)
	}
	out.initialized = 1
	out.total_operations = C.uint32_t(status.TotalOperations)
	out.reversible_operations = C.uint32_t(status.ReversibleOperations)
	out.obliterated_count = C.uint32_t(status.ObliteratedCount)
	out.storage_bytes = C.uint64_t(status.StorageBytes)
	return C.int32_t(ffi.Ok)
}

// jk_undo_last undoes handle's most recent undoable operation.
//
//export jk_undo_last
func jk_undo_last(handle C.int32_t) C.int32_t {
	return C.int32_t(ffi.UndoLast(int32(handle)))
}

// jk_undo_by_id undoes the operation identified by opID.
//
//export jk_undo_by_id
func jk_undo_by_id(handle C.int32_t, opID *C.char) C.int32_t {
	id, ok := cGoString(opID)
	if !ok {
		return C.int32_t(ffi.ErrNullPointer)
	}
	return C.int32_t(ffi.UndoByID(int32(handle), id))
}

// jk_obliterate destroys the blob addressed by contentHash. reason
// and legalBasis may be NULL.
//
//export jk_obliterate
func jk_obliterate(handle C.int32_t, contentHash *C.char, reason *C.char, legalBasis *C.char) C.int32_t {
	h, ok := cGoString(contentHash)
	if !ok {
		return C.int32_t(ffi.ErrNullPointer)
	}
	var reasonPtr, legalPtr *string
	if s, ok := cGoString(reason); ok {
		reasonPtr = &s
	}
	if s, ok := cGoString(legalBasis); ok {
		legalPtr = &s
	}
	return C.int32_t(ffi.Obliterate(int32(handle), h, reasonPtr, legalPtr))
}

// jk_history_count returns the number of journal records, or -1 if
// handle is invalid.
//
//export jk_history_count
func jk_history_count(handle C.int32_t) C.int32_t {
	return C.int32_t(ffi.HistoryCount(int32(handle)))
}

// jk_history_get copies the path of the index'th most recent journal
// record (0 is most recent) into buf, up to bufLen bytes including
// the terminating NUL. Returns the number of bytes written, or the
// negated result code.
//
//export jk_history_get
func jk_history_get(handle C.int32_t, index C.int32_t, buf *C.char, bufLen C.int32_t) C.int32_t {
	if buf == nil || bufLen <= 0 {
		return -C.int32_t(ffi.ErrNullPointer)
	}
	path, res := ffi.HistoryPath(int32(handle), int32(index))
	if res != ffi.Ok {
		return -C.int32_t(res)
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(bufLen))
	n := copy(dst[:len(dst)-1], path)
	dst[n] = 0
	return C.int32_t(n)
}

// jk_version returns the FFI's semantic version string. The caller
// must free the returned pointer with jk_free_string.
//
//export jk_version
func jk_version() *C.char {
	return C.CString(ffi.Version)
}

// jk_name returns the library's name. The caller must free the
// returned pointer with jk_free_string.
//
//export jk_name
func jk_name() *C.char {
	return C.CString(ffi.Name)
}

// jk_free_string releases a string previously returned by a function
// in this library that is documented as caller-owned.
//
//export jk_free_string
func jk_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}

func main() {}
