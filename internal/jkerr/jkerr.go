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

// Package jkerr defines the error taxonomy shared by every januskey
// component. Errors are distinguished by kind, not by type hierarchy:
// callers use errors.Is against the sentinel Kind values, or errors.As
// against the typed variants that carry extra fields.
package jkerr

import (
	"errors"
	"fmt"
)

// Kind is a sentinel error identifying the taxonomy bucket. Wrap it with
// fmt.Errorf("...: %w", Kind) to keep errors.Is working while adding
// context.
type Kind error

var (
	NotInitialized       Kind = errors.New("januskey: not initialized")
	FileNotFound         Kind = errors.New("januskey: file not found")
	DirectoryNotFound    Kind = errors.New("januskey: directory not found")
	PathExists           Kind = errors.New("januskey: path exists")
	NoActiveTransaction  Kind = errors.New("januskey: no active transaction")
	TransactionActive    Kind = errors.New("januskey: transaction already active")
	NothingToUndo        Kind = errors.New("januskey: nothing to undo")
	InvalidOperationID   Kind = errors.New("januskey: invalid operation id")
	MetadataCorrupted    Kind = errors.New("januskey: metadata corrupted")
	PermissionDenied     Kind = errors.New("januskey: permission denied")
	InvalidPattern       Kind = errors.New("januskey: invalid pattern")
	OperationFailed      Kind = errors.New("januskey: operation failed")
	UserCancelled        Kind = errors.New("januskey: cancelled by user")
)

// ContentIntegrityError reports a hash mismatch on blob retrieval.
type ContentIntegrityError struct {
	Expected string
	Actual   string
}

func (e *ContentIntegrityError) Error() string {
	return fmt.Sprintf("januskey: content integrity violation: expected %s, got %s", e.Expected, e.Actual)
}

// Is lets errors.Is(err, jkerr.ErrContentIntegrity) match any instance
// regardless of the captured hashes.
func (e *ContentIntegrityError) Is(target error) bool {
	_, ok := target.(*ContentIntegrityError)
	return ok
}

// ErrContentIntegrity is a zero-value marker usable with errors.Is.
var ErrContentIntegrity = &ContentIntegrityError{}

// Wrapf wraps kind with a formatted message, preserving
// errors.Is(result, kind) and errors.Unwrap(result) == kind.
func Wrapf(kind Kind, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}
