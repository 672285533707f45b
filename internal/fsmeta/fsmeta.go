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

// Package fsmeta captures and reapplies the FileMetadata described in
// spec §3: permissions, owner, group, size, mtime, and symlink target.
// Capture always uses an lstat-equivalent call and never follows
// symlinks.
package fsmeta

import (
	"fmt"
	"os"
	"time"
)

// Metadata mirrors spec §3's FileMetadata.
type Metadata struct {
	Permissions   uint32    `json:"permissions"`
	Owner         string    `json:"owner"`
	Group         string    `json:"group"`
	Size          uint64    `json:"size"`
	Modified      time.Time `json:"modified"`
	IsSymlink     bool      `json:"is_symlink"`
	SymlinkTarget *string   `json:"symlink_target,omitempty"`
}

// Capture lstats path and returns its Metadata.
func Capture(path string) (Metadata, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("fsmeta: lstat %q: %w", path, err)
	}

	m := Metadata{
		Permissions: uint32(info.Mode().Perm()),
		Size:        uint64(info.Size()),
		Modified:    info.ModTime(),
		IsSymlink:   info.Mode()&os.ModeSymlink != 0,
	}

	owner, group, err := ownerGroup(info)
	if err != nil {
		return Metadata{}, err
	}
	m.Owner, m.Group = owner, group

	if m.IsSymlink {
		target, err := os.Readlink(path)
		if err != nil {
			return Metadata{}, fmt.Errorf("fsmeta: readlink %q: %w", path, err)
		}
		m.SymlinkTarget = &target
	}

	return m, nil
}

// Apply reapplies the captured permissions and ownership to path. It
// never touches the symlink target (recreating a symlink is the
// executor's job, not metadata's) and never follows symlinks when
// changing ownership.
func Apply(path string, m Metadata) error {
	if !m.IsSymlink {
		if err := os.Chmod(path, os.FileMode(m.Permissions)); err != nil {
			return fmt.Errorf("fsmeta: chmod %q: %w", path, err)
		}
	}
	if err := applyOwnerGroup(path, m); err != nil {
		return err
	}
	return nil
}

// ApplyMtime restores only the modification time, used by the Touch
// undo path which must not perturb permissions or ownership.
func ApplyMtime(path string, m Metadata) error {
	if err := os.Chtimes(path, m.Modified, m.Modified); err != nil {
		return fmt.Errorf("fsmeta: chtimes %q: %w", path, err)
	}
	return nil
}
