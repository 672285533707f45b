//go:build !unix

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

package fsmeta

import "os"

// ownerGroup is a no-op on non-Unix platforms: there is no portable
// uid/gid concept to surface.
func ownerGroup(info os.FileInfo) (owner, group string, err error) {
	return "", "", nil
}

// applyOwnerGroup is a no-op on non-Unix platforms.
func applyOwnerGroup(path string, m Metadata) error {
	return nil
}
