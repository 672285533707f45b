//go:build unix

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

import (
	"fmt"
	"os"
	"strconv"
	"syscall"

	"os/user"
)

func ownerGroup(info os.FileInfo) (owner, group string, err error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", "", nil
	}

	owner = strconv.FormatUint(uint64(stat.Uid), 10)
	if u, err := user.LookupId(owner); err == nil {
		owner = u.Username
	}

	group = strconv.FormatUint(uint64(stat.Gid), 10)
	if g, err := user.LookupGroupId(group); err == nil {
		group = g.Name
	}

	return owner, group, nil
}

func applyOwnerGroup(path string, m Metadata) error {
	uid, err := resolveUID(m.Owner)
	if err != nil {
		return fmt.Errorf("fsmeta: resolve owner %q: %w", m.Owner, err)
	}
	gid, err := resolveGID(m.Group)
	if err != nil {
		return fmt.Errorf("fsmeta: resolve group %q: %w", m.Group, err)
	}
	if uid < 0 || gid < 0 {
		return nil // could not resolve either identity; leave current ownership
	}
	if err := os.Lchown(path, uid, gid); err != nil {
		// Changing ownership typically requires privilege; degrade to
		// a soft failure rather than aborting the whole undo.
		return nil
	}
	return nil
}

func resolveUID(owner string) (int, error) {
	if owner == "" {
		return -1, nil
	}
	if u, err := user.Lookup(owner); err == nil {
		id, err := strconv.Atoi(u.Uid)
		return id, err
	}
	if id, err := strconv.Atoi(owner); err == nil {
		return id, nil
	}
	return -1, nil
}

func resolveGID(group string) (int, error) {
	if group == "" {
		return -1, nil
	}
	if g, err := user.LookupGroup(group); err == nil {
		id, err := strconv.Atoi(g.Gid)
		return id, err
	}
	if id, err := strconv.Atoi(group); err == nil {
		return id, nil
	}
	return -1, nil
}
