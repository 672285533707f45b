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

// Package state tracks small pieces of CLI-session state that live
// outside any single working directory's .januskey state: currently,
// just the most recently opened directory, written to
// $XDG_STATE_HOME/januskey/active.json after every successful open so
// `januskey status` run with no --dir can tell the user where they
// last were.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Active records the last working directory januskey successfully
// opened.
type Active struct {
	LastDir   string `json:"last_dir,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func activePath() (string, error) {
	return xdg.StateFile(filepath.Join("januskey", "active.json"))
}

// LoadActive reads the last-known active state, returning a zero
// value if none has been recorded yet.
func LoadActive() (Active, error) {
	p, err := activePath()
	if err != nil {
		return Active{}, err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Active{}, nil
		}
		return Active{}, fmt.Errorf("state: read %s: %w", p, err)
	}

	var a Active
	if err := json.Unmarshal(b, &a); err != nil {
		return Active{}, fmt.Errorf("state: parse %s: %w", p, err)
	}
	return a, nil
}

// SaveActive records dir as the most recently opened working
// directory.
func SaveActive(dir string) error {
	p, err := activePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("state: mkdir %s: %w", filepath.Dir(p), err)
	}

	a := Active{
		LastDir:   dir,
		UpdatedAt: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}

	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal active: %w", err)
	}
	b = append(b, '\n')

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("state: write %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("state: rename %s -> %s: %w", tmp, p, err)
	}

	return nil
}
