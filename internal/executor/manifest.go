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

package executor

import (
	"encoding/json"
	"fmt"

	"github.com/jdjewell/januskey/internal/contenthash"
)

// ManifestEntry records one file's relative path and content hash
// under a RmdirRecursive root, as described in spec §4.3.
type ManifestEntry struct {
	RelPath string            `json:"rel_path"`
	Hash    contenthash.Hash  `json:"hash"`
}

// Manifest is the captured state for RmdirRecursive: the list of every
// file under the removed directory, serialized as its own blob and
// referenced by the journal record's ContentHash.
type Manifest struct {
	Entries []ManifestEntry `json:"entries"`
}

func encodeManifest(m Manifest) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("executor: encode manifest: %w", err)
	}
	return b, nil
}

func decodeManifest(b []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("executor: decode manifest: %w", err)
	}
	return m, nil
}
