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

// Package content implements the content-addressed blob store described
// in spec §4.1: blobs are addressed by contenthash.Hash, sharded two
// hex characters deep, optionally gzip-compressed, and integrity
// checked on every retrieval.
//
// Layout: <root>/<XX>/<remaining-hex>[.gz]
package content

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/jdjewell/januskey/internal/contenthash"
	"github.com/jdjewell/januskey/internal/jkerr"
)

// Store is a content-addressed blob store rooted at Root.
type Store struct {
	Root        string
	Compression bool
}

// New returns a Store rooted at root, creating the root directory.
func New(root string, compression bool) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("content: create root %q: %w", root, err)
	}
	return &Store{Root: root, Compression: compression}, nil
}

func (s *Store) pathFor(h contenthash.Hash, compressed bool) (string, error) {
	p2, rest, err := h.ShardPath()
	if err != nil {
		return "", err
	}
	name := rest
	if compressed {
		name += ".gz"
	}
	return filepath.Join(s.Root, p2, name), nil
}

// resolvedPath locates the on-disk path for h, trying both the
// compressed and uncompressed suffix since Compression may have
// changed since a blob was written.
func (s *Store) resolvedPath(h contenthash.Hash) (path string, compressed bool, err error) {
	plain, err := s.pathFor(h, false)
	if err != nil {
		return "", false, err
	}
	if _, statErr := os.Stat(plain); statErr == nil {
		return plain, false, nil
	}
	gz, err := s.pathFor(h, true)
	if err != nil {
		return "", false, err
	}
	if _, statErr := os.Stat(gz); statErr == nil {
		return gz, true, nil
	}
	return "", false, jkerr.Wrapf(jkerr.FileNotFound, "content: blob %s", h)
}

// Store writes b into the store, addressed by its content hash. It is
// idempotent: storing equal content twice does not rewrite the blob.
func (s *Store) Store(b []byte) (contenthash.Hash, error) {
	h := contenthash.Sum(b)

	if _, _, err := s.resolvedPath(h); err == nil {
		return h, nil // dedup: already present
	}

	path, err := s.pathFor(h, s.Compression)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("content: mkdir %q: %w", filepath.Dir(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".ingest-*")
	if err != nil {
		return "", fmt.Errorf("content: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op once renamed into place
	}()

	if s.Compression {
		gw := gzip.NewWriter(tmp)
		if _, err := gw.Write(b); err != nil {
			tmp.Close()
			return "", fmt.Errorf("content: gzip write: %w", err)
		}
		if err := gw.Close(); err != nil {
			tmp.Close()
			return "", fmt.Errorf("content: gzip close: %w", err)
		}
	} else {
		if _, err := tmp.Write(b); err != nil {
			tmp.Close()
			return "", fmt.Errorf("content: write: %w", err)
		}
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("content: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("content: close temp: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		// Lost a race with a concurrent store of the same content: dedup.
		if _, _, statErr := s.resolvedPath(h); statErr == nil {
			return h, nil
		}
		return "", fmt.Errorf("content: rename into place: %w", err)
	}

	return h, nil
}

// StoreFile reads path and stores its bytes.
func (s *Store) StoreFile(path string) (contenthash.Hash, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("content: read %q: %w", path, err)
	}
	return s.Store(b)
}

// Retrieve reads the blob addressed by h, decompressing if needed, and
// fails loudly if the decoded bytes do not hash back to h.
func (s *Store) Retrieve(h contenthash.Hash) ([]byte, error) {
	path, compressed, err := s.resolvedPath(h)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read %q: %w", path, err)
	}

	var b []byte
	if compressed {
		gr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("content: gzip open %q: %w", path, err)
		}
		defer gr.Close()
		b, err = io.ReadAll(gr)
		if err != nil {
			return nil, fmt.Errorf("content: gzip read %q: %w", path, err)
		}
	} else {
		b = raw
	}

	actual := contenthash.Sum(b)
	if actual != h {
		return nil, &jkerr.ContentIntegrityError{Expected: string(h), Actual: string(actual)}
	}
	return b, nil
}

// Exists reports whether h is present in the store.
func (s *Store) Exists(h contenthash.Hash) bool {
	_, _, err := s.resolvedPath(h)
	return err == nil
}

// Delete removes the blob addressed by h. It is used internally by the
// obliteration manager after secure overwrite; callers wanting ordinary
// reversible deletion should never call this directly.
func (s *Store) Delete(h contenthash.Hash) error {
	path, _, err := s.resolvedPath(h)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("content: remove %q: %w", path, err)
	}
	return nil
}

// Path returns the resolved on-disk path and whether it is gzip
// compressed, for callers (obliteration) that need direct file access.
func (s *Store) Path(h contenthash.Hash) (path string, compressed bool, err error) {
	return s.resolvedPath(h)
}

// TotalSize returns the sum of on-disk blob sizes (compressed size if
// compression is in use for that blob).
func (s *Store) TotalSize() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("content: walk %q: %w", s.Root, err)
	}
	return total, nil
}

// Count returns the number of blobs currently stored.
func (s *Store) Count() (int, error) {
	var n int
	err := filepath.WalkDir(s.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("content: walk %q: %w", s.Root, err)
	}
	return n, nil
}

// Hashes returns the content hash of every blob currently stored, used
// by doctor --recheck to rehash every blob.
func (s *Store) Hashes() ([]contenthash.Hash, error) {
	var hashes []contenthash.Hash
	err := filepath.WalkDir(s.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		dir := filepath.Dir(rel)
		base := filepath.Base(rel)
		if filepath.Ext(base) == ".gz" {
			base = base[:len(base)-len(".gz")]
		}
		h, err := contenthash.FromHex(dir + base)
		if err != nil {
			return nil // not a blob file (e.g. stray tmp); skip
		}
		hashes = append(hashes, h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("content: walk %q: %w", s.Root, err)
	}
	return hashes, nil
}
