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

// Package oblit implements the obliteration subsystem of spec §4.6: an
// intentionally irreversible, audited destruction of a stored blob via
// multi-pass secure overwrite plus a cryptographic commitment proof.
// Records are chained by hash (each carries the prior record's hash) so
// the obliteration log can itself be tamper-checked end to end -- an
// extension this spec's distillation drops but the original
// attestation log performs.
package oblit

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jdjewell/januskey/internal/content"
	"github.com/jdjewell/januskey/internal/contenthash"
	"github.com/jdjewell/januskey/internal/jkerr"
)

// OverwritePasses is the number of secure-overwrite passes per spec
// §4.6 step 2 (zero, 0xFF, random).
const OverwritePasses = 3

// ObliterationProof is the cryptographic attestation of destruction
// described in spec §3.
type ObliterationProof struct {
	ID              string          `json:"id"`
	ContentHash     contenthash.Hash `json:"content_hash"`
	Timestamp       time.Time       `json:"timestamp"`
	User            string          `json:"user"`
	Nonce           []byte          `json:"nonce"`
	Commitment      string          `json:"commitment"`
	OverwritePasses int             `json:"overwrite_passes"`
	StorageCleared  bool            `json:"storage_cleared"`
}

// computeCommitment reproduces spec §3's
// SHA-256(content_hash_hex || nonce || rfc3339(timestamp)).
func computeCommitment(h contenthash.Hash, nonce []byte, ts time.Time) (string, error) {
	hexDigest, err := h.Hex()
	if err != nil {
		return "", err
	}
	hasher := sha256.New()
	hasher.Write([]byte(hexDigest))
	hasher.Write(nonce)
	hasher.Write([]byte(ts.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyCommitment recomputes the commitment from the proof's own
// fields and reports whether it matches the stored one.
func (p ObliterationProof) VerifyCommitment() bool {
	got, err := computeCommitment(p.ContentHash, p.Nonce, p.Timestamp)
	if err != nil {
		return false
	}
	return got == p.Commitment
}

// ObliterationRecord is one entry of the append-only obliteration log
// (spec §3), extended with ChainHash linking it to the record before
// it -- sha256(prevChainHash || proof.id || proof.commitment) -- so a
// single hash at the tail of the log attests to the whole history.
type ObliterationRecord struct {
	ID                string            `json:"id"`
	Timestamp         time.Time         `json:"timestamp"`
	User              string            `json:"user"`
	ContentHash       contenthash.Hash  `json:"content_hash"`
	Reason            *string           `json:"reason,omitempty"`
	LegalBasis        *string           `json:"legal_basis,omitempty"`
	Proof             ObliterationProof `json:"proof"`
	CleanedOperationIDs []string        `json:"cleaned_operation_ids,omitempty"`
	ChainHash         string            `json:"chain_hash"`
}

func chainHash(prev string, proof ObliterationProof) string {
	hasher := sha256.New()
	hasher.Write([]byte(prev))
	hasher.Write([]byte(proof.ID))
	hasher.Write([]byte(proof.Commitment))
	return hex.EncodeToString(hasher.Sum(nil))
}

const currentVersion = "1.0"

type document struct {
	Version string                 `json:"version"`
	Records []*ObliterationRecord  `json:"records"`
}

// Manager persists obliteration records to obliterations.json and
// performs secure destruction against a content.Store.
type Manager struct {
	path    string
	doc     document
	content *content.Store
}

// Open loads the obliteration log from path, creating an empty one if
// absent.
func Open(path string, store *content.Store) (*Manager, error) {
	m := &Manager{path: path, doc: document{Version: currentVersion}, content: store}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("oblit: read %q: %w", path, err)
	}
	if err := json.Unmarshal(b, &m.doc); err != nil {
		return nil, jkerr.Wrapf(jkerr.MetadataCorrupted, "oblit: parse %q: %v", path, err)
	}
	return m, nil
}

func (m *Manager) persist() error {
	b, err := json.MarshalIndent(m.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("oblit: marshal: %w", err)
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("oblit: mkdir %q: %w", filepath.Dir(m.path), err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("oblit: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("oblit: rename %q -> %q: %w", tmp, m.path, err)
	}
	return nil
}

func (m *Manager) lastChainHash() string {
	if len(m.doc.Records) == 0 {
		return ""
	}
	return m.doc.Records[len(m.doc.Records)-1].ChainHash
}

// SecureOverwriter is the narrow capability oblit needs from a
// filesystem backend: overwriting a blob's bytes on disk before
// unlinking it. content.Store.Path exposes the blob's real path, so
// fsbackend.Local.SecureOverwrite (or an equivalent) satisfies this.
type SecureOverwriter interface {
	SecureOverwrite(path string, passes int) error
}

// Obliterate destroys the blob addressed by h: secure-overwrite its
// on-disk bytes, remove it, generate a cryptographic proof, and append
// an audit record.
func (m *Manager) Obliterate(overwriter SecureOverwriter, h contenthash.Hash, user string, reason, legalBasis *string, cleanedOperationIDs []string) (*ObliterationRecord, error) {
	path, _, err := m.content.Path(h)
	if err != nil {
		return nil, err
	}

	if err := overwriter.SecureOverwrite(path, OverwritePasses); err != nil {
		return nil, fmt.Errorf("oblit: secure overwrite %s: %w", h, err)
	}
	if err := m.content.Delete(h); err != nil {
		return nil, fmt.Errorf("oblit: remove blob %s: %w", h, err)
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("oblit: generate nonce: %w", err)
	}
	ts := time.Now().UTC()
	commitment, err := computeCommitment(h, nonce, ts)
	if err != nil {
		return nil, err
	}

	proof := ObliterationProof{
		ID:              uuid.NewString(),
		ContentHash:     h,
		Timestamp:       ts,
		User:            user,
		Nonce:           nonce,
		Commitment:      commitment,
		OverwritePasses: OverwritePasses,
		StorageCleared:  true,
	}

	record := &ObliterationRecord{
		ID:                  uuid.NewString(),
		Timestamp:           ts,
		User:                user,
		ContentHash:         h,
		Reason:              reason,
		LegalBasis:          legalBasis,
		Proof:               proof,
		CleanedOperationIDs: cleanedOperationIDs,
		ChainHash:           chainHash(m.lastChainHash(), proof),
	}

	m.doc.Records = append(m.doc.Records, record)
	if err := m.persist(); err != nil {
		m.doc.Records = m.doc.Records[:len(m.doc.Records)-1]
		return nil, err
	}
	return record, nil
}

// BatchResult is the outcome of ObliterateBatch.
type BatchResult struct {
	Successful []*ObliterationRecord
	Failed     []BatchFailure
}

// BatchFailure pairs a hash with the error obliterating it produced.
type BatchFailure struct {
	Hash contenthash.Hash
	Err  error
}

// ObliterateBatch attempts to obliterate every hash in hashes. A
// failure on one hash does not abort the batch.
func (m *Manager) ObliterateBatch(overwriter SecureOverwriter, hashes []contenthash.Hash, user string, reason, legalBasis *string) BatchResult {
	var result BatchResult
	for _, h := range hashes {
		record, err := m.Obliterate(overwriter, h, user, reason, legalBasis, nil)
		if err != nil {
			result.Failed = append(result.Failed, BatchFailure{Hash: h, Err: err})
			continue
		}
		result.Successful = append(result.Successful, record)
	}
	return result
}

// Get returns the obliteration record with the given proof id.
func (m *Manager) Get(proofID string) (*ObliterationRecord, error) {
	for _, r := range m.doc.Records {
		if r.Proof.ID == proofID {
			return r, nil
		}
	}
	return nil, jkerr.Wrapf(jkerr.InvalidOperationID, "oblit: proof %s", proofID)
}

// All returns every obliteration record in append order.
func (m *Manager) All() []*ObliterationRecord {
	return m.doc.Records
}

// Verify recomputes the commitment for proofID and confirms the
// content store no longer holds the corresponding blob.
func (m *Manager) Verify(proofID string) (bool, error) {
	r, err := m.Get(proofID)
	if err != nil {
		return false, err
	}
	if !r.Proof.VerifyCommitment() {
		return false, nil
	}
	if m.content.Exists(r.ContentHash) {
		return false, nil
	}
	return true, nil
}

// VerifyChain walks the full log and confirms every record's
// ChainHash links correctly to its predecessor, returning the index of
// the first broken link (or -1 if the chain is intact).
func (m *Manager) VerifyChain() int {
	prev := ""
	for i, r := range m.doc.Records {
		if chainHash(prev, r.Proof) != r.ChainHash {
			return i
		}
		prev = r.ChainHash
	}
	return -1
}
