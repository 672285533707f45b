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

// Package delta implements the Delta codec of spec §4.2: given
// original and new byte sequences, produce an encoding that, applied
// to original, yields new. Three encodings are available (Full,
// LineDiff, BlockDiff); Compute picks one per the spec's policy.
package delta

import (
	"bytes"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Kind identifies which encoding a Delta uses.
type Kind string

const (
	KindFull      Kind = "full"
	KindLineDiff  Kind = "line_diff"
	KindBlockDiff Kind = "block_diff"
)

// fullThreshold: below this original size, always store Full (spec
// §4.2: "|original| < 4096").
const fullThreshold = 4096

// maxDeltaRatio: a diff-encoded delta must beat 0.5 * |original| and
// also be smaller than |new| to be preferred over Full.
const maxDeltaRatio = 0.5

// blockSize is the granularity of the greedy BlockDiff matcher.
const blockSize = 64

// sniffWindow bounds how much of each input is inspected to decide
// whether it is "likely text".
const sniffWindow = 8192

// LineOpKind identifies a single hunk operation in a LineDiff.
type LineOpKind string

const (
	LineContext LineOpKind = "context"
	LineAdded   LineOpKind = "added"
	LineRemoved LineOpKind = "removed"
)

// LineOp carries one line of hunk content.
type LineOp struct {
	Kind LineOpKind `json:"kind"`
	Text string     `json:"text"`
}

// LineDiff is the text encoding: an ordered list of hunks plus the
// line-ending convention to restore on Apply.
type LineDiff struct {
	Ops            []LineOp `json:"ops"`
	CRLF           bool     `json:"crlf"`
	TerminalNewline bool    `json:"terminal_newline"`
}

// BlockOpKind identifies a BlockDiff operation.
type BlockOpKind string

const (
	BlockKeep   BlockOpKind = "keep"
	BlockInsert BlockOpKind = "insert"
	BlockDelete BlockOpKind = "delete"
)

// BlockOp is one operation against the original byte sequence.
type BlockOp struct {
	Kind   BlockOpKind `json:"kind"`
	Offset int         `json:"offset,omitempty"`
	Len    int         `json:"len,omitempty"`
	Data   []byte      `json:"data,omitempty"`
}

// BlockDiff is the binary encoding: a sequence of Keep/Insert/Delete
// operations executed against the original bytes.
type BlockDiff struct {
	Ops []BlockOp `json:"ops"`
}

// Delta is the tagged-union result of Compute. Exactly one of the
// payload fields is populated, matching Kind.
type Delta struct {
	Kind      Kind       `json:"kind"`
	Full      []byte     `json:"full,omitempty"`
	LineDiff  *LineDiff  `json:"line_diff,omitempty"`
	BlockDiff *BlockDiff `json:"block_diff,omitempty"`
}

// Compute produces a Delta that, applied to original, yields newBytes.
func Compute(original, newBytes []byte) (Delta, error) {
	if len(original) < fullThreshold {
		return Delta{Kind: KindFull, Full: newBytes}, nil
	}

	if likelyText(original) && likelyText(newBytes) {
		ld := computeLineDiff(original, newBytes)
		if encodedLineDiffSize(ld) < len(newBytes) && encodedLineDiffSize(ld) < int(maxDeltaRatio*float64(len(original))) {
			if applied, err := applyLineDiff(original, ld); err == nil && bytes.Equal(applied, newBytes) {
				return Delta{Kind: KindLineDiff, LineDiff: &ld}, nil
			}
		}
	}

	bd := computeBlockDiff(original, newBytes)
	if encodedBlockDiffSize(bd) < len(newBytes) && encodedBlockDiffSize(bd) < int(maxDeltaRatio*float64(len(original))) {
		return Delta{Kind: KindBlockDiff, BlockDiff: &bd}, nil
	}

	return Delta{Kind: KindFull, Full: newBytes}, nil
}

// Apply reconstructs newBytes by applying d to original.
func Apply(original []byte, d Delta) ([]byte, error) {
	switch d.Kind {
	case KindFull:
		return d.Full, nil
	case KindLineDiff:
		if d.LineDiff == nil {
			return nil, fmt.Errorf("delta: line_diff kind with nil payload")
		}
		return applyLineDiff(original, *d.LineDiff)
	case KindBlockDiff:
		if d.BlockDiff == nil {
			return nil, fmt.Errorf("delta: block_diff kind with nil payload")
		}
		return applyBlockDiff(original, *d.BlockDiff)
	default:
		return nil, fmt.Errorf("delta: unknown kind %q", d.Kind)
	}
}

// likelyText reports whether b looks like text: null-byte-free, with
// fewer than 10%% non-printable bytes in the first sniffWindow bytes.
func likelyText(b []byte) bool {
	window := b
	if len(window) > sniffWindow {
		window = window[:sniffWindow]
	}
	if bytes.IndexByte(window, 0) != -1 {
		return false
	}
	if len(window) == 0 {
		return true
	}
	nonText := 0
	for _, c := range window {
		if c < 0x09 || (c > 0x0d && c < 0x20 && c != 0x1b) {
			nonText++
		}
	}
	return float64(nonText)/float64(len(window)) < 0.10
}

func encodedLineDiffSize(ld LineDiff) int {
	n := 0
	for _, op := range ld.Ops {
		n += len(op.Text)
	}
	return n
}

func encodedBlockDiffSize(bd BlockDiff) int {
	n := 0
	for _, op := range bd.Ops {
		n += len(op.Data) + 16
	}
	return n
}

// --- LineDiff -------------------------------------------------------

func splitLines(b []byte) (lines []string, crlf bool, terminalNewline bool) {
	s := string(b)
	crlf = bytes.Contains(b, []byte("\r\n"))
	terminalNewline = len(s) > 0 && (s[len(s)-1] == '\n')

	normalized := s
	if crlf {
		normalized = replaceAll(normalized, "\r\n", "\n")
	}
	if normalized == "" {
		return nil, crlf, terminalNewline
	}
	trimmed := normalized
	if terminalNewline {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if trimmed == "" {
		return []string{}, crlf, terminalNewline
	}
	lines = splitOn(trimmed, '\n')
	return lines, crlf, terminalNewline
}

func splitOn(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func replaceAll(s, old, new string) string {
	return string(bytes.ReplaceAll([]byte(s), []byte(old), []byte(new)))
}

func computeLineDiff(original, newBytes []byte) LineDiff {
	origLines, crlf, _ := splitLines(original)
	newLines, _, terminalNewline := splitLines(newBytes)

	matcher := difflib.NewMatcher(origLines, newLines)
	var ops []LineOp
	for _, group := range matcher.GetOpCodes() {
		switch group.Tag {
		case 'e': // equal
			for _, l := range origLines[group.I1:group.I2] {
				ops = append(ops, LineOp{Kind: LineContext, Text: l})
			}
		case 'd': // delete (present in original only)
			for _, l := range origLines[group.I1:group.I2] {
				ops = append(ops, LineOp{Kind: LineRemoved, Text: l})
			}
		case 'i': // insert (present in new only)
			for _, l := range newLines[group.J1:group.J2] {
				ops = append(ops, LineOp{Kind: LineAdded, Text: l})
			}
		case 'r': // replace: delete then insert
			for _, l := range origLines[group.I1:group.I2] {
				ops = append(ops, LineOp{Kind: LineRemoved, Text: l})
			}
			for _, l := range newLines[group.J1:group.J2] {
				ops = append(ops, LineOp{Kind: LineAdded, Text: l})
			}
		}
	}

	return LineDiff{Ops: ops, CRLF: crlf, TerminalNewline: terminalNewline}
}

func applyLineDiff(original []byte, ld LineDiff) ([]byte, error) {
	var out []string
	for _, op := range ld.Ops {
		switch op.Kind {
		case LineContext, LineAdded:
			out = append(out, op.Text)
		case LineRemoved:
			// dropped
		default:
			return nil, fmt.Errorf("delta: unknown line op kind %q", op.Kind)
		}
	}

	sep := "\n"
	if ld.CRLF {
		sep = "\r\n"
	}

	joined := ""
	for i, l := range out {
		if i > 0 {
			joined += sep
		}
		joined += l
	}
	if ld.TerminalNewline && len(out) > 0 {
		joined += sep
	}
	return []byte(joined), nil
}

// --- BlockDiff --------------------------------------------------------

// computeBlockDiff performs a greedy 64-byte block match: it walks
// newBytes left to right, and for each window tries to find it inside
// original at-or-after the current cursor. A hit emits a Keep spanning
// the matched region (plus any unmatched original bytes as Delete); a
// miss accumulates into a pending Insert.
func computeBlockDiff(original, newBytes []byte) BlockDiff {
	var ops []BlockOp
	origCursor := 0
	var pendingInsert []byte

	flushInsert := func() {
		if len(pendingInsert) > 0 {
			ops = append(ops, BlockOp{Kind: BlockInsert, Data: append([]byte(nil), pendingInsert...)})
			pendingInsert = nil
		}
	}

	i := 0
	for i < len(newBytes) {
		end := i + blockSize
		if end > len(newBytes) {
			end = len(newBytes)
		}
		block := newBytes[i:end]

		idx := indexFrom(original, block, origCursor)
		if idx == -1 {
			pendingInsert = append(pendingInsert, block...)
			i = end
			continue
		}

		if idx > origCursor {
			ops = append(ops, BlockOp{Kind: BlockDelete, Offset: origCursor, Len: idx - origCursor})
		}
		flushInsert()
		ops = append(ops, BlockOp{Kind: BlockKeep, Offset: idx, Len: len(block)})
		origCursor = idx + len(block)
		i = end
	}
	flushInsert()

	if origCursor < len(original) {
		ops = append(ops, BlockOp{Kind: BlockDelete, Offset: origCursor, Len: len(original) - origCursor})
	}

	return BlockDiff{Ops: mergeAdjacentKeeps(ops)}
}

// indexFrom finds block within original at or after from, returning -1
// if absent. It is a simple linear scan; block size is small (64
// bytes) and this keeps the matcher allocation-free.
func indexFrom(haystack, block []byte, from int) int {
	if from > len(haystack) {
		return -1
	}
	rel := bytes.Index(haystack[from:], block)
	if rel == -1 {
		return -1
	}
	return from + rel
}

func mergeAdjacentKeeps(ops []BlockOp) []BlockOp {
	if len(ops) == 0 {
		return ops
	}
	merged := []BlockOp{ops[0]}
	for _, op := range ops[1:] {
		last := &merged[len(merged)-1]
		if last.Kind == BlockKeep && op.Kind == BlockKeep && last.Offset+last.Len == op.Offset {
			last.Len += op.Len
			continue
		}
		merged = append(merged, op)
	}
	return merged
}

func applyBlockDiff(original []byte, bd BlockDiff) ([]byte, error) {
	var out []byte
	for _, op := range bd.Ops {
		switch op.Kind {
		case BlockKeep:
			if op.Offset < 0 || op.Offset+op.Len > len(original) {
				return nil, fmt.Errorf("delta: keep op out of range [%d:%d] against %d original bytes", op.Offset, op.Offset+op.Len, len(original))
			}
			out = append(out, original[op.Offset:op.Offset+op.Len]...)
		case BlockInsert:
			out = append(out, op.Data...)
		case BlockDelete:
			// no bytes emitted; this is bookkeeping only in the forward
			// direction (it documents what was dropped from original).
		default:
			return nil, fmt.Errorf("delta: unknown block op kind %q", op.Kind)
		}
	}
	return out, nil
}
