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

package delta

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestComputeSmallFilesAlwaysFull(t *testing.T) {
	d, err := Compute([]byte("short"), []byte("also short"))
	require.NoError(t, err)
	require.Equal(t, KindFull, d.Kind)
}

func TestComputeTextChangeRoundTrips(t *testing.T) {
	original := []byte(strings.Repeat("line that repeats to pad size\n", 200))
	newContent := bytes.Replace(original, []byte("line that repeats"), []byte("LINE THAT REPEATS"), 1)

	d, err := Compute(original, newContent)
	require.NoError(t, err)

	applied, err := Apply(original, d)
	require.NoError(t, err)
	require.Equal(t, newContent, applied)
}

func TestComputeBlockDiffForBinaryChange(t *testing.T) {
	original := bytes.Repeat([]byte{0, 1, 2, 3}, 2000)
	newContent := append(append([]byte{}, original[:100]...), append([]byte("inserted binary blob"), original[100:]...)...)

	d, err := Compute(original, newContent)
	require.NoError(t, err)

	applied, err := Apply(original, d)
	require.NoError(t, err)
	require.Equal(t, newContent, applied)
}

func TestApplyUnknownKindFails(t *testing.T) {
	_, err := Apply([]byte("x"), Delta{Kind: "bogus"})
	require.Error(t, err)
}

func TestApplyLineDiffMissingPayloadFails(t *testing.T) {
	_, err := Apply([]byte("x"), Delta{Kind: KindLineDiff})
	require.Error(t, err)
}

func TestApplyBlockDiffMissingPayloadFails(t *testing.T) {
	_, err := Apply([]byte("x"), Delta{Kind: KindBlockDiff})
	require.Error(t, err)
}

// TestComputeApplyRoundTripsProperty checks Compute/Apply form an
// identity for arbitrary byte-pair inputs, regardless of which
// encoding Compute picks.
func TestComputeApplyRoundTripsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		original := []byte(rapid.StringN(0, 6000, -1).Draw(rt, "original"))
		newContent := []byte(rapid.StringN(0, 6000, -1).Draw(rt, "newContent"))

		d, err := Compute(original, newContent)
		if err != nil {
			rt.Fatalf("Compute: %v", err)
		}

		applied, err := Apply(original, d)
		if err != nil {
			rt.Fatalf("Apply: %v", err)
		}
		if !bytes.Equal(applied, newContent) {
			rt.Fatalf("round trip mismatch: got %q, want %q", applied, newContent)
		}
	})
}
