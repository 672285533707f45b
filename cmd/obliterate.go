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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdjewell/januskey/internal/contenthash"
)

var (
	obliterateReason     string
	obliterateLegalBasis string
)

var obliterateCmd = &cobra.Command{
	Use:   "obliterate <content-hash>",
	Short: "irreversibly destroy the blob addressed by a content hash",
	Long: `Securely overwrite and delete the blob identified by a content hash
(e.g. "sha256:abcd...") from the content store, then record a
cryptographic commitment proving the destruction happened without
retaining the original bytes.

This is irreversible: any journal record whose undo depends on this
blob can no longer be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		var reason, legalBasis *string
		if obliterateReason != "" {
			reason = &obliterateReason
		}
		if obliterateLegalBasis != "" {
			legalBasis = &obliterateLegalBasis
		}
		rec, err := r.Obliterate(contenthash.Hash(args[0]), reason, legalBasis)
		if err != nil {
			return err
		}
		fmt.Printf("obliterated %s -- proof %s\n", args[0], rec.Proof.ID)
		return nil
	},
}

var obliterateBatchCmd = &cobra.Command{
	Use:   "obliterate-batch <content-hash> [content-hash...]",
	Short: "obliterate multiple blobs, recording independent success/failure per hash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		var reason, legalBasis *string
		if obliterateReason != "" {
			reason = &obliterateReason
		}
		if obliterateLegalBasis != "" {
			legalBasis = &obliterateLegalBasis
		}

		hashes := make([]contenthash.Hash, len(args))
		for i, a := range args {
			hashes[i] = contenthash.Hash(a)
		}

		result := r.ObliterateBatch(hashes, reason, legalBasis)
		for _, rec := range result.Successful {
			fmt.Printf("obliterated %s -- proof %s\n", rec.ContentHash, rec.Proof.ID)
		}
		for _, f := range result.Failed {
			fmt.Printf("FAILED %s: %v\n", f.Hash, f.Err)
		}
		if len(result.Failed) > 0 {
			return fmt.Errorf("obliterate-batch: %d of %d hash(es) failed", len(result.Failed), len(args))
		}
		return nil
	},
}

var verifyProofCmd = &cobra.Command{
	Use:   "verify-proof <proof-id>",
	Short: "confirm an obliteration proof's commitment is valid and the blob is gone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		ok, err := r.Oblit.Verify(args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("invalid: commitment mismatch or blob still present")
			return fmt.Errorf("verify-proof: proof %s failed verification", args[0])
		}
		fmt.Println("valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(obliterateCmd, obliterateBatchCmd, verifyProofCmd)
	for _, c := range []*cobra.Command{obliterateCmd, obliterateBatchCmd} {
		c.Flags().StringVar(&obliterateReason, "reason", "", "human-readable reason recorded on the audit log")
		c.Flags().StringVar(&obliterateLegalBasis, "legal-basis", "", "legal basis recorded on the audit log, e.g. \"GDPR Art. 17\"")
	}
}
