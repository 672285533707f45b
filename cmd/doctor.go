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
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jdjewell/januskey/internal/jkerr"
	"github.com/jdjewell/januskey/internal/repo"
)

var doctorRehash bool

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// doctorCmd represents the doctor command.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "run health checks on the januskey state for the working directory",
	Long: `Run a read-only health check confirming januskey can operate safely
against --dir.

Doctor verifies:
  - .januskey/ state directory layout and writability
  - The operation journal and transaction log parse cleanly
  - Every blob referenced by a journal record is present in the content
    store (missing ones are reported as a warning, since obliteration
    removes blobs)
  - The obliteration log's hash chain is intact
  - (--recheck) rehashes every blob in the content store against its
    address, catching silent on-disk corruption

Doctor does not mutate tracked files. It may read blobs to validate
integrity.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkState(); err != nil {
			return err
		}

		r, err := repo.Open(workdir, provenanceUser())
		if err != nil {
			return err
		}

		if err := checkLogs(r); err != nil {
			return err
		}
		if err := checkBlobs(r); err != nil {
			return err
		}
		if err := checkObliterationChain(r); err != nil {
			return err
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorRehash, "recheck", false, "rehash every blob in the content store")
}

func checkState() error {
	fmt.Println(headerStyle.Render("State Directory Checks"))
	base := workdir + "/.januskey"
	fmt.Println(subtleStyle.Render("  root: " + base))
	fmt.Println()

	info, err := os.Stat(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println(errStyle.Render("  ✗ .januskey does not exist"))
			fmt.Println(subtleStyle.Render("    run `januskey init` to create it"))
			fmt.Println()
			return jkerr.Wrapf(jkerr.NotInitialized, "doctor: %s", workdir)
		}
		fmt.Println(errStyle.Render("  ✗ could not stat .januskey"))
		fmt.Println(subtleStyle.Render("    " + err.Error()))
		fmt.Println()
		return fmt.Errorf("doctor: stat %q: %w", base, err)
	}
	if !info.IsDir() {
		fmt.Println(errStyle.Render("  ✗ .januskey is not a directory"))
		fmt.Println()
		return fmt.Errorf("doctor: %q is not a directory", base)
	}

	testFile := base + "/.doctor-write-test"
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		fmt.Println(errStyle.Render("  ✗ .januskey is not writable"))
		fmt.Println()
		return fmt.Errorf("doctor: %q not writable: %w", base, err)
	}
	_ = os.Remove(testFile)
	fmt.Println(okStyle.Render("  ✓ .januskey exists and is writable"))
	fmt.Println()
	return nil
}

func checkLogs(r *repo.Repo) error {
	fmt.Println(headerStyle.Render("Log Checks"))
	fmt.Println(okStyle.Render(fmt.Sprintf("  ✓ operation journal parsed: %d records", len(r.Journal.All()))))
	if t, ok := r.Txn.Active(); ok {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  ⚠ active transaction in progress: %s (%d operations)", t.ID, len(t.OperationIDs))))
	} else {
		fmt.Println(okStyle.Render("  ✓ no active transaction"))
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("  ✓ obliteration log parsed: %d records", len(r.Oblit.All()))))
	fmt.Println()
	return nil
}

func checkBlobs(r *repo.Repo) error {
	fmt.Println(headerStyle.Render("Content Store Checks"))

	var missing int
	for _, rec := range r.Journal.All() {
		if rec.ContentHash != nil && !r.Content.Exists(*rec.ContentHash) {
			missing++
		}
		if rec.NewContentHash != nil && !r.Content.Exists(*rec.NewContentHash) {
			missing++
		}
	}

	if missing == 0 {
		fmt.Println(okStyle.Render("  ✓ every referenced blob is present"))
	} else {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  ⚠ %d referenced blob(s) missing (may be obliterated)", missing)))
	}

	count, err := r.Content.Count()
	if err != nil {
		fmt.Println(errStyle.Render("  ✗ could not enumerate content store"))
		return err
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("  ✓ content store holds %d blob(s)", count)))

	if doctorRehash {
		hashes, err := r.Content.Hashes()
		if err != nil {
			fmt.Println(errStyle.Render("  ✗ could not list blobs for rehash"))
			return err
		}
		var corrupt int
		for _, h := range hashes {
			if _, err := r.Content.Retrieve(h); err != nil {
				corrupt++
				fmt.Println(errStyle.Render(fmt.Sprintf("  ✗ blob %s failed integrity check", h)))
			}
		}
		if corrupt == 0 {
			fmt.Println(okStyle.Render(fmt.Sprintf("  ✓ rehashed %d blob(s), no corruption found", len(hashes))))
		} else {
			fmt.Println()
			return fmt.Errorf("doctor: %d corrupt blob(s) found", corrupt)
		}
	}

	fmt.Println()
	return nil
}

func checkObliterationChain(r *repo.Repo) error {
	fmt.Println(headerStyle.Render("Obliteration Chain Checks"))
	if idx := r.Oblit.VerifyChain(); idx != -1 {
		fmt.Println(errStyle.Render(fmt.Sprintf("  ✗ chain hash mismatch at record %d", idx)))
		fmt.Println()
		return fmt.Errorf("doctor: obliteration log chain broken at record %d", idx)
	}
	fmt.Println(okStyle.Render("  ✓ obliteration log chain intact"))
	fmt.Println()
	return nil
}
