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

	"github.com/jdjewell/januskey/internal/repo"
	"github.com/jdjewell/januskey/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show januskey state for the working directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !repo.IsInitialized(workdir) {
			fmt.Println(warnStyle.Render("⚠ not initialized"))
			fmt.Println(subtleStyle.Render("  run `januskey init` to get started"))
			if a, err := state.LoadActive(); err == nil && a.LastDir != "" && a.LastDir != workdir {
				fmt.Println(subtleStyle.Render("  last active directory: " + a.LastDir))
			}
			return nil
		}

		r, err := openRepo()
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("januskey"))
		fmt.Println(subtleStyle.Render("  dir: " + workdir))
		fmt.Println()

		blobCount, err := r.Content.Count()
		if err != nil {
			return err
		}
		totalSize, err := r.Content.TotalSize()
		if err != nil {
			return err
		}
		fmt.Printf("  content store : %d blob(s), %d bytes\n", blobCount, totalSize)
		fmt.Printf("  history       : %d record(s)\n", len(r.Journal.All()))
		fmt.Printf("  obliterations : %d record(s)\n", len(r.Oblit.All()))

		if t, ok := r.Txn.Active(); ok {
			name := "(unnamed)"
			if t.Name != nil {
				name = *t.Name
			}
			fmt.Printf("  transaction   : %s active, %d operation(s)\n", name, len(t.OperationIDs))
		} else {
			fmt.Println("  transaction   : none active")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
