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
)

var beginName string

var beginCmd = &cobra.Command{
	Use:   "begin",
	Short: "start a transaction, grouping subsequent operations for atomic rollback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		var name *string
		if beginName != "" {
			name = &beginName
		}
		t, err := r.Begin(name)
		if err != nil {
			return err
		}
		fmt.Printf("started transaction: %s\n", t.ID)
		return nil
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "commit the active transaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		if err := r.Commit(); err != nil {
			return err
		}
		fmt.Println("committed")
		return nil
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "undo every operation in the active transaction, in reverse order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		if err := r.Rollback(); err != nil {
			return err
		}
		fmt.Println("rolled back")
		return nil
	},
}

var undoOpID string

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "undo the most recent undoable operation, or one named by --op",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		if undoOpID != "" {
			if err := r.UndoByID(undoOpID); err != nil {
				return err
			}
			fmt.Printf("undone: %s\n", undoOpID)
			return nil
		}
		id, err := r.UndoLast()
		if err != nil {
			return err
		}
		fmt.Printf("undone: %s\n", id)
		return nil
	},
}

var pruneKeepLast int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "drop journal history beyond --keep-last, protecting active transactions and obliteration references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		removed, err := r.Prune(pruneKeepLast)
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d record(s)\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(beginCmd, commitCmd, rollbackCmd, undoCmd, pruneCmd)

	beginCmd.Flags().StringVar(&beginName, "name", "", "optional human-readable transaction name")
	undoCmd.Flags().StringVar(&undoOpID, "op", "", "operation id to undo (default: the most recent undoable operation)")
	pruneCmd.Flags().IntVar(&pruneKeepLast, "keep-last", 0, "number of most recent records to retain")
}
