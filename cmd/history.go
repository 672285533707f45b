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

	"github.com/jdjewell/januskey/internal/journal"
)

var (
	historyLimit  int
	historyType   string
	historyGlob   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "list recorded operations, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		records := r.Journal.All()
		if historyType != "" {
			records = r.Journal.FilterByType(journal.OperationType(historyType))
		}
		if historyGlob != "" {
			byPath, err := r.Journal.FilterByPath(historyGlob)
			if err != nil {
				return err
			}
			if historyType != "" {
				var both []*journal.Record
				for _, rec := range byPath {
					if rec.OpType == journal.OperationType(historyType) {
						both = append(both, rec)
					}
				}
				byPath = both
			}
			records = byPath
		}

		if historyLimit > 0 && len(records) > historyLimit {
			records = records[len(records)-historyLimit:]
		}

		for i := len(records) - 1; i >= 0; i-- {
			rec := records[i]
			status := "undone"
			if !rec.Undone {
				status = "active"
			}
			line := fmt.Sprintf("%s  %-10s  %-7s  %s", rec.Timestamp.Format("2006-01-02T15:04:05Z07:00"), rec.OpType, status, rec.Path)
			if rec.PathSecondary != nil {
				line += " -> " + *rec.PathSecondary
			}
			fmt.Printf("%s  [%s]\n", line, rec.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "show at most this many records (0: unlimited)")
	historyCmd.Flags().StringVar(&historyType, "type", "", "filter by operation type, e.g. DELETE")
	historyCmd.Flags().StringVar(&historyGlob, "path", "", "filter by path glob pattern")
}
