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

	"github.com/jdjewell/januskey/internal/logging"
	"github.com/jdjewell/januskey/internal/repo"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "initializes januskey state for the working directory",
	Long: `Initialize januskey's local state for --dir (default: the current directory).

Creates .januskey/ with its content store, operation journal, transaction
log, obliteration log, and default configuration. This command is safe to
run once; running it again against an already-initialized directory fails
rather than silently overwriting existing history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := repo.Init(workdir); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		logging.WithComponent("cmd").Info().Str("dir", workdir).Msg("initialized januskey state")
		fmt.Printf("initialized januskey state in %s/.januskey\n", workdir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
