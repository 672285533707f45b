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
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jdjewell/januskey/internal/repo"
	"github.com/jdjewell/januskey/internal/state"
)

// openRepo is the shared entry point every operation subcommand uses to
// reach the working directory's state.
func openRepo() (*repo.Repo, error) {
	r, err := repo.Open(workdir, provenanceUser())
	if err != nil {
		return nil, err
	}
	// Best-effort: a failure to record the last-active directory
	// should never block the operation itself.
	_ = state.SaveActive(workdir)
	return r, nil
}

func printOpID(label, opID string) {
	fmt.Printf("%s: %s\n", label, opID)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "delete a file, capturing its content and metadata for undo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Delete(args[0])
		if err != nil {
			return err
		}
		printOpID("deleted", id)
		return nil
	},
}

var modifyFromFile string

var modifyCmd = &cobra.Command{
	Use:   "modify <path>",
	Short: "overwrite a file's contents, capturing the original for undo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if modifyFromFile == "" {
			return fmt.Errorf("modify: --from is required")
		}
		data, err := os.ReadFile(modifyFromFile)
		if err != nil {
			return fmt.Errorf("modify: reading %q: %w", modifyFromFile, err)
		}
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Modify(args[0], data)
		if err != nil {
			return err
		}
		printOpID("modified", id)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <source> <destination>",
	Short: "rename or relocate a file or directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Move(args[0], args[1])
		if err != nil {
			return err
		}
		printOpID("moved", id)
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <source> <destination>",
	Short: "duplicate a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Copy(args[0], args[1])
		if err != nil {
			return err
		}
		printOpID("copied", id)
		return nil
	},
}

var chmodCmd = &cobra.Command{
	Use:   "chmod <path> <mode>",
	Short: "change a file's permission bits, e.g. 0644",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := strconv.ParseUint(args[1], 8, 32)
		if err != nil {
			return fmt.Errorf("chmod: invalid mode %q: %w", args[1], err)
		}
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Chmod(args[0], os.FileMode(mode))
		if err != nil {
			return err
		}
		printOpID("chmodded", id)
		return nil
	},
}

var createFromFile string
var createPerm string

var createCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "create a new file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		if createFromFile != "" {
			b, err := os.ReadFile(createFromFile)
			if err != nil {
				return fmt.Errorf("create: reading %q: %w", createFromFile, err)
			}
			data = b
		}
		mode, err := strconv.ParseUint(createPerm, 8, 32)
		if err != nil {
			return fmt.Errorf("create: invalid --perm %q: %w", createPerm, err)
		}
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Create(args[0], data, os.FileMode(mode))
		if err != nil {
			return err
		}
		printOpID("created", id)
		return nil
	},
}

var mkdirParents bool

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Mkdir(args[0], mkdirParents)
		if err != nil {
			return err
		}
		printOpID("created directory", id)
		return nil
	},
}

var rmdirRecursive bool

var rmdirCmd = &cobra.Command{
	Use:   "rmdir <path>",
	Short: "remove a directory, optionally recursively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Rmdir(args[0], rmdirRecursive)
		if err != nil {
			return err
		}
		printOpID("removed directory", id)
		return nil
	},
}

var symlinkCmd = &cobra.Command{
	Use:   "symlink <link> <target>",
	Short: "create a symbolic link",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Symlink(args[0], args[1])
		if err != nil {
			return err
		}
		printOpID("linked", id)
		return nil
	},
}

var appendFromFile string

var appendCmd = &cobra.Command{
	Use:   "append <path>",
	Short: "append bytes to the end of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if appendFromFile == "" {
			return fmt.Errorf("append: --from is required")
		}
		data, err := os.ReadFile(appendFromFile)
		if err != nil {
			return fmt.Errorf("append: reading %q: %w", appendFromFile, err)
		}
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Append(args[0], data)
		if err != nil {
			return err
		}
		printOpID("appended", id)
		return nil
	},
}

var truncateCmd = &cobra.Command{
	Use:   "truncate <path> <size>",
	Short: "truncate or extend a file to an exact size",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("truncate: invalid size %q: %w", args[1], err)
		}
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Truncate(args[0], size)
		if err != nil {
			return err
		}
		printOpID("truncated", id)
		return nil
	},
}

var touchCreate bool

var touchCmd = &cobra.Command{
	Use:   "touch <path>",
	Short: "update a file's modification time, optionally creating it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		id, err := r.Touch(args[0], touchCreate)
		if err != nil {
			return err
		}
		printOpID("touched", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd, modifyCmd, moveCmd, copyCmd, chmodCmd, createCmd,
		mkdirCmd, rmdirCmd, symlinkCmd, appendCmd, truncateCmd, touchCmd)

	modifyCmd.Flags().StringVar(&modifyFromFile, "from", "", "path to a file holding the new content")
	createCmd.Flags().StringVar(&createFromFile, "from", "", "path to a file holding the initial content (default: empty)")
	createCmd.Flags().StringVar(&createPerm, "perm", "644", "octal permission bits for the new file")
	mkdirCmd.Flags().BoolVarP(&mkdirParents, "parents", "p", false, "create parent directories as needed")
	rmdirCmd.Flags().BoolVarP(&rmdirRecursive, "recursive", "r", false, "remove the directory and everything under it")
	appendCmd.Flags().StringVar(&appendFromFile, "from", "", "path to a file holding the bytes to append")
	touchCmd.Flags().BoolVarP(&touchCreate, "create", "c", true, "create the file if it does not exist")
}
