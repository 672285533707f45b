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
	"os"
	"os/user"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdjewell/januskey/internal/logging"
)

var (
	cfgFile   string
	verbose   bool
	jsonLogs  bool
	workdir   string
	asUser    string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "januskey",
	Short: "januskey: provably reversible file operations",
	Long: `januskey executes file-system mutations alongside enough captured state
to reconstruct the pre-operation world, with transactional grouping and
an obliterative erase primitive for compliance-driven deletion.

januskey  Copyright © 2026  The Januskey Authors
This program comes with ABSOLUTELY NO WARRANTY; This program is free
software, and you are welcome to redistribute it under certain conditions;
You should have received a copy of the GNU General Public License (version
3) along with this program. If not, see https://www.gnu.org/licenses/.`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/januskey/config.toml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"enable debug-level logging",
	)
	rootCmd.PersistentFlags().BoolVar(
		&jsonLogs,
		"json-logs",
		false,
		"emit structured JSON logs instead of console output",
	)
	rootCmd.PersistentFlags().StringVarP(
		&workdir,
		"dir",
		"d",
		".",
		"working directory tracked by januskey",
	)
	rootCmd.PersistentFlags().StringVar(
		&asUser,
		"user",
		"",
		"provenance user recorded on operations (default: current OS user)",
	)
}

// initConfig reads in a global CLI config file and ENV variables, if set.
// This is distinct from the per-working-directory core configuration at
// <dir>/.januskey/config.json, which internal/config loads separately.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("toml")

		if err := viper.ReadInConfig(); err != nil {
			cobra.CheckErr(err)
		}
		return
	}

	defaultPath, err := xdg.ConfigFile("januskey/config.toml")
	cobra.CheckErr(err)

	if _, err := os.Stat(defaultPath); errors.Is(err, os.ErrNotExist) {
		return // default config file doesn't exist -- use flag/env defaults
	}

	viper.SetConfigFile(defaultPath)
	viper.SetConfigType("toml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}
		cobra.CheckErr(err)
	}
}

func initLogging() {
	level := logging.InfoLevel
	if verbose {
		level = logging.DebugLevel
	}
	logging.Init(logging.Config{Level: level, JSONOutput: jsonLogs, Output: os.Stderr})
}

// provenanceUser resolves the user string stamped onto operation
// records: the --user flag if given, else the current OS user.
func provenanceUser() string {
	if asUser != "" {
		return asUser
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}
