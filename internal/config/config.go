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

// Package config loads the per-working-directory core configuration
// described in spec §6: <root>/.januskey/config.json. Defaults are
// loaded via koanf's structs provider, the on-disk document (if any)
// overrides them via confmap, and environment variables (JANUSKEY_*)
// take final precedence -- the same default < file < env layering
// haukened-gone's config loader uses.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/jdjewell/januskey/internal/jkerr"
)

// Config is the core configuration document at .januskey/config.json.
type Config struct {
	Compression   bool `koanf:"compression" json:"compression"`
	MaxHistory    int  `koanf:"max_history" json:"max_history" validate:"gte=0"`
	DeltasEnabled bool `koanf:"deltas_enabled" json:"deltas_enabled"`
}

// Default mirrors SPEC_FULL.md's open-question decision: deltas are
// disabled by default, and history is unbounded unless the caller
// opts into pruning via MaxHistory.
var Default = Config{
	Compression:   true,
	MaxHistory:    0,
	DeltasEnabled: false,
}

var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(Default, "koanf"), nil)
}

var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{Prefix: "JANUSKEY_", TransformFunc: func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, "JANUSKEY_"))
		return key, strings.TrimSpace(value)
	}}), nil)
}

// Load reads the config document at configPath (typically
// <root>/.januskey/config.json), layering defaults, the file contents
// if present, and environment variable overrides, then validates.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	b, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		var raw map[string]any
		if jsonErr := json.Unmarshal(b, &raw); jsonErr != nil {
			return nil, jkerr.Wrapf(jkerr.MetadataCorrupted, "config: parse %q: %v", configPath, jsonErr)
		}
		if loadErr := k.Load(confmap.Provider(raw, "."), nil); loadErr != nil {
			return nil, fmt.Errorf("config: merge %q: %w", configPath, loadErr)
		}
	case os.IsNotExist(err):
		// no per-directory override; defaults (and env) still apply.
	default:
		return nil, fmt.Errorf("config: read %q: %w", configPath, err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, jkerr.Wrapf(jkerr.OperationFailed, "config: invalid configuration: %v", err)
	}

	return &cfg, nil
}

// Save persists cfg to configPath using the write-temp-then-rename
// pattern used across januskey's other JSON-backed stores.
func Save(configPath string, cfg *Config) error {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("config: mkdir %q: %w", filepath.Dir(configPath), err)
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("config: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("config: rename %q -> %q: %w", tmp, configPath, err)
	}
	return nil
}
