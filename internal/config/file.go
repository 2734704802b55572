// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileDefaultsPath mirrors the teacher's DefaultConfigPath: an
// optional, operator-editable YAML file of default config key overrides.
func DefaultFileDefaultsPath() string {
	return "aurora-restore.yml"
}

// fileDefaults is the on-disk shape: a flat map under a single
// `defaults:` key, kept flat (rather than a nested per-step schema like
// the teacher's Config) since the resolver's own Config is already flat.
type fileDefaults struct {
	Defaults map[string]string `yaml:"defaults"`
}

// LoadFileDefaults reads and parses path. A missing file is not an error:
// it returns a nil map so Resolver.FileDefaults simply has nothing to
// contribute, following the teacher's Exists-then-Load split without
// requiring the operator to maintain the file at all.
func LoadFileDefaults(path string) (map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking config defaults file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config defaults path %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config defaults file: %w", err)
	}

	var parsed fileDefaults
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing config defaults file: %w", err)
	}
	return parsed.Defaults, nil
}
