// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config resolves the on-disk layout (XDG base directories plus
// profiles) and loads the plaintext settings file. Encrypted credential
// content is handled elsewhere; this package only knows where it lives.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appDirName = "send"

// Paths is the resolved directory layout for one profile.
type Paths struct {
	// ConfigDir holds settings.yaml and the encrypted credential file.
	ConfigDir string

	// StateDir holds durable runtime state such as the send history DB.
	StateDir string

	// CacheDir holds disposable data.
	CacheDir string

	// LogsDir holds log files, nested under StateDir.
	LogsDir string
}

// ResolvePaths computes the directory layout for a profile. An empty
// profile name selects the default (un-nested) layout. SEND_HOME, when
// set, roots every directory under it and ignores the XDG variables.
//
// Respects XDG_CONFIG_HOME, XDG_STATE_HOME and XDG_CACHE_HOME, falling
// back to ~/.config, ~/.local/state and ~/.cache. On macOS ~/.config is
// used too, matching what the rest of the tool's ecosystem does.
func ResolvePaths(profile string) (*Paths, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	if home := os.Getenv("SEND_HOME"); home != "" {
		root := profiled(home, profile)
		return &Paths{
			ConfigDir: filepath.Join(root, "config"),
			StateDir:  filepath.Join(root, "state"),
			CacheDir:  filepath.Join(root, "cache"),
			LogsDir:   filepath.Join(root, "state", "logs"),
		}, nil
	}

	configBase, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return nil, err
	}
	stateBase, err := xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
	if err != nil {
		return nil, err
	}
	cacheBase, err := xdgDir("XDG_CACHE_HOME", ".cache")
	if err != nil {
		return nil, err
	}

	stateDir := profiled(filepath.Join(stateBase, appDirName), profile)
	return &Paths{
		ConfigDir: profiled(filepath.Join(configBase, appDirName), profile),
		StateDir:  stateDir,
		CacheDir:  profiled(filepath.Join(cacheBase, appDirName), profile),
		LogsDir:   filepath.Join(stateDir, "logs"),
	}, nil
}

// xdgDir resolves one XDG base directory with its home fallback.
func xdgDir(envVar, fallback string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback), nil
}

// profiled nests dir under profiles/<name> for named profiles.
func profiled(dir, profile string) string {
	if profile == "" {
		return dir
	}
	return filepath.Join(dir, "profiles", profile)
}

// validateProfile rejects names that would escape the profiles directory.
func validateProfile(profile string) error {
	if profile == "" {
		return nil
	}
	if strings.ContainsAny(profile, `/\`) || profile == "." || profile == ".." {
		return fmt.Errorf("invalid profile name %q", profile)
	}
	return nil
}

// Ensure creates every directory in the layout with owner-only access.
func (p *Paths) Ensure() error {
	for _, dir := range []string{p.ConfigDir, p.StateDir, p.CacheDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// EncryptedConfigPath is where the encrypted credential document lives.
func (p *Paths) EncryptedConfigPath() string {
	return filepath.Join(p.ConfigDir, "config.enc")
}

// SettingsPath is the plaintext settings file.
func (p *Paths) SettingsPath() string {
	return filepath.Join(p.ConfigDir, "settings.yaml")
}

// HistoryDBPath is the send history database.
func (p *Paths) HistoryDBPath() string {
	return filepath.Join(p.StateDir, "history.db")
}

// OutboxDir is the default dry-run output directory.
func (p *Paths) OutboxDir() string {
	return filepath.Join(p.StateDir, "outbox")
}
