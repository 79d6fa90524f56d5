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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the plaintext, non-secret configuration. Anything secret
// belongs in the encrypted credential file, never here.
type Settings struct {
	Version int `yaml:"version"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`

	// DefaultBackend is used when a send does not name one.
	DefaultBackend string `yaml:"default_backend"`

	// OutboxDir overrides the dry-run output directory.
	OutboxDir string `yaml:"outbox_dir,omitempty"`

	// HTTPTimeoutSeconds bounds provider API calls.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Version:            1,
		LogLevel:           "info",
		LogFormat:          "text",
		DefaultBackend:     "dry_run",
		HTTPTimeoutSeconds: 30,
	}
}

// applyDefaults fills in zero values after unmarshalling a partial file.
func (s *Settings) applyDefaults() {
	d := DefaultSettings()
	if s.Version == 0 {
		s.Version = d.Version
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	if s.LogFormat == "" {
		s.LogFormat = d.LogFormat
	}
	if s.DefaultBackend == "" {
		s.DefaultBackend = d.DefaultBackend
	}
	if s.HTTPTimeoutSeconds == 0 {
		s.HTTPTimeoutSeconds = d.HTTPTimeoutSeconds
	}
}

// Validate checks enumerated fields.
func (s *Settings) Validate() error {
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", s.LogLevel)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q", s.LogFormat)
	}
	switch s.DefaultBackend {
	case "ms_graph", "google_api", "dry_run":
	default:
		return fmt.Errorf("invalid default_backend %q", s.DefaultBackend)
	}
	return nil
}

// HTTPTimeout returns the configured timeout as a duration.
func (s *Settings) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutSeconds) * time.Second
}

// LoadSettings reads the settings file at path. A missing file yields the
// defaults; a present but invalid file is an error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings file %s: %w", path, err)
	}
	return &s, nil
}

// SaveSettings writes the settings file atomically.
func SaveSettings(path string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
