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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_backend: ms_graph\n"), 0600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "ms_graph", s.DefaultBackend)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, 30*time.Second, s.HTTPTimeout())
}

func TestLoadSettings_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::\tnot yaml"), 0600))

	_, err := LoadSettings(path)
	assert.Error(t, err)
}

func TestLoadSettings_InvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_backend: smtp\n"), 0600))

	_, err := LoadSettings(path)
	assert.Error(t, err)
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	in := DefaultSettings()
	in.LogLevel = "debug"
	in.OutboxDir = "/tmp/outbox"
	require.NoError(t, SaveSettings(path, in))

	out, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// No stray temp file after a successful save.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveSettings_RejectsInvalid(t *testing.T) {
	s := DefaultSettings()
	s.LogFormat = "xml"
	err := SaveSettings(filepath.Join(t.TempDir(), "settings.yaml"), s)
	assert.Error(t, err)
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "defaults", mutate: func(s *Settings) {}, wantErr: false},
		{name: "bad level", mutate: func(s *Settings) { s.LogLevel = "trace" }, wantErr: true},
		{name: "bad format", mutate: func(s *Settings) { s.LogFormat = "pretty" }, wantErr: true},
		{name: "bad backend", mutate: func(s *Settings) { s.DefaultBackend = "sendmail" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
