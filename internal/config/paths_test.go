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
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths_XDGOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SEND_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "st"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "ca"))

	p, err := ResolvePaths("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "cfg", "send"), p.ConfigDir)
	assert.Equal(t, filepath.Join(root, "st", "send"), p.StateDir)
	assert.Equal(t, filepath.Join(root, "ca", "send"), p.CacheDir)
	assert.Equal(t, filepath.Join(root, "st", "send", "logs"), p.LogsDir)
}

func TestResolvePaths_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SEND_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Skip("HOME-based fallback is not exercised on windows")
	}

	p, err := ResolvePaths("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "send"), p.ConfigDir)
	assert.Equal(t, filepath.Join(home, ".local", "state", "send"), p.StateDir)
	assert.Equal(t, filepath.Join(home, ".cache", "send"), p.CacheDir)
}

func TestResolvePaths_Profile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SEND_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "st"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "ca"))

	p, err := ResolvePaths("work")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "cfg", "send", "profiles", "work"), p.ConfigDir)
	assert.Equal(t, filepath.Join(root, "st", "send", "profiles", "work"), p.StateDir)
}

func TestResolvePaths_SendHome(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SEND_HOME", root)
	t.Setenv("XDG_CONFIG_HOME", "/ignored")

	p, err := ResolvePaths("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "config"), p.ConfigDir)
	assert.Equal(t, filepath.Join(root, "state"), p.StateDir)
	assert.Equal(t, filepath.Join(root, "cache"), p.CacheDir)

	prof, err := ResolvePaths("work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "profiles", "work", "config"), prof.ConfigDir)
}

func TestResolvePaths_InvalidProfile(t *testing.T) {
	for _, bad := range []string{"..", ".", "a/b", `a\b`} {
		_, err := ResolvePaths(bad)
		assert.Error(t, err, "profile %q", bad)
	}
}

func TestPaths_Ensure(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SEND_HOME", root)

	p, err := ResolvePaths("")
	require.NoError(t, err)
	require.NoError(t, p.Ensure())

	for _, dir := range []string{p.ConfigDir, p.StateDir, p.CacheDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		if runtime.GOOS != "windows" {
			assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
		}
	}
}

func TestPaths_FileLocations(t *testing.T) {
	p := &Paths{ConfigDir: "/c", StateDir: "/s"}
	assert.Equal(t, filepath.Join("/c", "config.enc"), p.EncryptedConfigPath())
	assert.Equal(t, filepath.Join("/c", "settings.yaml"), p.SettingsPath())
	assert.Equal(t, filepath.Join("/s", "history.db"), p.HistoryDBPath())
	assert.Equal(t, filepath.Join("/s", "outbox"), p.OutboxDir())
}
