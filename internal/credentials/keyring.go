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

package credentials

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyringService is the service name used for keyring entries.
const keyringService = "send"

// KeyringStore is the injected OS keyring capability. Values are raw key
// bytes; implementations own any transport encoding. Tests substitute a
// fake so no real OS state is touched.
type KeyringStore interface {
	// Get retrieves the key stored under slot.
	// Returns ErrKeyNotFound when no entry exists.
	Get(slot string) ([]byte, error)

	// Set stores key under slot, replacing any existing entry.
	Set(slot string, key []byte) error

	// Delete removes the entry under slot.
	// Returns ErrKeyNotFound when no entry exists.
	Delete(slot string) error

	// Available reports whether the keyring service is accessible.
	Available() bool
}

// KeySlot derives the deterministic per-credential keyring identifier from
// the target file path, so distinct profiles get distinct entries.
func KeySlot(path string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(path)))
	return "config-" + hex.EncodeToString(sum[:8])
}

// SystemKeyring stores keys in the OS keyring.
// Supported platforms:
//   - macOS: Keychain Access
//   - Linux: Secret Service API (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
type SystemKeyring struct {
	available bool
}

// NewSystemKeyring creates a keyring store backed by the OS keyring.
// It probes availability by looking up a sentinel entry, which detects
// locked keychains or a missing secret service early.
func NewSystemKeyring() *SystemKeyring {
	k := &SystemKeyring{available: true}

	_, err := keyring.Get(keyringService, "__send_availability_test__")
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		k.available = false
	}

	return k
}

// Get retrieves the key stored under slot.
func (k *SystemKeyring) Get(slot string) ([]byte, error) {
	if !k.available {
		return nil, fmt.Errorf("%w: keyring service unavailable", ErrKeyringUnavailable)
	}

	value, err := keyring.Get(keyringService, slot)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, slot)
		}
		if isKeyringUnavailableError(err) {
			return nil, fmt.Errorf("%w: %s", ErrKeyringUnavailable, err.Error())
		}
		return nil, fmt.Errorf("keyring error: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("keyring entry %s is not valid base64: %w", slot, err)
	}

	return key, nil
}

// Set stores key under slot. Keyring values are strings, so the raw key
// bytes are base64-encoded for storage.
func (k *SystemKeyring) Set(slot string, key []byte) error {
	if !k.available {
		return fmt.Errorf("%w: keyring service unavailable", ErrKeyringUnavailable)
	}

	if err := keyring.Set(keyringService, slot, base64.StdEncoding.EncodeToString(key)); err != nil {
		if isKeyringUnavailableError(err) {
			return fmt.Errorf("%w: %s", ErrKeyringUnavailable, err.Error())
		}
		return fmt.Errorf("keyring error: %w", err)
	}

	return nil
}

// Delete removes the entry under slot.
func (k *SystemKeyring) Delete(slot string) error {
	if !k.available {
		return fmt.Errorf("%w: keyring service unavailable", ErrKeyringUnavailable)
	}

	if err := keyring.Delete(keyringService, slot); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, slot)
		}
		if isKeyringUnavailableError(err) {
			return fmt.Errorf("%w: %s", ErrKeyringUnavailable, err.Error())
		}
		return fmt.Errorf("keyring error: %w", err)
	}

	return nil
}

// Available reports whether the keyring service is accessible.
func (k *SystemKeyring) Available() bool {
	return k.available
}

// isKeyringUnavailableError checks if an error indicates the keyring is
// locked or inaccessible, based on common messages across platforms.
func isKeyringUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	unavailableIndicators := []string{
		"locked",
		"cannot access",
		"permission denied",
		"failed to unlock",
		"user interaction required",
		"secret service",
		"dbus",
		"user canceled",
	}

	for _, indicator := range unavailableIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}
