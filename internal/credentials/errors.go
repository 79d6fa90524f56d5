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
	"errors"
	"io/fs"
)

// Sentinel errors for the secure credential store.
// Callers match them with errors.Is; error messages never contain key
// material, passphrases, or token values.
var (
	// ErrPolicyUnsatisfiable is returned when no permitted key strategy
	// could produce a key. Fatal to the call; nothing is written.
	ErrPolicyUnsatisfiable = errors.New("no permitted key strategy available")

	// ErrKeyringUnavailable is returned when the keyring strategy is
	// preferred but the system keyring cannot be reached. It is recoverable
	// only when the policy also allows a user-supplied key.
	ErrKeyringUnavailable = errors.New("system keyring unavailable")

	// ErrMissingUserKey is returned when the user-supplied strategy was
	// selected but the caller provided no passphrase or key material.
	ErrMissingUserKey = errors.New("user key material required but not provided")

	// ErrAuthenticationFailure is returned when decryption's integrity
	// check fails (wrong key, corrupted or tampered file). No partial
	// plaintext is ever returned.
	ErrAuthenticationFailure = errors.New("authentication failure: wrong key or corrupted data")

	// ErrFormat is returned when the encrypted blob or the serialized
	// payload has an unknown version or malformed structure.
	ErrFormat = errors.New("invalid credential file format")

	// ErrKeyNotFound is returned by a KeyringStore when no entry exists
	// for the requested slot.
	ErrKeyNotFound = errors.New("key not found in keyring")
)

// IsNotFound reports whether err means no credential file exists at the
// requested path.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
