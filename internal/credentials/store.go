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
	"fmt"
	"os"
)

// Store encrypts credential documents at rest. Save and load are
// synchronous, blocking calls; the only externally observable waits are
// OS keyring access and the intentionally slow user-key derivation.
//
// The store never creates directories: the target file's directory must
// already exist (the path provider owns directory creation). Concurrent
// saves to the same path from multiple processes are not serialized here;
// the atomic-replace write only guarantees each individual write is
// all-or-nothing.
type Store struct {
	resolver resolver
}

// NewStore creates a Store bound to the given keyring capability.
func NewStore(keyring KeyringStore) *Store {
	return &Store{resolver: resolver{keyring: keyring}}
}

// Save serializes doc, resolves a key under policy, encrypts, and writes
// the blob atomically to path (temp file in the same directory, then
// rename). On any failure at any stage, no file at path is created or
// modified. Key material is zeroed on every exit path.
func (s *Store) Save(doc Document, policy KeyPolicy, path string, userKey []byte) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	plaintext, err := serializeDocument(doc)
	if err != nil {
		return err
	}
	defer zeroBytes(plaintext)

	resolved, err := s.resolver.resolveForSave(policy, KeySlot(path), userKey)
	if err != nil {
		return err
	}
	defer resolved.Zero()

	nonce, ciphertext, err := encrypt(resolved.Key, plaintext)
	if err != nil {
		return err
	}

	b := &blob{nonce: nonce, ciphertext: ciphertext}
	switch resolved.Origin {
	case OriginKeyring:
		b.algorithm = algKeyringAESGCM
	case OriginUserSupplied:
		b.algorithm = algUserKeyAESGCM
		b.salt = resolved.Salt
	}

	encoded, err := b.encode()
	if err != nil {
		return err
	}

	return writeAtomic(path, encoded)
}

// Load reads the blob at path, resolves the key under policy, decrypts,
// and deserializes. It fails if the path does not exist, the blob is
// malformed, the resolved key does not authenticate, or the policy yields
// no usable strategy.
func (s *Store) Load(policy KeyPolicy, path string, userKey []byte) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read credential file: %w", err)
	}

	b, err := decodeBlob(data)
	if err != nil {
		return Document{}, err
	}

	// The algorithm byte pins the key strategy, so narrow the effective
	// policy to it instead of trying keys that are guaranteed to fail
	// authentication. A keyring blob carries no salt, so no user-supplied
	// key can decrypt it; a user-key blob never matches a keyring entry,
	// stale or otherwise.
	switch b.algorithm {
	case algKeyringAESGCM:
		if !policy.PreferKeyring {
			return Document{}, fmt.Errorf("%w: blob was written with a keyring key", ErrPolicyUnsatisfiable)
		}
		policy.AllowUserKey = false
	case algUserKeyAESGCM:
		if !policy.AllowUserKey {
			return Document{}, fmt.Errorf("%w: blob was written with a user-supplied key", ErrPolicyUnsatisfiable)
		}
		policy.PreferKeyring = false
	}

	resolved, err := s.resolver.resolveForLoad(policy, KeySlot(path), userKey, b.salt)
	if err != nil {
		return Document{}, err
	}
	defer resolved.Zero()

	plaintext, err := decrypt(resolved.Key, b.nonce, b.ciphertext)
	if err != nil {
		return Document{}, err
	}
	defer zeroBytes(plaintext)

	return deserializeDocument(plaintext)
}

// Delete removes the credential file and its keyring entry, if either
// exists. A missing keyring entry is not an error.
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}

	if s.resolver.keyring.Available() {
		if err := s.resolver.keyring.Delete(KeySlot(path)); err != nil && !errors.Is(err, ErrKeyNotFound) {
			return err
		}
	}

	return nil
}

// writeAtomic writes data to path via a temp file and rename, so a partial
// write never leaves a corrupt file at path. The temp file lives in the
// same directory as path to keep the rename atomic.
func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
