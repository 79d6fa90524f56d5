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
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for user-key derivation (time=3, memory=64MB,
// parallelism=4, 256-bit output).
const (
	argon2Time        = 3
	argon2Memory      = 64 * 1024 // KiB
	argon2Parallelism = 4
)

// KeyOrigin tags where a resolved key came from.
type KeyOrigin string

const (
	// OriginKeyring marks a random key stored in the OS keyring.
	OriginKeyring KeyOrigin = "keyring"

	// OriginUserSupplied marks a key derived from caller material.
	OriginUserSupplied KeyOrigin = "user-supplied"
)

// ResolvedKey is transient symmetric key material obtained for exactly one
// encrypt or decrypt operation. It is never persisted, never cached across
// store calls, and the orchestrator zeroes it on every exit path.
type ResolvedKey struct {
	Key    []byte
	Origin KeyOrigin

	// Salt is set only for user-supplied keys at save time, for embedding
	// in the blob header. The salt is not secret.
	Salt []byte
}

// Zero wipes the key material.
func (r *ResolvedKey) Zero() {
	if r != nil {
		zeroBytes(r.Key)
	}
}

// resolver produces exactly one ResolvedKey per call, or fails. It never
// retains key material after returning, and there is no fallback between
// strategies beyond the policy's explicit order.
type resolver struct {
	keyring KeyringStore
}

// resolveForSave obtains a key for encrypting a new blob under policy.
//
// Keyring strategy: requires an available keyring; reuses the key already
// stored under slot and generates a fresh random one only when no entry
// exists. Reuse matters for atomicity: replacing the key before the blob
// write lands would strand the existing file if the write fails.
// User-supplied strategy: requires caller material; generates a fresh
// salt and derives the key with argon2id.
func (r *resolver) resolveForSave(policy KeyPolicy, slot string, userKey []byte) (*ResolvedKey, error) {
	strategies := policy.PermittedStrategies()
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: policy permits no key strategy", ErrPolicyUnsatisfiable)
	}

	var keyringErr error
	for _, strategy := range strategies {
		switch strategy {
		case StrategyKeyring:
			if !r.keyring.Available() {
				keyringErr = ErrKeyringUnavailable
				continue
			}
			key, err := r.keyring.Get(slot)
			if err == nil {
				return &ResolvedKey{Key: key, Origin: OriginKeyring}, nil
			}
			if !errors.Is(err, ErrKeyNotFound) {
				keyringErr = err
				continue
			}
			key, err = generateKey()
			if err != nil {
				return nil, err
			}
			if err := r.keyring.Set(slot, key); err != nil {
				zeroBytes(key)
				keyringErr = err
				continue
			}
			return &ResolvedKey{Key: key, Origin: OriginKeyring}, nil

		case StrategyUserSupplied:
			if len(userKey) == 0 {
				return nil, ErrMissingUserKey
			}
			salt := make([]byte, saltSize)
			if _, err := io.ReadFull(rand.Reader, salt); err != nil {
				return nil, fmt.Errorf("failed to generate salt: %w", err)
			}
			return &ResolvedKey{
				Key:    deriveUserKey(userKey, salt),
				Origin: OriginUserSupplied,
				Salt:   salt,
			}, nil
		}
	}

	return nil, policyFailure(keyringErr)
}

// resolveForLoad obtains the key for decrypting an existing blob. The
// keyring strategy fails softly (next permitted strategy) only when the
// entry is absent; the user-supplied strategy re-derives the key from the
// salt stored in the blob header.
func (r *resolver) resolveForLoad(policy KeyPolicy, slot string, userKey, salt []byte) (*ResolvedKey, error) {
	strategies := policy.PermittedStrategies()
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: policy permits no key strategy", ErrPolicyUnsatisfiable)
	}

	var keyringErr error
	for _, strategy := range strategies {
		switch strategy {
		case StrategyKeyring:
			if !r.keyring.Available() {
				keyringErr = ErrKeyringUnavailable
				continue
			}
			key, err := r.keyring.Get(slot)
			if err != nil {
				keyringErr = err
				continue
			}
			return &ResolvedKey{Key: key, Origin: OriginKeyring}, nil

		case StrategyUserSupplied:
			if len(userKey) == 0 {
				return nil, ErrMissingUserKey
			}
			if len(salt) != saltSize {
				return nil, fmt.Errorf("%w: blob carries no user-key salt", ErrFormat)
			}
			return &ResolvedKey{
				Key:    deriveUserKey(userKey, salt),
				Origin: OriginUserSupplied,
			}, nil
		}
	}

	return nil, policyFailure(keyringErr)
}

// policyFailure wraps the last strategy error into the terminal policy
// error so callers can match both with errors.Is.
func policyFailure(cause error) error {
	if cause == nil {
		return ErrPolicyUnsatisfiable
	}
	return fmt.Errorf("%w: %w", ErrPolicyUnsatisfiable, cause)
}

// deriveUserKey derives a 256-bit key from caller material with argon2id.
// The same material and salt always re-derive the same key.
func deriveUserKey(material, salt []byte) []byte {
	return argon2.IDKey(material, salt, argon2Time, argon2Memory, argon2Parallelism, keyLength)
}
