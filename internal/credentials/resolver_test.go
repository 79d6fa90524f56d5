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
	"bytes"
	"errors"
	"testing"
)

func TestResolveForSave_KeyringStrategy(t *testing.T) {
	kr := newFakeKeyring()
	r := &resolver{keyring: kr}

	resolved, err := r.resolveForSave(KeyPolicy{PreferKeyring: true}, "config-slot", nil)
	if err != nil {
		t.Fatalf("resolveForSave() error = %v", err)
	}
	defer resolved.Zero()

	if resolved.Origin != OriginKeyring {
		t.Errorf("Origin = %v, want %v", resolved.Origin, OriginKeyring)
	}
	if len(resolved.Key) != keyLength {
		t.Errorf("key length = %d, want %d", len(resolved.Key), keyLength)
	}
	if resolved.Salt != nil {
		t.Errorf("Salt = %v, want nil for keyring strategy", resolved.Salt)
	}

	stored, err := kr.Get("config-slot")
	if err != nil {
		t.Fatalf("fake keyring Get() error = %v", err)
	}
	if !bytes.Equal(stored, resolved.Key) {
		t.Error("stored keyring entry does not match the resolved key")
	}
}

func TestResolveForSave_UserSuppliedStrategy(t *testing.T) {
	r := &resolver{keyring: newFakeKeyring()}
	policy := KeyPolicy{PreferKeyring: false, AllowUserKey: true}

	resolved, err := r.resolveForSave(policy, "config-slot", []byte("correct-passphrase"))
	if err != nil {
		t.Fatalf("resolveForSave() error = %v", err)
	}
	defer resolved.Zero()

	if resolved.Origin != OriginUserSupplied {
		t.Errorf("Origin = %v, want %v", resolved.Origin, OriginUserSupplied)
	}
	if len(resolved.Salt) != saltSize {
		t.Errorf("salt length = %d, want %d", len(resolved.Salt), saltSize)
	}

	// The same material plus the returned salt must re-derive the key.
	rederived := deriveUserKey([]byte("correct-passphrase"), resolved.Salt)
	if !bytes.Equal(rederived, resolved.Key) {
		t.Error("salt does not re-derive the resolved key")
	}
}

func TestResolveForSave_MissingUserKey(t *testing.T) {
	r := &resolver{keyring: newFakeKeyring()}
	policy := KeyPolicy{PreferKeyring: false, AllowUserKey: true}

	if _, err := r.resolveForSave(policy, "config-slot", nil); !errors.Is(err, ErrMissingUserKey) {
		t.Errorf("resolveForSave() error = %v, want ErrMissingUserKey", err)
	}
}

func TestResolveForSave_EmptyPolicy(t *testing.T) {
	r := &resolver{keyring: newFakeKeyring()}

	_, err := r.resolveForSave(KeyPolicy{}, "config-slot", []byte("ignored"))
	if !errors.Is(err, ErrPolicyUnsatisfiable) {
		t.Errorf("resolveForSave() error = %v, want ErrPolicyUnsatisfiable", err)
	}
}

func TestResolveForSave_KeyringUnavailableNoFallback(t *testing.T) {
	kr := newFakeKeyring()
	kr.unavailable = true
	r := &resolver{keyring: kr}

	_, err := r.resolveForSave(KeyPolicy{PreferKeyring: true}, "config-slot", nil)
	if !errors.Is(err, ErrPolicyUnsatisfiable) {
		t.Errorf("resolveForSave() error = %v, want ErrPolicyUnsatisfiable", err)
	}
	if !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("resolveForSave() error = %v, want wrapped ErrKeyringUnavailable", err)
	}
}

func TestResolveForSave_KeyringUnavailableWithPermittedFallback(t *testing.T) {
	kr := newFakeKeyring()
	kr.unavailable = true
	r := &resolver{keyring: kr}
	policy := KeyPolicy{PreferKeyring: true, AllowUserKey: true}

	resolved, err := r.resolveForSave(policy, "config-slot", []byte("pass"))
	if err != nil {
		t.Fatalf("resolveForSave() error = %v", err)
	}
	defer resolved.Zero()

	if resolved.Origin != OriginUserSupplied {
		t.Errorf("Origin = %v, want %v", resolved.Origin, OriginUserSupplied)
	}
}

func TestResolveForSave_KeyringWriteFailure(t *testing.T) {
	kr := newFakeKeyring()
	kr.failSet = true
	r := &resolver{keyring: kr}

	// Write failure with no permitted fallback is terminal.
	_, err := r.resolveForSave(KeyPolicy{PreferKeyring: true}, "config-slot", nil)
	if !errors.Is(err, ErrPolicyUnsatisfiable) {
		t.Errorf("resolveForSave() error = %v, want ErrPolicyUnsatisfiable", err)
	}
	if len(kr.entries) != 0 {
		t.Error("failed save left an entry in the keyring")
	}
}

func TestResolveForLoad_KeyringEntryPresent(t *testing.T) {
	kr := newFakeKeyring()
	key, _ := generateKey()
	if err := kr.Set("config-slot", key); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	r := &resolver{keyring: kr}

	resolved, err := r.resolveForLoad(KeyPolicy{PreferKeyring: true}, "config-slot", nil, nil)
	if err != nil {
		t.Fatalf("resolveForLoad() error = %v", err)
	}
	defer resolved.Zero()

	if !bytes.Equal(resolved.Key, key) {
		t.Error("resolved key does not match the stored keyring entry")
	}
	if resolved.Origin != OriginKeyring {
		t.Errorf("Origin = %v, want %v", resolved.Origin, OriginKeyring)
	}
}

func TestResolveForLoad_KeyringEntryAbsent(t *testing.T) {
	r := &resolver{keyring: newFakeKeyring()}

	// Absent entry with no fallback surfaces as a policy failure.
	_, err := r.resolveForLoad(KeyPolicy{PreferKeyring: true}, "config-slot", nil, nil)
	if !errors.Is(err, ErrPolicyUnsatisfiable) {
		t.Errorf("resolveForLoad() error = %v, want ErrPolicyUnsatisfiable", err)
	}
}

func TestResolveForLoad_AbsentEntryFallsToUserKey(t *testing.T) {
	r := &resolver{keyring: newFakeKeyring()}
	policy := KeyPolicy{PreferKeyring: true, AllowUserKey: true}
	salt := bytes.Repeat([]byte{0x05}, saltSize)

	resolved, err := r.resolveForLoad(policy, "config-slot", []byte("pass"), salt)
	if err != nil {
		t.Fatalf("resolveForLoad() error = %v", err)
	}
	defer resolved.Zero()

	if resolved.Origin != OriginUserSupplied {
		t.Errorf("Origin = %v, want %v", resolved.Origin, OriginUserSupplied)
	}
}

func TestResolveForLoad_UserKeyWithoutSalt(t *testing.T) {
	r := &resolver{keyring: newFakeKeyring()}
	policy := KeyPolicy{PreferKeyring: false, AllowUserKey: true}

	if _, err := r.resolveForLoad(policy, "config-slot", []byte("pass"), nil); !errors.Is(err, ErrFormat) {
		t.Errorf("resolveForLoad() error = %v, want ErrFormat", err)
	}
}

func TestResolvedKey_Zero(t *testing.T) {
	key := []byte{1, 2, 3, 4}
	resolved := &ResolvedKey{Key: key, Origin: OriginKeyring}
	resolved.Zero()

	for i, b := range key {
		if b != 0 {
			t.Fatalf("key byte %d = %d after Zero(), want 0", i, b)
		}
	}
}
