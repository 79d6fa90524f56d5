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

import "fmt"

// fakeKeyring is an in-memory KeyringStore so tests never touch the real
// OS keyring.
type fakeKeyring struct {
	entries     map[string][]byte
	unavailable bool
	failSet     bool
}

func newFakeKeyring() *fakeKeyring {
	return &fakeKeyring{entries: make(map[string][]byte)}
}

func (f *fakeKeyring) Get(slot string) ([]byte, error) {
	if f.unavailable {
		return nil, fmt.Errorf("%w: fake keyring offline", ErrKeyringUnavailable)
	}
	key, ok := f.entries[slot]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, slot)
	}
	out := make([]byte, len(key))
	copy(out, key)
	return out, nil
}

func (f *fakeKeyring) Set(slot string, key []byte) error {
	if f.unavailable {
		return fmt.Errorf("%w: fake keyring offline", ErrKeyringUnavailable)
	}
	if f.failSet {
		return fmt.Errorf("%w: write rejected", ErrKeyringUnavailable)
	}
	stored := make([]byte, len(key))
	copy(stored, key)
	f.entries[slot] = stored
	return nil
}

func (f *fakeKeyring) Delete(slot string) error {
	if f.unavailable {
		return fmt.Errorf("%w: fake keyring offline", ErrKeyringUnavailable)
	}
	if _, ok := f.entries[slot]; !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, slot)
	}
	delete(f.entries, slot)
	return nil
}

func (f *fakeKeyring) Available() bool {
	return !f.unavailable
}
