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

// Strategy identifies a key-retrieval strategy.
type Strategy string

const (
	// StrategyKeyring stores a random key in the OS keyring.
	StrategyKeyring Strategy = "keyring"

	// StrategyUserSupplied derives a key from caller-supplied material.
	StrategyUserSupplied Strategy = "user-supplied"
)

// KeyPolicy declares which key-retrieval strategies are permitted.
// It is purely declarative and carries no key material. A policy with both
// flags false is valid; every save/load under it fails.
//
// The policy is authoritative: an unavailable keyring never widens it at
// runtime. Falling back to a user-supplied key happens only when
// AllowUserKey was already true.
type KeyPolicy struct {
	// PreferKeyring tries an OS keyring-backed random key first.
	PreferKeyring bool `json:"prefer_keyring" yaml:"prefer_keyring"`

	// AllowUserKey permits falling back to a passphrase-derived key.
	AllowUserKey bool `json:"allow_user_key" yaml:"allow_user_key"`
}

// DefaultKeyPolicy prefers the keyring and forbids passphrase fallback.
func DefaultKeyPolicy() KeyPolicy {
	return KeyPolicy{PreferKeyring: true, AllowUserKey: false}
}

// PermittedStrategies returns the permitted strategies in preference order.
// An empty result is a valid output, not an error; the resolver turns it
// into ErrPolicyUnsatisfiable.
func (p KeyPolicy) PermittedStrategies() []Strategy {
	var strategies []Strategy
	if p.PreferKeyring {
		strategies = append(strategies, StrategyKeyring)
	}
	if p.AllowUserKey {
		strategies = append(strategies, StrategyUserSupplied)
	}
	return strategies
}
