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

// Package credentials persists provider configuration, including cached
// access tokens, encrypted at rest.
//
// A KeyPolicy declares which of two mutually exclusive key strategies may
// be used: a random key held in the OS keyring, or a key derived from
// caller-supplied material with argon2id. The Store resolves a key per
// call under the policy, encrypts the serialized document with
// AES-256-GCM, and writes the blob atomically. There is no silent
// downgrade: when the preferred strategy is unavailable and the policy
// permits nothing else, the operation fails and nothing is written.
package credentials
