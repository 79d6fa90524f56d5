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

package creds

import (
	"bytes"
	"fmt"

	"github.com/mxtools/send/internal/client"
	"github.com/mxtools/send/internal/commands/shared"
	"github.com/mxtools/send/internal/credentials"
	"github.com/mxtools/send/internal/log"
)

// resolvePassphrase sources the passphrase for user-key mode. With
// confirm set the passphrase is prompted twice and must match, unless it
// came from stdin or the environment.
func resolvePassphrase(userKey, confirm bool) ([]byte, error) {
	if !userKey {
		return shared.ReadPassphraseIfConfigured()
	}

	pass, err := shared.ReadPassphraseIfConfigured()
	if err != nil {
		return nil, err
	}
	if pass != nil {
		return pass, nil
	}

	pass, err = shared.ReadPassphrase("Passphrase: ")
	if err != nil {
		return nil, err
	}
	if len(pass) == 0 {
		return nil, fmt.Errorf("a passphrase is required with --user-key")
	}

	if confirm {
		again, err := shared.ReadPassphrase("Confirm passphrase: ")
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(pass, again) {
			return nil, fmt.Errorf("passphrases do not match")
		}
	}
	return pass, nil
}

// newCredsClient builds a client whose key policy matches the chosen
// protection mode.
func newCredsClient(userKey bool, passphrase []byte) (*client.EmailClient, error) {
	policy := credentials.DefaultKeyPolicy()
	if userKey {
		policy = credentials.KeyPolicy{PreferKeyring: false, AllowUserKey: true}
	} else if len(passphrase) > 0 {
		policy.AllowUserKey = true
	}

	logCfg := log.FromEnv()
	if level := shared.GetLogLevel(); level != "" {
		logCfg.Level = level
	}
	if format := shared.GetLogFormat(); format != "" {
		logCfg.Format = log.Format(format)
	}

	return client.New(client.Options{
		Profile: shared.GetProfile(),
		Policy:  &policy,
		UserKey: passphrase,
		Logger:  log.New(logCfg),
	})
}
