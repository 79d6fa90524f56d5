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

package shared

import (
	"github.com/mxtools/send/internal/client"
	"github.com/mxtools/send/internal/credentials"
	"github.com/mxtools/send/internal/log"
)

// NewClient builds an EmailClient from the global flags. userKey may be
// nil for keyring-backed configurations.
func NewClient(userKey []byte) (*client.EmailClient, error) {
	logCfg := log.FromEnv()
	if level := GetLogLevel(); level != "" {
		logCfg.Level = level
	}
	if format := GetLogFormat(); format != "" {
		logCfg.Format = log.Format(format)
	}
	if GetQuiet() {
		logCfg.Level = "error"
	}

	var policy *credentials.KeyPolicy
	if len(userKey) > 0 {
		// An explicit passphrase means the user wants the user-key
		// strategy honored alongside the keyring.
		policy = &credentials.KeyPolicy{PreferKeyring: true, AllowUserKey: true}
	}

	return client.New(client.Options{
		Profile: GetProfile(),
		Policy:  policy,
		UserKey: userKey,
		Logger:  log.New(logCfg),
		Version: version,
	})
}
