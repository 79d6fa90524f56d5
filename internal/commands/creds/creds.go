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

// Package creds implements the credential management commands.
package creds

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the creds command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage encrypted provider credentials",
		Long: `Manage the encrypted credential file.

Credentials are encrypted at rest with AES-256-GCM. The data key comes
from the OS keyring by default; with --user-key a key is derived from a
passphrase instead, so the file can move between machines.`,
	}

	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newSetMSGraphCommand())
	cmd.AddCommand(newSetGmailCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newPathCommand())

	return cmd
}
