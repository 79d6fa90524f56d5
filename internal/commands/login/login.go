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

// Package login implements the device-code login command.
package login

import (
	"github.com/spf13/cobra"

	"github.com/mxtools/send/internal/commands/shared"
	"github.com/mxtools/send/internal/credentials"
)

// NewCommand creates the login command.
func NewCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the configured provider",
		Long: `Run the OAuth device-code flow for the configured provider and
store the resulting token in the encrypted credential file. The command
prints a verification URL and a code to enter in a browser.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase, err := shared.ReadPassphraseIfConfigured()
			if err != nil {
				return err
			}

			c, err := shared.NewClient(passphrase)
			if err != nil {
				return shared.NewConfigError("failed to initialize client", err)
			}

			if err := c.Login(cmd.Context(), backend); err != nil {
				if credentials.IsNotFound(err) {
					return shared.NewConfigError("no credentials configured; run 'send creds init'", nil)
				}
				return shared.NewAuthError("login failed", err)
			}

			cmd.Println(shared.RenderOK("signed in; token stored"))
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Backend to sign in to (default: configured backend)")

	return cmd
}
