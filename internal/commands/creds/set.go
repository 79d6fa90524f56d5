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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mxtools/send/internal/commands/shared"
	"github.com/mxtools/send/internal/credentials"
)

// newSetMSGraphCommand configures the Microsoft Graph account non-interactively.
func newSetMSGraphCommand() *cobra.Command {
	var (
		email     string
		clientID  string
		authority string
		userKey   bool
	)

	cmd := &cobra.Command{
		Use:   "set-msgraph",
		Short: "Configure the Microsoft Graph account",
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := credentials.Authority(authority)
			if err := auth.Validate(); err != nil {
				return err
			}

			passphrase, err := resolvePassphrase(userKey, false)
			if err != nil {
				return err
			}
			c, err := newCredsClient(userKey, passphrase)
			if err != nil {
				return err
			}

			if err := c.UpdateMSGraph(credentials.MSGraphConfig{
				EmailAddress: email,
				ClientID:     clientID,
				Authority:    auth,
			}); err != nil {
				return shared.NewConfigError("failed to save credentials", err)
			}

			cmd.Println(shared.RenderOK(fmt.Sprintf("ms_graph account %s configured", email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&authority, "authority", string(credentials.AuthorityOrganization),
		"Account type: organization or consumer")
	cmd.Flags().BoolVar(&userKey, "user-key", false, "Derive the encryption key from a passphrase")
	cobra.CheckErr(cmd.MarkFlagRequired("email"))
	cobra.CheckErr(cmd.MarkFlagRequired("client-id"))

	return cmd
}

// newSetGmailCommand configures the Gmail account non-interactively.
func newSetGmailCommand() *cobra.Command {
	var (
		email        string
		clientID     string
		clientSecret string
		userKey      bool
	)

	cmd := &cobra.Command{
		Use:   "set-gmail",
		Short: "Configure the Gmail account",
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase, err := resolvePassphrase(userKey, false)
			if err != nil {
				return err
			}
			c, err := newCredsClient(userKey, passphrase)
			if err != nil {
				return err
			}

			if err := c.UpdateGmail(credentials.GmailConfig{
				EmailAddress: email,
				ClientID:     clientID,
				ClientSecret: clientSecret,
			}); err != nil {
				return shared.NewConfigError("failed to save credentials", err)
			}

			cmd.Println(shared.RenderOK(fmt.Sprintf("gmail account %s configured", email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	cmd.Flags().BoolVar(&userKey, "user-key", false, "Derive the encryption key from a passphrase")
	cobra.CheckErr(cmd.MarkFlagRequired("email"))
	cobra.CheckErr(cmd.MarkFlagRequired("client-id"))
	cobra.CheckErr(cmd.MarkFlagRequired("client-secret"))

	return cmd
}
