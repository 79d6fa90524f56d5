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

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mxtools/send/internal/commands/shared"
	"github.com/mxtools/send/internal/credentials"
)

// newInitCommand creates the interactive setup wizard.
func newInitCommand() *cobra.Command {
	var userKey bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively configure a provider account",
		Long: `Walk through configuring a provider account and write the
encrypted credential file. Safe to re-run; existing accounts for other
providers are preserved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, userKey)
		},
	}

	cmd.Flags().BoolVar(&userKey, "user-key", false, "Derive the encryption key from a passphrase instead of the OS keyring")

	return cmd
}

func runInit(cmd *cobra.Command, userKey bool) error {
	var (
		provider  string
		email     string
		clientID  string
		secret    string
		authority = string(credentials.AuthorityOrganization)
	)

	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Email provider").
				Options(
					huh.NewOption("Microsoft 365 / Outlook (Graph API)", "ms_graph"),
					huh.NewOption("Gmail (Google API)", "google_api"),
				).
				Value(&provider),
		),
	)
	if err := providerForm.Run(); err != nil {
		return err
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Email address").
				Value(&email).
				Validate(requireValue("email address")),
			huh.NewInput().
				Title("OAuth client ID").
				Description("The application (client) ID registered with the provider").
				Value(&clientID).
				Validate(requireValue("client ID")),
		),
	}
	switch provider {
	case "ms_graph":
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account type").
				Options(
					huh.NewOption("Work or school account", string(credentials.AuthorityOrganization)),
					huh.NewOption("Personal Microsoft account", string(credentials.AuthorityConsumer)),
				).
				Value(&authority),
		))
	case "google_api":
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("OAuth client secret").
				Description("Device-flow client secrets are not confidential, but are stored encrypted anyway").
				EchoMode(huh.EchoModePassword).
				Value(&secret).
				Validate(requireValue("client secret")),
		))
	}

	if err := huh.NewForm(groups...).Run(); err != nil {
		return err
	}

	passphrase, err := resolvePassphrase(userKey, true)
	if err != nil {
		return err
	}

	c, err := newCredsClient(userKey, passphrase)
	if err != nil {
		return err
	}

	switch provider {
	case "ms_graph":
		err = c.UpdateMSGraph(credentials.MSGraphConfig{
			EmailAddress: email,
			ClientID:     clientID,
			Authority:    credentials.Authority(authority),
		})
	case "google_api":
		err = c.UpdateGmail(credentials.GmailConfig{
			EmailAddress: email,
			ClientID:     clientID,
			ClientSecret: secret,
		})
	}
	if err != nil {
		return shared.NewConfigError("failed to save credentials", err)
	}

	cmd.Println(shared.RenderOK(fmt.Sprintf("credentials saved to %s", c.Paths().EncryptedConfigPath())))
	cmd.Println(shared.Muted.Render("run 'send login' to acquire a token"))
	return nil
}

func requireValue(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
