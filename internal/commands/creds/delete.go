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
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/mxtools/send/internal/commands/shared"
)

// newDeleteCommand removes the credential file and its keyring entry.
func newDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the credential file and its keyring entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				confirmed := false
				prompt := &survey.Confirm{
					Message: "Delete the stored credentials? This cannot be undone.",
					Default: false,
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					cmd.Println(shared.Muted.Render("aborted"))
					return nil
				}
			}

			c, err := newCredsClient(false, nil)
			if err != nil {
				return err
			}
			if err := c.DeleteDocument(); err != nil {
				return shared.NewConfigError("failed to delete credentials", err)
			}

			cmd.Println(shared.RenderOK("credentials deleted"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

// newPathCommand prints where the encrypted credential file lives.
func newPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the credential file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCredsClient(false, nil)
			if err != nil {
				return err
			}
			cmd.Println(c.Paths().EncryptedConfigPath())
			return nil
		},
	}
}
