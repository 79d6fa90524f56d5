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
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/mxtools/send/internal/commands/shared"
	"github.com/mxtools/send/internal/credentials"
	"github.com/mxtools/send/internal/log"
)

// shownDocument is the masked view of a credential document. Secrets and
// tokens never appear in full.
type shownDocument struct {
	Backend string        `json:"backend"`
	MSGraph *shownAccount `json:"ms_graph,omitempty"`
	Gmail   *shownAccount `json:"gmail,omitempty"`
}

type shownAccount struct {
	EmailAddress string `json:"email_address"`
	ClientID     string `json:"client_id"`
	Authority    string `json:"authority,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	Token        string `json:"token,omitempty"`
	TokenAge     string `json:"token_age,omitempty"`
}

// newShowCommand displays the decrypted configuration with secrets masked.
func newShowCommand() *cobra.Command {
	var userKey bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the configured accounts (secrets masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase, err := resolvePassphrase(userKey, false)
			if err != nil {
				return err
			}
			c, err := newCredsClient(userKey, passphrase)
			if err != nil {
				return err
			}

			doc, err := c.LoadDocument()
			if err != nil {
				if credentials.IsNotFound(err) {
					return shared.NewConfigError("no credentials configured; run 'send creds init'", nil)
				}
				return shared.NewConfigError("failed to load credentials", err)
			}

			shown := maskDocument(doc)
			if shared.GetJSON() {
				data, err := json.MarshalIndent(shown, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(data))
				return nil
			}

			cmd.Printf("%s %s\n", shared.RenderLabel("backend:"), shown.Backend)
			printAccount(cmd, "ms_graph", shown.MSGraph)
			printAccount(cmd, "gmail", shown.Gmail)
			return nil
		},
	}

	cmd.Flags().BoolVar(&userKey, "user-key", false, "Decrypt with a passphrase-derived key")

	return cmd
}

func printAccount(cmd *cobra.Command, name string, a *shownAccount) {
	if a == nil {
		return
	}
	cmd.Println(shared.Header.Render(name))
	cmd.Printf("  %s %s\n", shared.RenderLabel("email:"), a.EmailAddress)
	cmd.Printf("  %s %s\n", shared.RenderLabel("client id:"), a.ClientID)
	if a.Authority != "" {
		cmd.Printf("  %s %s\n", shared.RenderLabel("authority:"), a.Authority)
	}
	if a.ClientSecret != "" {
		cmd.Printf("  %s %s\n", shared.RenderLabel("client secret:"), a.ClientSecret)
	}
	if a.Token != "" {
		cmd.Printf("  %s %s (%s)\n", shared.RenderLabel("token:"), a.Token, a.TokenAge)
	}
}

func maskDocument(doc credentials.Document) shownDocument {
	shown := shownDocument{Backend: doc.Backend}
	if doc.MSGraph != nil {
		shown.MSGraph = &shownAccount{
			EmailAddress: doc.MSGraph.EmailAddress,
			ClientID:     doc.MSGraph.ClientID,
			Authority:    string(doc.MSGraph.Authority),
		}
		shown.MSGraph.Token, shown.MSGraph.TokenAge = maskToken(doc.MSGraph.TokenValue, doc.MSGraph.TokenTimestamp)
	}
	if doc.Gmail != nil {
		shown.Gmail = &shownAccount{
			EmailAddress: doc.Gmail.EmailAddress,
			ClientID:     doc.Gmail.ClientID,
			ClientSecret: log.SanitizeSecret(doc.Gmail.ClientSecret),
		}
		shown.Gmail.Token, shown.Gmail.TokenAge = maskToken(doc.Gmail.TokenValue, doc.Gmail.TokenTimestamp)
	}
	return shown
}

func maskToken(value *string, stamp *time.Time) (masked, age string) {
	if value == nil || *value == "" {
		return "", ""
	}
	masked = log.SanitizeAPIKey(*value)
	if stamp != nil {
		age = time.Since(*stamp).Round(time.Minute).String()
	}
	return masked, age
}
