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

// Package mail implements the send mail command.
package mail

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mxtools/send/internal/client"
	"github.com/mxtools/send/internal/commands/shared"
)

type mailFlags struct {
	from           string
	to             []string
	cc             []string
	bcc            []string
	subject        string
	text           string
	textFile       string
	html           string
	htmlFile       string
	attachments    []string
	headers        []string
	backend        string
	dryRun         bool
	nonInteractive bool
}

// NewCommand creates the mail command.
func NewCommand() *cobra.Command {
	flags := &mailFlags{}

	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Compose and send an email",
		Long: `Compose and send an email through the configured provider.

The message body comes from --text or --text-file; --html adds an HTML
alternative. Attachments accept glob patterns, including ** recursion.

With --dry-run the message is written to the outbox directory as .eml
instead of being sent.`,
		Example: `  send mail --to alice@example.com --subject "Report" --text "Attached." --attach "reports/**/*.pdf"
  send mail --to team@example.com --subject "Update" --text-file update.txt --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMail(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "Sender address (default: configured account)")
	cmd.Flags().StringSliceVar(&flags.to, "to", nil, "Recipient address (repeatable)")
	cmd.Flags().StringSliceVar(&flags.cc, "cc", nil, "Cc address (repeatable)")
	cmd.Flags().StringSliceVar(&flags.bcc, "bcc", nil, "Bcc address (repeatable)")
	cmd.Flags().StringVarP(&flags.subject, "subject", "s", "", "Message subject")
	cmd.Flags().StringVar(&flags.text, "text", "", "Plain text body")
	cmd.Flags().StringVar(&flags.textFile, "text-file", "", "Read plain text body from file (- for stdin)")
	cmd.Flags().StringVar(&flags.html, "html", "", "HTML body")
	cmd.Flags().StringVar(&flags.htmlFile, "html-file", "", "Read HTML body from file")
	cmd.Flags().StringSliceVarP(&flags.attachments, "attach", "a", nil, "Attachment path or glob (repeatable)")
	cmd.Flags().StringSliceVarP(&flags.headers, "header", "H", nil, "Custom header as 'Name: value' (repeatable)")
	cmd.Flags().StringVar(&flags.backend, "backend", "", "Backend override (ms_graph, google_api, dry_run)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Write the message to the outbox instead of sending")
	cmd.Flags().BoolVar(&flags.nonInteractive, "non-interactive", false, "Fail instead of prompting for login")

	cobra.CheckErr(cmd.MarkFlagRequired("to"))

	return cmd
}

func runMail(cmd *cobra.Command, flags *mailFlags) error {
	text, err := resolveBody(flags.text, flags.textFile)
	if err != nil {
		return err
	}
	html, err := resolveBody(flags.html, flags.htmlFile)
	if err != nil {
		return err
	}

	headers, err := parseHeaders(flags.headers)
	if err != nil {
		return err
	}

	passphrase, err := shared.ReadPassphraseIfConfigured()
	if err != nil {
		return err
	}

	c, err := shared.NewClient(passphrase)
	if err != nil {
		return shared.NewConfigError("failed to initialize client", err)
	}

	from := flags.from
	if from == "" {
		from, err = defaultFrom(c)
		if err != nil {
			return err
		}
	}

	result, err := c.Send(cmd.Context(), client.SendOptions{
		From:            from,
		To:              flags.to,
		Cc:              flags.cc,
		Bcc:             flags.bcc,
		Subject:         flags.subject,
		TextBody:        text,
		HTMLBody:        html,
		AttachmentGlobs: flags.attachments,
		Headers:         headers,
		Backend:         flags.backend,
		Interactive:     !flags.nonInteractive,
		DryRun:          flags.dryRun,
	})
	if err != nil {
		return err
	}

	if shared.GetJSON() {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	if result.DryRun {
		cmd.Println(shared.RenderOK(fmt.Sprintf("message written to outbox (%d attachments)", result.AttachmentCount)))
	} else {
		cmd.Println(shared.RenderOK(fmt.Sprintf("message sent via %s (%d attachments)", result.Backend, result.AttachmentCount)))
	}
	return nil
}

// defaultFrom picks the sender from the configured account when the flag
// is absent. Dry runs without configuration still need --from.
func defaultFrom(c *client.EmailClient) (string, error) {
	doc, err := c.LoadDocument()
	if err != nil {
		return "", fmt.Errorf("--from is required when no account is configured: %w", err)
	}
	switch {
	case doc.MSGraph != nil && doc.Backend == "ms_graph":
		return doc.MSGraph.EmailAddress, nil
	case doc.Gmail != nil && doc.Backend == "google_api":
		return doc.Gmail.EmailAddress, nil
	case doc.MSGraph != nil:
		return doc.MSGraph.EmailAddress, nil
	case doc.Gmail != nil:
		return doc.Gmail.EmailAddress, nil
	}
	return "", fmt.Errorf("--from is required when no account is configured")
}

// resolveBody prefers the inline value, then the file. "-" reads stdin.
func resolveBody(inline, file string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if file == "" {
		return "", nil
	}
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read body from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read body file: %w", err)
	}
	return string(data), nil
}

// parseHeaders converts "Name: value" pairs to a map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}
