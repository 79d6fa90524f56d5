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

// Package history implements the send history command.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mxtools/send/internal/commands/shared"
)

// NewCommand creates the history command.
func NewCommand() *cobra.Command {
	var (
		limit     int
		pruneDays int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sends",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shared.NewClient(nil)
			if err != nil {
				return shared.NewConfigError("failed to initialize client", err)
			}

			if pruneDays > 0 {
				cutoff := time.Now().AddDate(0, 0, -pruneDays)
				pruned, err := c.PruneHistory(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				cmd.Println(shared.Muted.Render(fmt.Sprintf("pruned %d entries older than %d days", pruned, pruneDays)))
			}

			entries, err := c.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if shared.GetJSON() {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(data))
				return nil
			}

			if len(entries) == 0 {
				cmd.Println(shared.Muted.Render("no sends recorded"))
				return nil
			}

			for _, e := range entries {
				marker := shared.StatusOK.Render(shared.SymbolOK)
				if e.DryRun {
					marker = shared.Muted.Render("dry")
				}
				cmd.Printf("%s %s  %s  %s → %s  %q",
					marker,
					e.SentAt.Local().Format(time.DateTime),
					shared.Bold.Render(e.Backend),
					e.From,
					strings.Join(e.To, ", "),
					e.Subject)
				if e.AttachmentCount > 0 {
					cmd.Printf("  %s", shared.Muted.Render(fmt.Sprintf("(%d attachments)", e.AttachmentCount)))
				}
				cmd.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete entries older than this many days before listing")

	return cmd
}
