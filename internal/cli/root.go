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

// Package cli wires the root command and global flags.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mxtools/send/internal/commands/shared"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "send - email from the command line",
		Long: `send delivers email through Microsoft Graph or the Gmail API with
credentials kept encrypted at rest.

Run 'send creds init' to configure an account, 'send login' to sign in,
and 'send mail' to deliver a message.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	// Get flag pointers from shared package
	profile, jsonOut, quiet, logLevel, logFormat, passphraseStdin := shared.RegisterFlagPointers()

	// Add global flags
	cmd.PersistentFlags().StringVar(profile, "profile", "", "Configuration profile name")
	cmd.PersistentFlags().BoolVar(jsonOut, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().StringVar(logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(logFormat, "log-format", "", "Log format override (text, json)")
	cmd.PersistentFlags().BoolVar(passphraseStdin, "passphrase-stdin", false, "Read the credential passphrase from stdin")

	// Accept underscore spellings (--log_level) for flag names.
	cmd.PersistentFlags().SetNormalizeFunc(normalizeFlagName)

	return cmd
}

func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
