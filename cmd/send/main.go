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

package main

import (
	"github.com/mxtools/send/internal/cli"
	"github.com/mxtools/send/internal/commands/creds"
	"github.com/mxtools/send/internal/commands/history"
	"github.com/mxtools/send/internal/commands/login"
	"github.com/mxtools/send/internal/commands/mail"
	versioncmd "github.com/mxtools/send/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set version information from build-time ldflags
	cli.SetVersion(version, commit, buildDate)

	// Create root command and add subcommands
	rootCmd := cli.NewRootCommand()

	rootCmd.AddCommand(mail.NewCommand())
	rootCmd.AddCommand(creds.NewCommand())
	rootCmd.AddCommand(login.NewCommand())
	rootCmd.AddCommand(history.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
