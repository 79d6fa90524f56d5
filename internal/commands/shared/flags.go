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

package shared

// Global flag values - set by root command
var (
	profileFlag         string
	jsonFlag            bool
	quietFlag           bool
	logLevelFlag        string
	logFormatFlag       string
	passphraseStdinFlag bool

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlagPointers returns pointers to flag variables for binding.
// Called by root command to register flags.
func RegisterFlagPointers() (profile *string, jsonOut *bool, quiet *bool, logLevel, logFormat *string, passphraseStdin *bool) {
	return &profileFlag, &jsonFlag, &quietFlag, &logLevelFlag, &logFormatFlag, &passphraseStdinFlag
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetProfile returns the selected profile name
func GetProfile() string {
	return profileFlag
}

// GetJSON returns the JSON output flag value
func GetJSON() bool {
	return jsonFlag
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quietFlag
}

// GetLogLevel returns the log level override, empty when unset
func GetLogLevel() string {
	return logLevelFlag
}

// GetLogFormat returns the log format override, empty when unset
func GetLogFormat() string {
	return logFormatFlag
}

// GetPassphraseStdin reports whether the passphrase comes from stdin
func GetPassphraseStdin() bool {
	return passphraseStdinFlag
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}
