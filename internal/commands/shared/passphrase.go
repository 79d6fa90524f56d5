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

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadPassphrase sources the user-key passphrase in precedence order:
// --passphrase-stdin, the SEND_PASSPHRASE environment variable, then a
// hidden terminal prompt. Returns nil when no passphrase is available
// and prompting is not possible; keyring-backed configs need none.
func ReadPassphrase(prompt string) ([]byte, error) {
	if GetPassphraseStdin() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("failed to read passphrase from stdin: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	if env := os.Getenv("SEND_PASSPHRASE"); env != "" {
		return []byte(env), nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil
	}

	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return pass, nil
}

// ReadPassphraseIfConfigured returns a passphrase only when one was
// explicitly provided via --passphrase-stdin or SEND_PASSPHRASE. It never
// prompts; commands that know they need a user key prompt themselves.
func ReadPassphraseIfConfigured() ([]byte, error) {
	if GetPassphraseStdin() {
		return ReadPassphrase("")
	}
	if env := os.Getenv("SEND_PASSPHRASE"); env != "" {
		return []byte(env), nil
	}
	return nil, nil
}
