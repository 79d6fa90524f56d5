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
	"errors"
	"fmt"
	"os"

	"github.com/mxtools/send/internal/auth"
	"github.com/mxtools/send/internal/credentials"
	"github.com/mxtools/send/internal/transport"
)

// Exit codes for the send command
const (
	ExitSuccess     = 0
	ExitSendFailed  = 1
	ExitConfigError = 2
	ExitAuthError   = 3
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates an error for configuration and credential problems
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitConfigError, Message: msg, Cause: cause}
}

// NewAuthError creates an error for authentication failures
func NewAuthError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitAuthError, Message: msg, Cause: cause}
}

// classify maps well-known error kinds to exit codes.
func classify(err error) int {
	switch {
	case errors.Is(err, auth.ErrInteractiveRequired):
		return ExitAuthError
	case errors.Is(err, credentials.ErrAuthenticationFailure),
		errors.Is(err, credentials.ErrPolicyUnsatisfiable),
		errors.Is(err, credentials.ErrMissingUserKey),
		errors.Is(err, credentials.ErrFormat):
		return ExitConfigError
	}

	var te *transport.TransportError
	if errors.As(err, &te) && (te.StatusCode == 401 || te.StatusCode == 403) {
		return ExitAuthError
	}
	return ExitSendFailed
}

// HandleExitError prints the error and exits with the appropriate code.
func HandleExitError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, RenderError(err.Error()))

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(classify(err))
}
