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

// Package transport delivers built messages through provider APIs. Each
// transport is a thin HTTP wrapper; it never reads or writes the encrypted
// credential file and only receives an access token after an explicit load
// by the orchestrating caller.
package transport

import (
	"context"
	"fmt"

	"github.com/mxtools/send/internal/message"
)

// Backend identifies a delivery backend.
type Backend string

const (
	// BackendMSGraph sends through the Microsoft Graph sendMail API.
	BackendMSGraph Backend = "ms_graph"

	// BackendGoogleAPI sends through the Gmail API.
	BackendGoogleAPI Backend = "google_api"

	// BackendDryRun records messages to disk instead of sending.
	BackendDryRun Backend = "dry_run"
)

// ParseBackend validates a backend name.
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case BackendMSGraph, BackendGoogleAPI, BackendDryRun:
		return Backend(name), nil
	default:
		return "", fmt.Errorf("unknown backend %q (valid: %s, %s, %s)",
			name, BackendMSGraph, BackendGoogleAPI, BackendDryRun)
	}
}

// Transport sends one built message.
type Transport interface {
	// Name returns the backend identifier.
	Name() string

	// Send delivers the message. It does not mutate the message.
	Send(ctx context.Context, msg *message.Message) error
}

// TransportError describes a delivery failure.
type TransportError struct {
	// Backend is the transport that failed.
	Backend string

	// StatusCode is the HTTP status, when the failure came from a response.
	StatusCode int

	// Message is a human-readable description. It never contains tokens.
	Message string

	// Retryable indicates the caller may reasonably try again.
	Retryable bool

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Backend, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// classifyStatus maps a provider HTTP status to a TransportError.
func classifyStatus(backend string, statusCode int, body string) *TransportError {
	retryable := statusCode >= 500 || statusCode == 429
	msg := fmt.Sprintf("send failed: %s", body)
	if statusCode == 401 || statusCode == 403 {
		msg = "authentication rejected by provider"
	}
	return &TransportError{
		Backend:    backend,
		StatusCode: statusCode,
		Message:    msg,
		Retryable:  retryable,
	}
}
