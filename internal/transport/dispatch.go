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

package transport

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/mxtools/send/internal/message"
)

// Options carries the per-send inputs a transport needs. The access token
// comes from the caller's explicit credential load; it is never read from
// disk here.
type Options struct {
	// AccessToken is the bearer token for provider backends.
	AccessToken string

	// FromAddress is the sender, used when the message has no From.
	FromAddress string

	// GmailHost overrides the Gmail API host.
	GmailHost string

	// OutDir is the dry-run output directory.
	OutDir string

	// HTTPClient overrides the provider HTTP client.
	HTTPClient *http.Client

	// Limiter throttles provider API calls.
	Limiter *rate.Limiter
}

// Process-wide limiters sized well under the providers' published send
// quotas (Graph mailbox throttling, Gmail ~2.5 sends/s of quota units),
// shared so batched sends from one process stay throttled together.
var (
	graphLimiter = rate.NewLimiter(rate.Limit(4), 4)
	gmailLimiter = rate.NewLimiter(rate.Limit(2), 2)
)

// DefaultLimiter returns the shared rate limiter for a provider backend,
// or nil for backends that make no API calls.
func DefaultLimiter(backend Backend) *rate.Limiter {
	switch backend {
	case BackendMSGraph:
		return graphLimiter
	case BackendGoogleAPI:
		return gmailLimiter
	default:
		return nil
	}
}

// Dispatch builds the transport for backend and sends msg through it.
func Dispatch(ctx context.Context, backend Backend, msg *message.Message, opts Options) error {
	t, err := New(backend, opts)
	if err != nil {
		return err
	}
	return t.Send(ctx, msg)
}

// New constructs the transport for a backend.
func New(backend Backend, opts Options) (Transport, error) {
	switch backend {
	case BackendMSGraph:
		var graphOpts []GraphOption
		if opts.HTTPClient != nil {
			graphOpts = append(graphOpts, WithGraphHTTPClient(opts.HTTPClient))
		}
		if opts.Limiter != nil {
			graphOpts = append(graphOpts, WithGraphRateLimiter(opts.Limiter))
		}
		return NewGraphTransport(opts.AccessToken, opts.FromAddress, graphOpts...)

	case BackendGoogleAPI:
		var gmailOpts []GmailOption
		if opts.GmailHost != "" {
			gmailOpts = append(gmailOpts, WithGmailHost(opts.GmailHost))
		}
		if opts.HTTPClient != nil {
			gmailOpts = append(gmailOpts, WithGmailHTTPClient(opts.HTTPClient))
		}
		if opts.Limiter != nil {
			gmailOpts = append(gmailOpts, WithGmailRateLimiter(opts.Limiter))
		}
		return NewGmailTransport(opts.AccessToken, opts.FromAddress, gmailOpts...)

	case BackendDryRun:
		return NewDryRunTransport(opts.OutDir)

	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
