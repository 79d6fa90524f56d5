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

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/mxtools/send/internal/credentials"
)

// graphSendScope is the delegated permission needed to send mail through
// the Microsoft Graph API.
const graphSendScope = "https://graph.microsoft.com/Mail.Send"

// azureTenant maps an authority to the AzureAD tenant segment.
func azureTenant(a credentials.Authority) string {
	if a == credentials.AuthorityConsumer {
		return "consumers"
	}
	return "organizations"
}

// MSGraphProvider acquires Microsoft Graph access tokens with the
// device-code flow for a public client (no client secret).
type MSGraphProvider struct {
	cfg *credentials.MSGraphConfig
	out io.Writer
	now func() time.Time

	// endpoint is overridable for tests.
	endpoint oauth2.Endpoint
}

// MSGraphOption configures an MSGraphProvider.
type MSGraphOption func(*MSGraphProvider)

// WithMSGraphOutput redirects device-code instructions.
func WithMSGraphOutput(w io.Writer) MSGraphOption {
	return func(p *MSGraphProvider) { p.out = w }
}

// WithMSGraphEndpoint overrides the OAuth endpoint.
func WithMSGraphEndpoint(e oauth2.Endpoint) MSGraphOption {
	return func(p *MSGraphProvider) { p.endpoint = e }
}

// WithMSGraphClock overrides the cache-validity clock.
func WithMSGraphClock(now func() time.Time) MSGraphOption {
	return func(p *MSGraphProvider) { p.now = now }
}

// NewMSGraphProvider builds a provider for one Graph account configuration.
func NewMSGraphProvider(cfg *credentials.MSGraphConfig, opts ...MSGraphOption) (*MSGraphProvider, error) {
	if cfg == nil {
		return nil, errors.New("ms_graph config is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("ms_graph client_id is required")
	}
	if err := cfg.Authority.Validate(); err != nil {
		return nil, err
	}
	p := &MSGraphProvider{
		cfg:      cfg,
		out:      os.Stderr,
		now:      time.Now,
		endpoint: endpoints.AzureAD(azureTenant(cfg.Authority)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// AcquireToken implements TokenProvider.
func (p *MSGraphProvider) AcquireToken(ctx context.Context, interactive bool) (credentials.TokenRecord, error) {
	if rec, ok := cachedToken(p.cfg.TokenValue, p.cfg.TokenTimestamp, p.now()); ok {
		return rec, nil
	}
	if !interactive {
		return credentials.TokenRecord{}, fmt.Errorf("ms_graph: %w", ErrInteractiveRequired)
	}

	conf := &oauth2.Config{
		ClientID: p.cfg.ClientID,
		Endpoint: p.endpoint,
		Scopes:   []string{graphSendScope},
	}
	rec, err := runDeviceFlow(ctx, conf, p.out)
	if err != nil {
		return credentials.TokenRecord{}, fmt.Errorf("ms_graph login: %w", err)
	}
	return rec, nil
}
