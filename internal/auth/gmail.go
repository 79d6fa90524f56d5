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

// gmailSendScope is the narrowest Gmail scope that allows sending.
const gmailSendScope = "https://www.googleapis.com/auth/gmail.send"

// GmailProvider acquires Gmail API access tokens with the device-code
// flow. Google device clients carry a client secret that is not actually
// secret; it is required by the token endpoint.
type GmailProvider struct {
	cfg *credentials.GmailConfig
	out io.Writer
	now func() time.Time

	endpoint oauth2.Endpoint
}

// GmailOption configures a GmailProvider.
type GmailOption func(*GmailProvider)

// WithGmailOutput redirects device-code instructions.
func WithGmailOutput(w io.Writer) GmailOption {
	return func(p *GmailProvider) { p.out = w }
}

// WithGmailEndpoint overrides the OAuth endpoint.
func WithGmailEndpoint(e oauth2.Endpoint) GmailOption {
	return func(p *GmailProvider) { p.endpoint = e }
}

// WithGmailClock overrides the cache-validity clock.
func WithGmailClock(now func() time.Time) GmailOption {
	return func(p *GmailProvider) { p.now = now }
}

// NewGmailProvider builds a provider for one Gmail account configuration.
func NewGmailProvider(cfg *credentials.GmailConfig, opts ...GmailOption) (*GmailProvider, error) {
	if cfg == nil {
		return nil, errors.New("gmail config is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("gmail client_id is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("gmail client_secret is required")
	}
	p := &GmailProvider{
		cfg:      cfg,
		out:      os.Stderr,
		now:      time.Now,
		endpoint: endpoints.Google,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// scopes returns the configured scopes, defaulting to send-only access.
func (p *GmailProvider) scopes() []string {
	if len(p.cfg.Scopes) > 0 {
		return p.cfg.Scopes
	}
	return []string{gmailSendScope}
}

// AcquireToken implements TokenProvider.
func (p *GmailProvider) AcquireToken(ctx context.Context, interactive bool) (credentials.TokenRecord, error) {
	if rec, ok := cachedToken(p.cfg.TokenValue, p.cfg.TokenTimestamp, p.now()); ok {
		return rec, nil
	}
	if !interactive {
		return credentials.TokenRecord{}, fmt.Errorf("gmail: %w", ErrInteractiveRequired)
	}

	conf := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint:     p.endpoint,
		Scopes:       p.scopes(),
	}
	rec, err := runDeviceFlow(ctx, conf, p.out)
	if err != nil {
		return credentials.TokenRecord{}, fmt.Errorf("gmail login: %w", err)
	}
	return rec, nil
}
