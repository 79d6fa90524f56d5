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
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mxtools/send/internal/message"
)

// gmailSendPath is the Gmail API raw-send path.
const gmailSendPath = "/gmail/v1/users/me/messages/send"

// DefaultGmailHost is the Gmail API host used when none is configured.
const DefaultGmailHost = "gmail.googleapis.com"

// GmailTransport sends through the Gmail API raw-send endpoint.
type GmailTransport struct {
	accessToken string
	fromAddress string
	host        string
	scheme      string
	client      *http.Client
	limiter     *rate.Limiter
	now         func() time.Time
}

// GmailOption customizes a GmailTransport.
type GmailOption func(*GmailTransport)

// WithGmailHost overrides the API host (tests use an httptest host).
func WithGmailHost(host string) GmailOption {
	return func(t *GmailTransport) { t.host = host }
}

// WithGmailScheme overrides the URL scheme; httptest servers are http.
func WithGmailScheme(scheme string) GmailOption {
	return func(t *GmailTransport) { t.scheme = scheme }
}

// WithGmailHTTPClient overrides the HTTP client.
func WithGmailHTTPClient(client *http.Client) GmailOption {
	return func(t *GmailTransport) { t.client = client }
}

// WithGmailRateLimiter throttles requests against Gmail API quotas.
func WithGmailRateLimiter(limiter *rate.Limiter) GmailOption {
	return func(t *GmailTransport) { t.limiter = limiter }
}

// NewGmailTransport creates a Gmail transport.
func NewGmailTransport(accessToken, fromAddress string, opts ...GmailOption) (*GmailTransport, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}
	if fromAddress == "" {
		return nil, fmt.Errorf("from address is required")
	}

	t := &GmailTransport{
		accessToken: accessToken,
		fromAddress: fromAddress,
		host:        DefaultGmailHost,
		scheme:      "https",
		client:      NewHTTPClient("", 0),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Name returns the backend identifier.
func (t *GmailTransport) Name() string {
	return string(BackendGoogleAPI)
}

// Send encodes the full MIME message and posts it base64url-encoded as
// {"raw": ...}. Gmail accepts with 200 or 202.
func (t *GmailTransport) Send(ctx context.Context, msg *message.Message) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return &TransportError{Backend: t.Name(), Message: "rate limiter cancelled", Cause: err}
		}
	}

	prepared := msg
	if prepared.From == "" {
		clone := *msg
		clone.From = t.fromAddress
		prepared = &clone
	}

	raw, err := message.EncodeMIME(prepared, t.now())
	if err != nil {
		return fmt.Errorf("failed to encode MIME message: %w", err)
	}

	body, err := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString(raw),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Gmail payload: %w", err)
	}

	url := fmt.Sprintf("%s://%s%s", t.scheme, t.host, gmailSendPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Gmail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return &TransportError{Backend: t.Name(), Message: "request failed", Retryable: true, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classifyStatus(t.Name(), resp.StatusCode, string(respBody))
	}

	return nil
}
