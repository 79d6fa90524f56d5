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
	"net/mail"

	"golang.org/x/time/rate"

	"github.com/mxtools/send/internal/message"
)

// DefaultGraphEndpoint is the Microsoft Graph sendMail URL.
const DefaultGraphEndpoint = "https://graph.microsoft.com/v1.0/me/sendMail"

// GraphTransport sends through the Microsoft Graph sendMail API using a
// bearer token obtained by the caller.
type GraphTransport struct {
	accessToken string
	fromAddress string
	endpoint    string
	client      *http.Client
	limiter     *rate.Limiter
}

// GraphOption customizes a GraphTransport.
type GraphOption func(*GraphTransport)

// WithGraphEndpoint overrides the sendMail URL (tests use httptest).
func WithGraphEndpoint(endpoint string) GraphOption {
	return func(t *GraphTransport) { t.endpoint = endpoint }
}

// WithGraphHTTPClient overrides the HTTP client.
func WithGraphHTTPClient(client *http.Client) GraphOption {
	return func(t *GraphTransport) { t.client = client }
}

// WithGraphRateLimiter throttles requests against Graph API quotas.
func WithGraphRateLimiter(limiter *rate.Limiter) GraphOption {
	return func(t *GraphTransport) { t.limiter = limiter }
}

// NewGraphTransport creates a Graph transport.
func NewGraphTransport(accessToken, fromAddress string, opts ...GraphOption) (*GraphTransport, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}
	if fromAddress == "" {
		return nil, fmt.Errorf("from address is required")
	}

	t := &GraphTransport{
		accessToken: accessToken,
		fromAddress: fromAddress,
		endpoint:    DefaultGraphEndpoint,
		client:      NewHTTPClient("", 0),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Name returns the backend identifier.
func (t *GraphTransport) Name() string {
	return string(BackendMSGraph)
}

// Send posts the message to the Graph sendMail endpoint. Graph accepts the
// request with 200 or 202.
func (t *GraphTransport) Send(ctx context.Context, msg *message.Message) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return &TransportError{Backend: t.Name(), Message: "rate limiter cancelled", Cause: err}
		}
	}

	payload, err := t.buildPayload(msg)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Graph payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Graph request: %w", err)
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

// graphPayload mirrors the Graph sendMail request schema.
type graphPayload struct {
	Message graphMessage `json:"message"`
}

type graphMessage struct {
	Subject       string            `json:"subject"`
	Body          graphBody         `json:"body"`
	From          graphRecipient    `json:"from"`
	ToRecipients  []graphRecipient  `json:"toRecipients"`
	CcRecipients  []graphRecipient  `json:"ccRecipients,omitempty"`
	BccRecipients []graphRecipient  `json:"bccRecipients,omitempty"`
	Attachments   []graphAttachment `json:"attachments,omitempty"`
}

type graphBody struct {
	ContentType string `json:"contentType"` // "Text" or "HTML"
	Content     string `json:"content"`
}

type graphRecipient struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type graphEmailAddress struct {
	Address string `json:"address"`
}

type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

func (t *GraphTransport) buildPayload(msg *message.Message) (*graphPayload, error) {
	from := msg.From
	if from == "" {
		from = t.fromAddress
	}
	fromAddr, err := bareAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}

	body := graphBody{ContentType: "Text", Content: msg.TextBody}
	if msg.HTMLBody != "" {
		// Graph carries a single body; prefer the richer alternative.
		body = graphBody{ContentType: "HTML", Content: msg.HTMLBody}
	}

	payload := &graphPayload{
		Message: graphMessage{
			Subject: msg.Subject,
			Body:    body,
			From:    graphRecipient{EmailAddress: graphEmailAddress{Address: fromAddr}},
		},
	}

	var convErr error
	payload.Message.ToRecipients, convErr = toGraphRecipients(msg.To)
	if convErr != nil {
		return nil, convErr
	}
	payload.Message.CcRecipients, convErr = toGraphRecipients(msg.Cc)
	if convErr != nil {
		return nil, convErr
	}
	payload.Message.BccRecipients, convErr = toGraphRecipients(msg.Bcc)
	if convErr != nil {
		return nil, convErr
	}

	for _, a := range msg.Attachments {
		payload.Message.Attachments = append(payload.Message.Attachments, graphAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         a.Filename,
			ContentType:  a.ContentType,
			ContentBytes: base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	return payload, nil
}

func toGraphRecipients(addresses []string) ([]graphRecipient, error) {
	var out []graphRecipient
	for _, formatted := range addresses {
		addr, err := bareAddress(formatted)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient address: %w", err)
		}
		out = append(out, graphRecipient{EmailAddress: graphEmailAddress{Address: addr}})
	}
	return out, nil
}

// bareAddress strips any display name from a formatted address.
func bareAddress(formatted string) (string, error) {
	addr, err := mail.ParseAddress(formatted)
	if err != nil {
		return "", err
	}
	return addr.Address, nil
}
