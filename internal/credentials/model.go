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

package credentials

import (
	"fmt"
	"time"
)

// Authority identifies the Microsoft tenant class used for OAuth.
type Authority string

const (
	// AuthorityOrganization targets work/school accounts.
	AuthorityOrganization Authority = "organization"

	// AuthorityConsumer targets personal Microsoft accounts.
	AuthorityConsumer Authority = "consumer"
)

// Validate checks the authority is one of the two allowed values.
func (a Authority) Validate() error {
	switch a {
	case AuthorityOrganization, AuthorityConsumer:
		return nil
	default:
		return fmt.Errorf("authority must be %q or %q, got %q",
			AuthorityOrganization, AuthorityConsumer, a)
	}
}

// MSGraphConfig holds the static configuration and cached token state for
// sending through Microsoft Graph. It is pure data: no key material, no I/O.
type MSGraphConfig struct {
	EmailAddress string    `json:"email_address"`
	ClientID     string    `json:"client_id"`
	Authority    Authority `json:"authority"`

	// Legacy SMTP fields carried for accounts still provisioned that way.
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPStartTLS bool   `json:"smtp_starttls"`

	// Cached runtime token state. Nil when no token has been acquired.
	TokenValue     *string    `json:"token_value"`
	TokenTimestamp *time.Time `json:"token_timestamp"`
}

// Validate checks required fields and the authority value.
func (c *MSGraphConfig) Validate() error {
	if c.EmailAddress == "" {
		return fmt.Errorf("email_address is required")
	}
	if err := c.Authority.Validate(); err != nil {
		return err
	}
	return nil
}

// GmailConfig holds the static configuration and cached token state for
// sending through the Gmail API.
type GmailConfig struct {
	EmailAddress string   `json:"email_address"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Host         string   `json:"host"`
	Port         int      `json:"port"`
	Scopes       []string `json:"scopes"`

	// Cached runtime token state. Nil when no token has been acquired.
	TokenValue     *string    `json:"token_value"`
	TokenTimestamp *time.Time `json:"token_timestamp"`
}

// DefaultGmailHost is the Gmail API host used when none is configured.
const DefaultGmailHost = "gmail.googleapis.com"

// Validate checks required fields.
func (c *GmailConfig) Validate() error {
	if c.EmailAddress == "" {
		return fmt.Errorf("email_address is required")
	}
	return nil
}

// TokenRecord is what a device-code token provider returns. The store only
// persists these values inside a credential config; it never interprets them.
type TokenRecord struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Document is the persisted unit: one encrypted file holds one Document.
// The KeyPolicy recorded here is an informational echo of the policy that
// wrote the file; loading never uses it to widen the caller's policy.
type Document struct {
	Backend   string
	KeyPolicy KeyPolicy
	MSGraph   *MSGraphConfig
	Gmail     *GmailConfig
}

// Validate checks the provider configs that are present.
func (d *Document) Validate() error {
	if d.MSGraph != nil {
		if err := d.MSGraph.Validate(); err != nil {
			return fmt.Errorf("msgraph config: %w", err)
		}
	}
	if d.Gmail != nil {
		if err := d.Gmail.Validate(); err != nil {
			return fmt.Errorf("gmail config: %w", err)
		}
	}
	return nil
}
