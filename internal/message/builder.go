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

package message

import (
	"fmt"
	"net/mail"
	"strings"
)

// reservedHeaders are managed by the builder and cannot be set manually.
var reservedHeaders = map[string]bool{
	"from":    true,
	"to":      true,
	"cc":      true,
	"bcc":     true,
	"subject": true,
}

// Builder assembles a Message. Addresses are normalized via net/mail
// (display names preserved); recipients are deduplicated case-insensitively
// by bare address within each of To, Cc, and Bcc.
type Builder struct {
	msg  Message
	seen map[string]map[string]bool
	errs []error
}

// NewBuilder creates an empty message builder.
func NewBuilder() *Builder {
	return &Builder{
		seen: map[string]map[string]bool{
			"to": {}, "cc": {}, "bcc": {},
		},
	}
}

// From sets the single sender address.
func (b *Builder) From(address string) *Builder {
	normalized, err := normalizeAddress(address)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("from: %w", err))
		return b
	}
	b.msg.From = normalized
	return b
}

// To adds recipient addresses.
func (b *Builder) To(addresses ...string) *Builder {
	b.addRecipients("to", &b.msg.To, addresses)
	return b
}

// Cc adds carbon-copy addresses.
func (b *Builder) Cc(addresses ...string) *Builder {
	b.addRecipients("cc", &b.msg.Cc, addresses)
	return b
}

// Bcc adds blind-carbon-copy addresses.
func (b *Builder) Bcc(addresses ...string) *Builder {
	b.addRecipients("bcc", &b.msg.Bcc, addresses)
	return b
}

// Subject sets the subject line, trimmed.
func (b *Builder) Subject(subject string) *Builder {
	b.msg.Subject = strings.TrimSpace(subject)
	return b
}

// Text sets the plain-text body.
func (b *Builder) Text(body string) *Builder {
	b.msg.TextBody = body
	return b
}

// HTML sets the HTML body. With a text body also set, the two are encoded
// as multipart/alternative.
func (b *Builder) HTML(body string) *Builder {
	b.msg.HTMLBody = body
	return b
}

// Header adds an extra header. Reserved headers are rejected at Build.
func (b *Builder) Header(name, value string) *Builder {
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("header name must not be empty"))
		return b
	}
	if reservedHeaders[strings.ToLower(name)] {
		b.errs = append(b.errs, fmt.Errorf("header %q is managed by the builder and cannot be set manually", name))
		return b
	}
	b.msg.Headers = append(b.msg.Headers, Header{Name: name, Value: value})
	return b
}

// Attach adds a prepared attachment.
func (b *Builder) Attach(a Attachment) *Builder {
	b.msg.Attachments = append(b.msg.Attachments, a)
	return b
}

// AttachFile reads a file and attaches it.
func (b *Builder) AttachFile(path string) *Builder {
	a, err := AttachmentFromFile(path)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.msg.Attachments = append(b.msg.Attachments, a)
	return b
}

// Build validates and returns the assembled message. Requirements: exactly
// one From address, at least one recipient, and non-empty content (text,
// HTML, or an attachment).
func (b *Builder) Build() (*Message, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	if b.msg.From == "" {
		return nil, fmt.Errorf("exactly one From address must be provided")
	}
	if len(b.msg.To)+len(b.msg.Cc)+len(b.msg.Bcc) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	if !b.msg.HasContent() {
		return nil, fmt.Errorf("message has no content: set a text body, an HTML body, or an attachment")
	}

	msg := b.msg
	return &msg, nil
}

// addRecipients normalizes and deduplicates addresses into target.
func (b *Builder) addRecipients(field string, target *[]string, addresses []string) {
	for _, raw := range addresses {
		parsed, err := normalizeAddressList(raw)
		if err != nil {
			b.errs = append(b.errs, fmt.Errorf("%s: %w", field, err))
			return
		}
		for _, addr := range parsed {
			bare := strings.ToLower(addr.Address)
			if b.seen[field][bare] {
				continue
			}
			b.seen[field][bare] = true
			*target = append(*target, addr.String())
		}
	}
}

// normalizeAddress parses a single address, preserving any display name.
func normalizeAddress(raw string) (string, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("invalid email address %q: %w", raw, err)
	}
	return addr.String(), nil
}

// normalizeAddressList parses a comma-separated address list.
func normalizeAddressList(raw string) ([]*mail.Address, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("at least one email address is required")
	}
	addrs, err := mail.ParseAddressList(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid email address %q: %w", raw, err)
	}
	return addrs, nil
}
