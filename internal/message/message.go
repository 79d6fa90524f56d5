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

// Package message models outbound email and builds RFC 5322 payloads.
// It is pure data assembly: no credentials, no network.
package message

import "strings"

// Header is one extra message header. Reserved headers (From, To, Cc,
// Bcc, Subject) are managed by the builder and rejected here.
type Header struct {
	Name  string
	Value string
}

// Message is a fully built outbound email. Construct via Builder, which
// enforces address normalization, recipient deduplication, and the
// required-field rules.
type Message struct {
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string

	// TextBody and HTMLBody become a multipart/alternative pair when both
	// are set.
	TextBody string
	HTMLBody string

	Headers     []Header
	Attachments []Attachment
}

// Recipients returns all recipient addresses (To, Cc, Bcc) in order.
func (m *Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	out = append(out, m.Bcc...)
	return out
}

// HasContent reports whether the message carries any body or attachment.
func (m *Message) HasContent() bool {
	return strings.TrimSpace(m.TextBody) != "" ||
		strings.TrimSpace(m.HTMLBody) != "" ||
		len(m.Attachments) > 0
}
