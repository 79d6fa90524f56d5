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
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
)

func mustBuild(t *testing.T, b *Builder) *Message {
	t.Helper()
	msg, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return msg
}

// decodeMIME re-parses encoded output so assertions work on structure, not
// on encoding details like line wrapping.
func decodeMIME(t *testing.T, raw []byte) (header mail.Header, inline map[string]string, attachments map[string][]byte) {
	t.Helper()

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("CreateReader() error = %v", err)
	}

	inline = make(map[string]string)
	attachments = make(map[string][]byte)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart() error = %v", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			body, _ := io.ReadAll(part.Body)
			inline[ct] = string(body)
		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			body, _ := io.ReadAll(part.Body)
			attachments[filename] = body
		}
	}

	return mr.Header, inline, attachments
}

func TestEncodeMIME_TextAndHTMLAlternative(t *testing.T) {
	msg := mustBuild(t, NewBuilder().
		From("Alice <a@example.com>").
		To("b@example.com").
		Cc("c@example.com").
		Subject("greetings").
		Text("plain body").
		HTML("<p>rich body</p>"))

	raw, err := EncodeMIME(msg, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EncodeMIME() error = %v", err)
	}

	header, inline, _ := decodeMIME(t, raw)

	subject, err := header.Subject()
	if err != nil {
		t.Fatalf("Subject() error = %v", err)
	}
	if subject != "greetings" {
		t.Errorf("Subject = %q, want %q", subject, "greetings")
	}

	if got := inline["text/plain"]; got != "plain body" {
		t.Errorf("text part = %q, want %q", got, "plain body")
	}
	if got := inline["text/html"]; got != "<p>rich body</p>" {
		t.Errorf("html part = %q, want %q", got, "<p>rich body</p>")
	}
}

func TestEncodeMIME_Attachments(t *testing.T) {
	att, err := AttachmentFromBytes([]byte("col1,col2\n1,2\n"), "data.csv", "text/csv")
	if err != nil {
		t.Fatalf("AttachmentFromBytes() error = %v", err)
	}

	msg := mustBuild(t, NewBuilder().
		From("a@example.com").
		To("b@example.com").
		Text("see attached").
		Attach(att))

	raw, err := EncodeMIME(msg, time.Now())
	if err != nil {
		t.Fatalf("EncodeMIME() error = %v", err)
	}

	_, _, attachments := decodeMIME(t, raw)
	if got := attachments["data.csv"]; string(got) != "col1,col2\n1,2\n" {
		t.Errorf("attachment content = %q, want original bytes", got)
	}
}

func TestEncodeMIME_IncludesBccHeader(t *testing.T) {
	msg := mustBuild(t, NewBuilder().
		From("a@example.com").
		To("b@example.com").
		Bcc("hidden@example.com").
		Text("body"))

	raw, err := EncodeMIME(msg, time.Now())
	if err != nil {
		t.Fatalf("EncodeMIME() error = %v", err)
	}

	header, _, _ := decodeMIME(t, raw)
	bcc, err := header.AddressList("Bcc")
	if err != nil {
		t.Fatalf("AddressList(Bcc) error = %v", err)
	}
	if len(bcc) != 1 || bcc[0].Address != "hidden@example.com" {
		t.Errorf("Bcc = %v, want hidden@example.com", bcc)
	}
}

func TestEncodeMIME_ExtraHeaders(t *testing.T) {
	msg := mustBuild(t, NewBuilder().
		From("a@example.com").
		To("b@example.com").
		Text("body").
		Header("X-Campaign", "welcome"))

	raw, err := EncodeMIME(msg, time.Now())
	if err != nil {
		t.Fatalf("EncodeMIME() error = %v", err)
	}

	header, _, _ := decodeMIME(t, raw)
	if got := header.Get("X-Campaign"); got != "welcome" {
		t.Errorf("X-Campaign = %q, want %q", got, "welcome")
	}
}
