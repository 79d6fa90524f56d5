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
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// EncodeMIME renders the message as RFC 5322 bytes. Text and HTML bodies
// become a multipart/alternative pair; attachments get content-disposition
// parts. The Bcc header is included: Gmail's raw-send endpoint uses it for
// delivery and strips it from the stored copy.
func EncodeMIME(m *Message, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetSubject(m.Subject)
	h.Set("From", m.From)
	if len(m.To) > 0 {
		h.Set("To", strings.Join(m.To, ", "))
	}
	if len(m.Cc) > 0 {
		h.Set("Cc", strings.Join(m.Cc, ", "))
	}
	if len(m.Bcc) > 0 {
		h.Set("Bcc", strings.Join(m.Bcc, ", "))
	}
	for _, extra := range m.Headers {
		h.Set(extra.Name, extra.Value)
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}

	if err := writeBodies(mw, m); err != nil {
		return nil, err
	}

	for _, a := range m.Attachments {
		var ah mail.AttachmentHeader
		ah.Set("Content-Type", a.ContentType)
		ah.SetFilename(a.Filename)

		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := aw.Write(a.Content); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", a.Filename, err)
		}
		if err := aw.Close(); err != nil {
			return nil, fmt.Errorf("failed to close attachment part: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message writer: %w", err)
	}

	return buf.Bytes(), nil
}

// writeBodies emits the inline body parts. Both bodies present produce
// text first, then HTML, so readers prefer the richer alternative.
func writeBodies(mw *mail.Writer, m *Message) error {
	iw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("failed to create inline part: %w", err)
	}

	// Always emit at least an empty text part so attachment-only messages
	// stay well formed.
	if m.TextBody != "" || m.HTMLBody == "" {
		if err := writeInlinePart(iw, "text/plain; charset=utf-8", m.TextBody); err != nil {
			return err
		}
	}
	if m.HTMLBody != "" {
		if err := writeInlinePart(iw, "text/html; charset=utf-8", m.HTMLBody); err != nil {
			return err
		}
	}

	if err := iw.Close(); err != nil {
		return fmt.Errorf("failed to close inline part: %w", err)
	}
	return nil
}

func writeInlinePart(iw *mail.InlineWriter, contentType, body string) error {
	var th mail.InlineHeader
	th.Set("Content-Type", contentType)

	pw, err := iw.CreatePart(th)
	if err != nil {
		return fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := io.WriteString(pw, body); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}
	return pw.Close()
}
