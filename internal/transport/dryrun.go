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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mxtools/send/internal/message"
)

// DryRunTransport records messages to disk instead of sending them. It
// writes a .eml file with the full MIME message and a .json metadata
// sidecar, and performs no network calls. Unlike the credential store it
// creates its own output directory.
type DryRunTransport struct {
	outDir        string
	writeMetadata bool
	now           func() time.Time
	newID         func() string
}

// DryRunOption customizes a DryRunTransport.
type DryRunOption func(*DryRunTransport)

// WithoutMetadata disables the .json sidecar.
func WithoutMetadata() DryRunOption {
	return func(t *DryRunTransport) { t.writeMetadata = false }
}

// WithDryRunClock fixes the clock and ID source for tests.
func WithDryRunClock(now func() time.Time, newID func() string) DryRunOption {
	return func(t *DryRunTransport) {
		t.now = now
		t.newID = newID
	}
}

// NewDryRunTransport creates a dry-run transport writing into outDir.
func NewDryRunTransport(outDir string, opts ...DryRunOption) (*DryRunTransport, error) {
	if outDir == "" {
		return nil, fmt.Errorf("dry-run output directory is required")
	}

	t := &DryRunTransport{
		outDir:        outDir,
		writeMetadata: true,
		now:           time.Now,
		newID:         func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := os.MkdirAll(t.outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dry-run directory: %w", err)
	}
	return t, nil
}

// Name returns the backend identifier.
func (t *DryRunTransport) Name() string {
	return string(BackendDryRun)
}

// dryRunMetadata is the .json sidecar schema.
type dryRunMetadata struct {
	Backend     string             `json:"backend"`
	Timestamp   time.Time          `json:"timestamp"`
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Cc          []string           `json:"cc"`
	Bcc         []string           `json:"bcc"`
	Subject     string             `json:"subject"`
	Attachments []dryRunAttachment `json:"attachments"`
}

type dryRunAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// Send writes <timestamp>_<id>.eml and the optional metadata sidecar.
func (t *DryRunTransport) Send(ctx context.Context, msg *message.Message) error {
	timestamp := t.now().UTC()

	raw, err := message.EncodeMIME(msg, timestamp)
	if err != nil {
		return fmt.Errorf("failed to encode MIME message: %w", err)
	}

	stem := fmt.Sprintf("%s_%s", timestamp.Format("2006-01-02T15-04-05"), t.newID())
	emlPath := filepath.Join(t.outDir, stem+".eml")
	if err := os.WriteFile(emlPath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write dry-run message: %w", err)
	}

	if !t.writeMetadata {
		return nil
	}

	meta := dryRunMetadata{
		Backend:   string(BackendDryRun),
		Timestamp: timestamp,
		From:      msg.From,
		To:        msg.To,
		Cc:        msg.Cc,
		Bcc:       msg.Bcc,
		Subject:   msg.Subject,
	}
	for _, a := range msg.Attachments {
		meta.Attachments = append(meta.Attachments, dryRunAttachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        len(a.Content),
		})
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dry-run metadata: %w", err)
	}
	metaPath := filepath.Join(t.outDir, stem+".json")
	if err := os.WriteFile(metaPath, metaBytes, 0644); err != nil {
		return fmt.Errorf("failed to write dry-run metadata: %w", err)
	}

	return nil
}
