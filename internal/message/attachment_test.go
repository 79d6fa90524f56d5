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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAttachmentFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(path, []byte("quarterly numbers"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	att, err := AttachmentFromFile(path)
	if err != nil {
		t.Fatalf("AttachmentFromFile() error = %v", err)
	}
	if att.Filename != "report.txt" {
		t.Errorf("Filename = %q, want %q", att.Filename, "report.txt")
	}
	if !strings.HasPrefix(att.ContentType, "text/plain") {
		t.Errorf("ContentType = %q, want text/plain from extension", att.ContentType)
	}
	if string(att.Content) != "quarterly numbers" {
		t.Errorf("Content = %q, want file content", att.Content)
	}
}

func TestAttachmentFromFile_Missing(t *testing.T) {
	if _, err := AttachmentFromFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("AttachmentFromFile() for missing file succeeded, want error")
	}
}

func TestAttachmentFromBytes(t *testing.T) {
	att, err := AttachmentFromBytes([]byte{0x89, 'P', 'N', 'G'}, "logo.png", "")
	if err != nil {
		t.Fatalf("AttachmentFromBytes() error = %v", err)
	}
	if !strings.HasPrefix(att.ContentType, "image/png") {
		t.Errorf("ContentType = %q, want image/png from extension", att.ContentType)
	}
}

func TestAttachmentFromBytes_FilenameRequired(t *testing.T) {
	if _, err := AttachmentFromBytes([]byte("data"), "", ""); err == nil {
		t.Error("AttachmentFromBytes() without filename succeeded, want error")
	}
}

func TestDetectContentType_SniffsUnknownExtension(t *testing.T) {
	got := detectContentType("blob.xyz123", []byte("plain text payload"))
	if !strings.HasPrefix(got, "text/plain") {
		t.Errorf("detectContentType() = %q, want sniffed text/plain", got)
	}
}
