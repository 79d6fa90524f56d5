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
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// Attachment is one file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// AttachmentFromFile reads path and builds an attachment. The content type
// is resolved from the filename extension first, then sniffed from the
// content, then defaults to application/octet-stream.
func AttachmentFromFile(path string) (Attachment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}

	filename := filepath.Base(path)
	return Attachment{
		Filename:    filename,
		ContentType: detectContentType(filename, content),
		Content:     content,
	}, nil
}

// AttachmentFromBytes builds an attachment from in-memory content. The
// filename is required; the content type is sniffed when empty.
func AttachmentFromBytes(content []byte, filename, contentType string) (Attachment, error) {
	if filename == "" {
		return Attachment{}, fmt.Errorf("attachment filename is required")
	}
	if contentType == "" {
		contentType = detectContentType(filename, content)
	}
	return Attachment{
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	}, nil
}

// detectContentType resolves a MIME type from the extension, falling back
// to content sniffing. http.DetectContentType never returns an empty
// string, so the octet-stream default comes from it.
func detectContentType(filename string, content []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(content)
}
