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
	"bytes"
	"encoding/json"
	"fmt"
)

// payloadVersion is the version of the serialized document envelope,
// independent of the blob format version.
const payloadVersion = 1

// envelope is the canonical JSON encoding of a Document. Optional provider
// configs are encoded as explicit nulls rather than omitted, so absence is
// unambiguous. Timestamps inside configs marshal as RFC 3339 UTC via
// time.Time.
type envelope struct {
	Version   int            `json:"version"`
	Backend   string         `json:"backend"`
	KeyPolicy KeyPolicy      `json:"key_policy"`
	MSGraph   *MSGraphConfig `json:"msgraph_config"`
	Gmail     *GmailConfig   `json:"gmail_config"`
}

// serializeDocument converts a Document to its canonical byte payload.
func serializeDocument(doc Document) ([]byte, error) {
	data, err := json.Marshal(envelope{
		Version:   payloadVersion,
		Backend:   doc.Backend,
		KeyPolicy: doc.KeyPolicy,
		MSGraph:   doc.MSGraph,
		Gmail:     doc.Gmail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize credential document: %w", err)
	}
	return data, nil
}

// deserializeDocument parses a canonical byte payload back into a
// Document. Unknown versions, truncated data, and type mismatches are
// format errors. Round-trip identity holds for every valid document.
func deserializeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if env.Version != payloadVersion {
		return Document{}, fmt.Errorf("%w: unknown payload version %d", ErrFormat, env.Version)
	}

	return Document{
		Backend:   env.Backend,
		KeyPolicy: env.KeyPolicy,
		MSGraph:   env.MSGraph,
		Gmail:     env.Gmail,
	}, nil
}
