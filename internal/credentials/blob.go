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

import "fmt"

// On-disk blob layout:
//
//	[format_version: 1 byte]
//	[algorithm_id:   1 byte]
//	[salt:           0 or 16 bytes, length fixed by algorithm_id]
//	[nonce:          12 bytes]
//	[ciphertext || auth_tag]
//
// The blob never contains or references the encryption key. The algorithm
// ID pins both the cipher and the key strategy, so the salt length is
// unambiguous from the header alone.
const (
	formatVersion byte = 0x01

	// algKeyringAESGCM is AES-256-GCM with a keyring-stored random key.
	// No salt is present.
	algKeyringAESGCM byte = 0x01

	// algUserKeyAESGCM is AES-256-GCM with an argon2id-derived user key.
	// A 16-byte salt follows the algorithm ID.
	algUserKeyAESGCM byte = 0x02

	saltSize = 16
)

// blob is the parsed form of the on-disk artifact.
type blob struct {
	algorithm  byte
	salt       []byte // nil for algKeyringAESGCM
	nonce      []byte
	ciphertext []byte // includes the GCM auth tag
}

// saltSizeFor returns the salt length fixed by the algorithm ID.
func saltSizeFor(algorithm byte) (int, error) {
	switch algorithm {
	case algKeyringAESGCM:
		return 0, nil
	case algUserKeyAESGCM:
		return saltSize, nil
	default:
		return 0, fmt.Errorf("%w: unknown algorithm 0x%02x", ErrFormat, algorithm)
	}
}

// encode assembles the blob into its on-disk byte layout.
func (b *blob) encode() ([]byte, error) {
	wantSalt, err := saltSizeFor(b.algorithm)
	if err != nil {
		return nil, err
	}
	if len(b.salt) != wantSalt {
		return nil, fmt.Errorf("%w: salt must be %d bytes for algorithm 0x%02x, got %d",
			ErrFormat, wantSalt, b.algorithm, len(b.salt))
	}
	if len(b.nonce) != nonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrFormat, nonceSize, len(b.nonce))
	}

	out := make([]byte, 0, 2+len(b.salt)+len(b.nonce)+len(b.ciphertext))
	out = append(out, formatVersion, b.algorithm)
	out = append(out, b.salt...)
	out = append(out, b.nonce...)
	out = append(out, b.ciphertext...)
	return out, nil
}

// decodeBlob parses the on-disk byte layout. Unknown versions, unknown
// algorithms, and truncated headers are format errors; an authentication
// failure on the body is only detectable at decrypt time.
func decodeBlob(data []byte) (*blob, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: truncated header", ErrFormat)
	}
	if data[0] != formatVersion {
		return nil, fmt.Errorf("%w: unknown format version 0x%02x", ErrFormat, data[0])
	}

	algorithm := data[1]
	wantSalt, err := saltSizeFor(algorithm)
	if err != nil {
		return nil, err
	}

	rest := data[2:]
	if len(rest) < wantSalt+nonceSize {
		return nil, fmt.Errorf("%w: truncated blob", ErrFormat)
	}

	b := &blob{algorithm: algorithm}
	if wantSalt > 0 {
		b.salt = rest[:wantSalt]
	}
	b.nonce = rest[wantSalt : wantSalt+nonceSize]
	b.ciphertext = rest[wantSalt+nonceSize:]
	return b, nil
}
