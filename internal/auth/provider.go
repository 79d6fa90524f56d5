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

// Package auth acquires OAuth access tokens via the device-code flow.
// Providers return token records; persisting them inside a credential
// document is the caller's job.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/oauth2"

	"github.com/mxtools/send/internal/credentials"
)

// ErrInteractiveRequired is returned when no valid cached token exists and
// the caller disallowed interactive flows.
var ErrInteractiveRequired = errors.New("no valid cached token; interactive login required")

const (
	// cachedTokenLifetime is the assumed validity of a cached access token
	// counted from its acquisition timestamp.
	cachedTokenLifetime = time.Hour

	// expirySkew treats tokens expiring within this window as expired.
	expirySkew = 5 * time.Minute
)

// TokenProvider acquires an access token for one provider backend.
type TokenProvider interface {
	// AcquireToken returns a valid token, reusing the cached one when it
	// has not expired. With interactive false it never prompts: it fails
	// with ErrInteractiveRequired instead.
	AcquireToken(ctx context.Context, interactive bool) (credentials.TokenRecord, error)
}

// cachedToken returns the cached token when it is still valid.
func cachedToken(value *string, acquiredAt *time.Time, now time.Time) (credentials.TokenRecord, bool) {
	if value == nil || *value == "" || acquiredAt == nil {
		return credentials.TokenRecord{}, false
	}
	expiresAt := acquiredAt.Add(cachedTokenLifetime)
	if now.Add(expirySkew).After(expiresAt) {
		return credentials.TokenRecord{}, false
	}
	return credentials.TokenRecord{AccessToken: *value, ExpiresAt: expiresAt}, true
}

// runDeviceFlow drives the OAuth device-code flow: request a device code,
// print the verification instructions to out (never to logs), and poll for
// the token. Key derivation of any kind does not happen here; the access
// token string is the only secret handled, and it is returned, not stored.
func runDeviceFlow(ctx context.Context, conf *oauth2.Config, out io.Writer, opts ...oauth2.AuthCodeOption) (credentials.TokenRecord, error) {
	da, err := conf.DeviceAuth(ctx, opts...)
	if err != nil {
		return credentials.TokenRecord{}, fmt.Errorf("device authorization request failed: %w", err)
	}

	uri := da.VerificationURIComplete
	if uri != "" {
		fmt.Fprintf(out, "Open %s to sign in\n", uri)
	} else {
		fmt.Fprintf(out, "Open %s and enter code: %s\n", da.VerificationURI, da.UserCode)
	}

	token, err := conf.DeviceAccessToken(ctx, da, opts...)
	if err != nil {
		return credentials.TokenRecord{}, fmt.Errorf("device token exchange failed: %w", err)
	}

	return credentials.TokenRecord{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.Expiry,
	}, nil
}
