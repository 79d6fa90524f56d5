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
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// defaultTimeout bounds each provider API request.
const defaultTimeout = 30 * time.Second

// userAgentTransport sets the User-Agent header on every request.
type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(req)
}

// NewHTTPClient builds the shared client for provider transports: TLS 1.2
// minimum, connection pooling, a bounded timeout, and a send/<version>
// User-Agent.
func NewHTTPClient(version string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if version == "" {
		version = "dev"
	}

	inner := &http.Transport{
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			agent: fmt.Sprintf("send/%s", version),
			next:  inner,
		},
	}
}
