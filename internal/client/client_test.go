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

package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxtools/send/internal/auth"
	"github.com/mxtools/send/internal/credentials"
	"github.com/mxtools/send/internal/transport"
)

// fakeKeyring is an in-memory KeyringStore.
type fakeKeyring struct {
	entries map[string][]byte
}

func newFakeKeyring() *fakeKeyring {
	return &fakeKeyring{entries: map[string][]byte{}}
}

func (f *fakeKeyring) Get(slot string) ([]byte, error) {
	key, ok := f.entries[slot]
	if !ok {
		return nil, credentials.ErrKeyNotFound
	}
	return append([]byte(nil), key...), nil
}

func (f *fakeKeyring) Set(slot string, key []byte) error {
	f.entries[slot] = append([]byte(nil), key...)
	return nil
}

func (f *fakeKeyring) Delete(slot string) error {
	if _, ok := f.entries[slot]; !ok {
		return credentials.ErrKeyNotFound
	}
	delete(f.entries, slot)
	return nil
}

func (f *fakeKeyring) Available() bool { return true }

func newTestClient(t *testing.T) *EmailClient {
	t.Helper()
	t.Setenv("SEND_HOME", t.TempDir())

	c, err := New(Options{Keyring: newFakeKeyring()})
	require.NoError(t, err)
	return c
}

func TestNew_ResolvesAndCreatesLayout(t *testing.T) {
	c := newTestClient(t)

	info, err := os.Stat(c.Paths().ConfigDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "dry_run", c.Settings().DefaultBackend)
}

func TestUpdateMSGraph_CreatesDocument(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.UpdateMSGraph(credentials.MSGraphConfig{
		EmailAddress: "a@example.com",
		ClientID:     "client",
		Authority:    credentials.AuthorityOrganization,
	}))

	doc, err := c.LoadDocument()
	require.NoError(t, err)
	require.NotNil(t, doc.MSGraph)
	assert.Equal(t, "a@example.com", doc.MSGraph.EmailAddress)
	assert.Equal(t, string(transport.BackendMSGraph), doc.Backend, "first provider becomes default backend")
}

func TestUpdateGmail_PreservesOtherProvider(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.UpdateMSGraph(credentials.MSGraphConfig{
		EmailAddress: "a@example.com",
		ClientID:     "client",
		Authority:    credentials.AuthorityOrganization,
	}))
	require.NoError(t, c.UpdateGmail(credentials.GmailConfig{
		EmailAddress: "a@gmail.example.com",
		ClientID:     "gclient",
		ClientSecret: "gsecret",
	}))

	doc, err := c.LoadDocument()
	require.NoError(t, err)
	assert.NotNil(t, doc.MSGraph)
	assert.NotNil(t, doc.Gmail)
	assert.Equal(t, string(transport.BackendMSGraph), doc.Backend, "existing backend untouched")
}

func TestSetBackend(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.SetBackend(transport.BackendDryRun))
	doc, err := c.LoadDocument()
	require.NoError(t, err)
	assert.Equal(t, "dry_run", doc.Backend)
}

func TestSend_DryRun(t *testing.T) {
	c := newTestClient(t)

	attachment := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(attachment, []byte("quarterly"), 0600))

	res, err := c.Send(context.Background(), SendOptions{
		From:            "a@example.com",
		To:              []string{"b@example.com"},
		Subject:         "report",
		TextBody:        "attached",
		AttachmentGlobs: []string{attachment},
		DryRun:          true,
	})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, "dry_run", res.Backend)
	assert.Equal(t, 1, res.AttachmentCount)
	assert.NotEmpty(t, res.MessageID)

	entries, err := os.ReadDir(c.Paths().OutboxDir())
	require.NoError(t, err)
	assert.Len(t, entries, 2, ".eml plus metadata sidecar")
}

func TestSend_DefaultsToSettingsBackend(t *testing.T) {
	c := newTestClient(t)

	// No document, no explicit backend: settings default (dry_run) applies.
	res, err := c.Send(context.Background(), SendOptions{
		From:     "a@example.com",
		To:       []string{"b@example.com"},
		Subject:  "hello",
		TextBody: "body",
	})
	require.NoError(t, err)
	assert.Equal(t, "dry_run", res.Backend)
}

func TestSend_RecordsHistory(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Send(context.Background(), SendOptions{
		From:     "a@example.com",
		To:       []string{"b@example.com", "c@example.com"},
		Subject:  "first",
		TextBody: "body",
		DryRun:   true,
	})
	require.NoError(t, err)

	history, err := c.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "first", history[0].Subject)
	assert.Equal(t, []string{"b@example.com", "c@example.com"}, history[0].To)
	assert.True(t, history[0].DryRun)
}

func TestSend_GlobWithNoMatches(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Send(context.Background(), SendOptions{
		From:            "a@example.com",
		To:              []string{"b@example.com"},
		Subject:         "x",
		TextBody:        "body",
		AttachmentGlobs: []string{filepath.Join(t.TempDir(), "*.pdf")},
		DryRun:          true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched no files")
}

func TestSend_ProviderBackendWithoutCredentials(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Send(context.Background(), SendOptions{
		From:     "a@example.com",
		To:       []string{"b@example.com"},
		Subject:  "x",
		TextBody: "body",
		Backend:  "ms_graph",
	})
	require.Error(t, err)
	assert.True(t, credentials.IsNotFound(err))
}

func TestSend_NonInteractiveWithoutToken(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.UpdateMSGraph(credentials.MSGraphConfig{
		EmailAddress: "a@example.com",
		ClientID:     "client",
		Authority:    credentials.AuthorityOrganization,
	}))

	_, err := c.Send(context.Background(), SendOptions{
		From:     "a@example.com",
		To:       []string{"b@example.com"},
		Subject:  "x",
		TextBody: "body",
		Backend:  "ms_graph",
	})
	assert.True(t, errors.Is(err, auth.ErrInteractiveRequired))
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	paths, err := expandGlobs([]string{filepath.Join(dir, "*.pdf")})
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	_, err = expandGlobs([]string{filepath.Join(dir, "*.doc")})
	assert.Error(t, err)
}

func TestDeleteDocument(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.SetBackend(transport.BackendDryRun))
	require.NoError(t, c.DeleteDocument())

	_, err := c.LoadDocument()
	assert.True(t, credentials.IsNotFound(err))
}

func TestSend_CachedTokenIsUsed(t *testing.T) {
	t.Setenv("SEND_HOME", t.TempDir())
	c, err := New(Options{Keyring: newFakeKeyring()})
	require.NoError(t, err)

	token := "cached-token"
	now := time.Now().UTC()
	require.NoError(t, c.UpdateMSGraph(credentials.MSGraphConfig{
		EmailAddress:   "a@example.com",
		ClientID:       "client",
		Authority:      credentials.AuthorityOrganization,
		TokenValue:     &token,
		TokenTimestamp: &now,
	}))

	doc, err := c.LoadDocument()
	require.NoError(t, err)

	rec, from, err := c.acquireToken(context.Background(), transport.BackendMSGraph, &doc, false)
	require.NoError(t, err)
	assert.Equal(t, "cached-token", rec.AccessToken)
	assert.Equal(t, "a@example.com", from)
}
