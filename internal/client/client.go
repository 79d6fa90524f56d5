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

// Package client composes the credential store, token providers, message
// builder and transports into the single send workflow the CLI drives.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mxtools/send/internal/auth"
	"github.com/mxtools/send/internal/config"
	"github.com/mxtools/send/internal/credentials"
	"github.com/mxtools/send/internal/log"
	"github.com/mxtools/send/internal/message"
	"github.com/mxtools/send/internal/outbox"
	"github.com/mxtools/send/internal/transport"
)

// EmailClient is the high-level entry point: one instance per profile.
type EmailClient struct {
	paths    *config.Paths
	settings *config.Settings
	store    *credentials.Store
	policy   credentials.KeyPolicy
	logger   *slog.Logger
	version  string

	// userKey is the optional passphrase for user-supplied key mode.
	userKey []byte
}

// Options configures an EmailClient.
type Options struct {
	// Profile selects the configuration profile; empty means default.
	Profile string

	// Keyring overrides the OS keyring, mainly for tests.
	Keyring credentials.KeyringStore

	// Policy overrides the key policy. Nil means the default.
	Policy *credentials.KeyPolicy

	// UserKey is the passphrase for user-supplied key mode.
	UserKey []byte

	// Logger defaults to a logger built from the environment.
	Logger *slog.Logger

	// Version is reported in the HTTP User-Agent.
	Version string
}

// New builds a client, resolving paths and loading settings for the profile.
func New(opts Options) (*EmailClient, error) {
	paths, err := config.ResolvePaths(opts.Profile)
	if err != nil {
		return nil, err
	}
	if err := paths.Ensure(); err != nil {
		return nil, err
	}

	settings, err := config.LoadSettings(paths.SettingsPath())
	if err != nil {
		return nil, err
	}

	keyring := opts.Keyring
	if keyring == nil {
		keyring = credentials.NewSystemKeyring()
	}

	policy := credentials.DefaultKeyPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.FromEnv())
	}
	if opts.Profile != "" {
		logger = log.WithProfile(logger, opts.Profile)
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	return &EmailClient{
		paths:    paths,
		settings: settings,
		store:    credentials.NewStore(keyring),
		policy:   policy,
		logger:   logger,
		version:  version,
		userKey:  opts.UserKey,
	}, nil
}

// Paths exposes the resolved directory layout.
func (c *EmailClient) Paths() *config.Paths { return c.paths }

// Settings exposes the loaded settings.
func (c *EmailClient) Settings() *config.Settings { return c.settings }

// LoadDocument loads the profile's credential document.
func (c *EmailClient) LoadDocument() (credentials.Document, error) {
	return c.store.Load(c.policy, c.paths.EncryptedConfigPath(), c.userKey)
}

// SaveDocument persists the profile's credential document.
func (c *EmailClient) SaveDocument(doc credentials.Document) error {
	return c.store.Save(doc, c.policy, c.paths.EncryptedConfigPath(), c.userKey)
}

// DeleteDocument removes the credential file and its keyring entry.
func (c *EmailClient) DeleteDocument() error {
	return c.store.Delete(c.paths.EncryptedConfigPath())
}

// UpdateMSGraph replaces the Graph account config, creating the document
// when none exists yet.
func (c *EmailClient) UpdateMSGraph(cfg credentials.MSGraphConfig) error {
	return c.updateDocument(func(doc *credentials.Document) {
		doc.MSGraph = &cfg
		if doc.Backend == "" {
			doc.Backend = string(transport.BackendMSGraph)
		}
	})
}

// UpdateGmail replaces the Gmail account config, creating the document
// when none exists yet.
func (c *EmailClient) UpdateGmail(cfg credentials.GmailConfig) error {
	return c.updateDocument(func(doc *credentials.Document) {
		doc.Gmail = &cfg
		if doc.Backend == "" {
			doc.Backend = string(transport.BackendGoogleAPI)
		}
	})
}

// SetBackend records the default provider backend in the document.
func (c *EmailClient) SetBackend(backend transport.Backend) error {
	return c.updateDocument(func(doc *credentials.Document) {
		doc.Backend = string(backend)
	})
}

// updateDocument loads, mutates and saves, starting fresh when no
// document exists yet.
func (c *EmailClient) updateDocument(mutate func(*credentials.Document)) error {
	doc, err := c.LoadDocument()
	if err != nil {
		if !credentials.IsNotFound(err) {
			return err
		}
		doc = credentials.Document{KeyPolicy: c.policy}
	}
	mutate(&doc)
	return c.SaveDocument(doc)
}

// SendOptions are the per-send inputs.
type SendOptions struct {
	From            string
	To              []string
	Cc              []string
	Bcc             []string
	Subject         string
	TextBody        string
	HTMLBody        string
	AttachmentGlobs []string
	Headers         map[string]string

	// Backend overrides the document's default backend.
	Backend string

	// Interactive permits a device-code login when no token is cached.
	Interactive bool

	// DryRun forces the dry-run transport regardless of backend.
	DryRun bool
}

// SendResult reports what a send did.
type SendResult struct {
	Backend         string
	MessageID       string
	AttachmentCount int
	DryRun          bool
}

// Send runs the full workflow: expand attachments, build the message,
// resolve credentials and token, dispatch, and record history.
func (c *EmailClient) Send(ctx context.Context, opts SendOptions) (*SendResult, error) {
	msg, err := c.buildMessage(opts)
	if err != nil {
		return nil, err
	}

	backend, dispatchOpts, err := c.prepareDispatch(ctx, opts)
	if err != nil {
		return nil, err
	}

	logger := log.WithBackend(c.logger, string(backend))
	logger.Info("sending message",
		log.Int("recipients", len(msg.Recipients())),
		log.Int("attachments", len(msg.Attachments)))

	start := time.Now()
	if err := transport.Dispatch(ctx, backend, msg, dispatchOpts); err != nil {
		return nil, err
	}
	logger.Info("message sent", log.Duration("duration", time.Since(start).Milliseconds()))

	result := &SendResult{
		Backend:         string(backend),
		AttachmentCount: len(msg.Attachments),
		DryRun:          backend == transport.BackendDryRun,
	}

	// History failure never fails a completed send.
	if entry, err := c.recordHistory(ctx, msg, result); err != nil {
		logger.Warn("failed to record send history", log.Error(err))
	} else {
		result.MessageID = entry.ID
	}

	return result, nil
}

// buildMessage expands attachment globs and assembles the message.
func (c *EmailClient) buildMessage(opts SendOptions) (*message.Message, error) {
	b := message.NewBuilder().
		From(opts.From).
		To(opts.To...).
		Cc(opts.Cc...).
		Bcc(opts.Bcc...).
		Subject(opts.Subject)
	if opts.TextBody != "" {
		b.Text(opts.TextBody)
	}
	if opts.HTMLBody != "" {
		b.HTML(opts.HTMLBody)
	}
	for name, value := range opts.Headers {
		b.Header(name, value)
	}

	paths, err := expandGlobs(opts.AttachmentGlobs)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		b.AttachFile(p)
	}

	return b.Build()
}

// prepareDispatch picks the backend, loads credentials when a provider
// backend needs them, and acquires a token.
func (c *EmailClient) prepareDispatch(ctx context.Context, opts SendOptions) (transport.Backend, transport.Options, error) {
	dispatchOpts := transport.Options{
		HTTPClient: transport.NewHTTPClient(c.version, c.settings.HTTPTimeout()),
	}

	if opts.DryRun {
		dispatchOpts.OutDir = c.outboxDir()
		return transport.BackendDryRun, dispatchOpts, nil
	}

	backendName := opts.Backend
	var doc credentials.Document
	var haveDoc bool
	if backendName == "" {
		d, err := c.LoadDocument()
		switch {
		case err == nil:
			doc, haveDoc = d, true
			backendName = d.Backend
		case credentials.IsNotFound(err):
			backendName = c.settings.DefaultBackend
		default:
			return "", transport.Options{}, err
		}
	}

	backend, err := transport.ParseBackend(backendName)
	if err != nil {
		return "", transport.Options{}, err
	}

	if backend == transport.BackendDryRun {
		dispatchOpts.OutDir = c.outboxDir()
		return backend, dispatchOpts, nil
	}

	if !haveDoc {
		doc, err = c.LoadDocument()
		if err != nil {
			return "", transport.Options{}, fmt.Errorf("backend %s needs configured credentials: %w", backend, err)
		}
	}

	rec, from, err := c.acquireToken(ctx, backend, &doc, opts.Interactive)
	if err != nil {
		return "", transport.Options{}, err
	}

	dispatchOpts.AccessToken = rec.AccessToken
	dispatchOpts.FromAddress = from
	dispatchOpts.Limiter = transport.DefaultLimiter(backend)
	if backend == transport.BackendGoogleAPI && doc.Gmail != nil && doc.Gmail.Host != "" {
		dispatchOpts.GmailHost = doc.Gmail.Host
	}
	return backend, dispatchOpts, nil
}

// acquireToken gets a valid token for the backend and writes any freshly
// acquired token back into the encrypted document.
func (c *EmailClient) acquireToken(ctx context.Context, backend transport.Backend, doc *credentials.Document, interactive bool) (credentials.TokenRecord, string, error) {
	var (
		provider auth.TokenProvider
		from     string
		cached   *string
		value    **string
		stamp    **time.Time
	)

	switch backend {
	case transport.BackendMSGraph:
		if doc.MSGraph == nil {
			return credentials.TokenRecord{}, "", fmt.Errorf("no ms_graph account configured")
		}
		p, err := auth.NewMSGraphProvider(doc.MSGraph)
		if err != nil {
			return credentials.TokenRecord{}, "", err
		}
		provider = p
		from = doc.MSGraph.EmailAddress
		cached = doc.MSGraph.TokenValue
		value = &doc.MSGraph.TokenValue
		stamp = &doc.MSGraph.TokenTimestamp

	case transport.BackendGoogleAPI:
		if doc.Gmail == nil {
			return credentials.TokenRecord{}, "", fmt.Errorf("no gmail account configured")
		}
		p, err := auth.NewGmailProvider(doc.Gmail)
		if err != nil {
			return credentials.TokenRecord{}, "", err
		}
		provider = p
		from = doc.Gmail.EmailAddress
		cached = doc.Gmail.TokenValue
		value = &doc.Gmail.TokenValue
		stamp = &doc.Gmail.TokenTimestamp

	default:
		return credentials.TokenRecord{}, "", fmt.Errorf("backend %s does not use tokens", backend)
	}

	rec, err := provider.AcquireToken(ctx, interactive)
	if err != nil {
		return credentials.TokenRecord{}, "", err
	}

	// Persist only when the token changed; a cached hit needs no write.
	if cached == nil || *cached != rec.AccessToken {
		now := time.Now().UTC()
		token := rec.AccessToken
		*value = &token
		*stamp = &now
		if err := c.SaveDocument(*doc); err != nil {
			c.logger.Warn("failed to persist refreshed token", log.Error(err))
		}
	}
	return rec, from, nil
}

// recordHistory appends the send to the history database.
func (c *EmailClient) recordHistory(ctx context.Context, msg *message.Message, res *SendResult) (outbox.Entry, error) {
	store, err := outbox.Open(c.paths.HistoryDBPath())
	if err != nil {
		return outbox.Entry{}, err
	}
	defer store.Close()

	return store.Record(ctx, outbox.Entry{
		Backend:         res.Backend,
		From:            msg.From,
		To:              msg.Recipients(),
		Subject:         msg.Subject,
		AttachmentCount: res.AttachmentCount,
		DryRun:          res.DryRun,
	})
}

// History returns recent sends, newest first.
func (c *EmailClient) History(ctx context.Context, limit int) ([]outbox.Entry, error) {
	store, err := outbox.Open(c.paths.HistoryDBPath())
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.List(ctx, limit)
}

// PruneHistory deletes history entries older than the cutoff.
func (c *EmailClient) PruneHistory(ctx context.Context, olderThan time.Time) (int64, error) {
	store, err := outbox.Open(c.paths.HistoryDBPath())
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return store.Prune(ctx, olderThan)
}

// Login runs the device-code flow for the backend now and persists the
// token, independent of any send.
func (c *EmailClient) Login(ctx context.Context, backendName string) error {
	doc, err := c.LoadDocument()
	if err != nil {
		return err
	}
	if backendName == "" {
		backendName = doc.Backend
	}
	backend, err := transport.ParseBackend(backendName)
	if err != nil {
		return err
	}
	if backend == transport.BackendDryRun {
		return fmt.Errorf("backend %s does not use tokens", backend)
	}

	// Drop the cached token so the flow always runs.
	switch backend {
	case transport.BackendMSGraph:
		if doc.MSGraph != nil {
			doc.MSGraph.TokenValue = nil
			doc.MSGraph.TokenTimestamp = nil
		}
	case transport.BackendGoogleAPI:
		if doc.Gmail != nil {
			doc.Gmail.TokenValue = nil
			doc.Gmail.TokenTimestamp = nil
		}
	}

	_, _, err = c.acquireToken(ctx, backend, &doc, true)
	return err
}

func (c *EmailClient) outboxDir() string {
	if c.settings.OutboxDir != "" {
		return c.settings.OutboxDir
	}
	return c.paths.OutboxDir()
}

// expandGlobs resolves doublestar patterns to file paths. A pattern with
// no matches is an error, to catch typos before an empty send goes out.
func expandGlobs(globs []string) ([]string, error) {
	var paths []string
	for _, g := range globs {
		matches, err := doublestar.FilepathGlob(g)
		if err != nil {
			return nil, fmt.Errorf("invalid attachment pattern %q: %w", g, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("attachment pattern %q matched no files", g)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
