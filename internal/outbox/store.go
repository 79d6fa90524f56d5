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

// Package outbox records send history in a local SQLite database. Only
// envelope metadata is stored; never message bodies or attachments.
package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one recorded send.
type Entry struct {
	ID              string
	SentAt          time.Time
	Backend         string
	From            string
	To              []string
	Subject         string
	AttachmentCount int
	DryRun          bool
}

// Store is the send history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// WAL mode: the CLI may run concurrently with a history query.
	connStr := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS sends (
		id TEXT PRIMARY KEY,
		sent_at TEXT NOT NULL,
		backend TEXT NOT NULL,
		from_address TEXT NOT NULL,
		to_addresses TEXT NOT NULL,
		subject TEXT NOT NULL,
		attachment_count INTEGER NOT NULL DEFAULT 0,
		dry_run INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_sends_sent_at ON sends(sent_at DESC)`)
	return err
}

// Record inserts a send. A zero SentAt or empty ID is filled in.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.SentAt.IsZero() {
		e.SentAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sends (id, sent_at, backend, from_address, to_addresses, subject, attachment_count, dry_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.SentAt.UTC().Format(time.RFC3339Nano),
		e.Backend,
		e.From,
		strings.Join(e.To, ","),
		e.Subject,
		e.AttachmentCount,
		boolToInt(e.DryRun),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record send: %w", err)
	}
	return e, nil
}

// List returns the most recent sends, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, sent_at, backend, from_address, to_addresses, subject, attachment_count, dry_run
		FROM sends ORDER BY sent_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sends: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			sentAt string
			to     string
			dryRun int
		)
		if err := rows.Scan(&e.ID, &sentAt, &e.Backend, &e.From, &to, &e.Subject, &e.AttachmentCount, &dryRun); err != nil {
			return nil, fmt.Errorf("failed to scan send row: %w", err)
		}
		e.SentAt, err = time.Parse(time.RFC3339Nano, sentAt)
		if err != nil {
			return nil, fmt.Errorf("invalid sent_at %q: %w", sentAt, err)
		}
		if to != "" {
			e.To = strings.Split(to, ",")
		}
		e.DryRun = dryRun != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sends WHERE sent_at < ?`,
		olderThan.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to prune sends: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
