// Copyright 2026 Harbor AI
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

// Package sqlite implements the store interfaces on a single SQLite
// database file opened in WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/harborai/docqa/store"
)

// memorySeq distinguishes concurrently opened in-memory databases.
var memorySeq atomic.Int64

// Store is a SQLite-backed implementation of store.Store. All repository
// views share one connection pool.
type Store struct {
	db   *sql.DB
	path string
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if necessary) the database at the given path.
// Parent directories are created as needed. An empty path opens an
// in-memory database that vanishes on Close.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:docqa-mem-%d?mode=memory&cache=shared", memorySeq.Add(1))
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// An in-memory database is dropped when its last connection closes,
	// so pin the pool to a single connection.
	if path == "" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path. Empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Files returns the file repository backed by this store.
func (s *Store) Files() store.FileRepository {
	return &fileRepository{store: s}
}

// Chats returns the chat history repository backed by this store.
func (s *Store) Chats() store.ChatHistoryRepository {
	return &chatRepository{store: s}
}

// Clear wipes chat history and file records in a single transaction.
// Both tables empty together or neither does.
func (s *Store) Clear(ctx context.Context) (filesDeleted, chatsDeleted int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning clear transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM chat_history")
	if err != nil {
		return 0, 0, fmt.Errorf("clearing chat history: %w", err)
	}
	chats, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}

	res, err = tx.ExecContext(ctx, "DELETE FROM files")
	if err != nil {
		return 0, 0, fmt.Errorf("clearing files: %w", err)
	}
	files, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing clear transaction: %w", err)
	}
	return int(files), int(chats), nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL,
			filepath TEXT NOT NULL,
			upload_time DATETIME NOT NULL,
			metadata TEXT NOT NULL DEFAULT '',
			user_id TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_files_user_id ON files(user_id);

		CREATE TABLE IF NOT EXISTS chat_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL DEFAULT '',
			file_id INTEGER NOT NULL DEFAULT 0,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chat_history_user_id ON chat_history(user_id);
	`)
	return err
}
