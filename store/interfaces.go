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

package store

import (
	"context"

	"github.com/harborai/docqa/core"
)

// FileRepository tracks uploaded files and their ownership.
type FileRepository interface {
	// Add records a new file and returns it with its assigned ID.
	Add(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error)

	// Get returns a file by ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (*core.FileRecord, error)

	// List returns files owned by the given user, newest first. An empty
	// userID lists every file.
	List(ctx context.Context, userID string) ([]*core.FileRecord, error)

	// Delete removes a file record. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every file record and returns the count removed.
	DeleteAll(ctx context.Context) (int, error)
}

// ChatHistoryRepository stores the question/answer log.
type ChatHistoryRepository interface {
	// AddEntry appends a chat entry and returns it with its assigned ID.
	AddEntry(ctx context.Context, entry *core.ChatEntry) (*core.ChatEntry, error)

	// List returns chat entries for the given user, oldest first.
	List(ctx context.Context, userID string) ([]*core.ChatEntry, error)

	// DeleteAll removes every chat entry and returns the count removed.
	DeleteAll(ctx context.Context) (int, error)
}

// Store bundles the relational repositories behind one connection.
type Store interface {
	Files() FileRepository
	Chats() ChatHistoryRepository

	// Clear removes every chat entry and file record atomically and
	// returns the counts removed. A failure leaves both tables intact.
	Clear(ctx context.Context) (filesDeleted, chatsDeleted int, err error)

	Close() error
}
