package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/store"
)

// chatRepository implements store.ChatHistoryRepository.
type chatRepository struct {
	store *Store
}

var _ store.ChatHistoryRepository = (*chatRepository)(nil)

// AddEntry appends a chat entry and returns it with its assigned ID.
func (r *chatRepository) AddEntry(ctx context.Context, entry *core.ChatEntry) (*core.ChatEntry, error) {
	if entry == nil || entry.Question == "" {
		return nil, fmt.Errorf("%w: question is required", store.ErrInvalidRecord)
	}

	stored := *entry
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}

	result, err := r.store.db.ExecContext(ctx, `
		INSERT INTO chat_history (user_id, file_id, question, answer, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, stored.UserID, stored.FileID, stored.Question, stored.Answer, stored.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("inserting chat entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted chat entry id: %w", err)
	}
	stored.Id = id

	return &stored, nil
}

// List returns chat entries for the given user, oldest first.
func (r *chatRepository) List(ctx context.Context, userID string) ([]*core.ChatEntry, error) {
	query := `
		SELECT id, user_id, file_id, question, answer, timestamp
		FROM chat_history ORDER BY timestamp ASC, id ASC
	`
	args := []any{}
	if userID != "" {
		query = `
			SELECT id, user_id, file_id, question, answer, timestamp
			FROM chat_history WHERE user_id = ? ORDER BY timestamp ASC, id ASC
		`
		args = append(args, userID)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chat history: %w", err)
	}
	defer rows.Close()

	var entries []*core.ChatEntry
	for rows.Next() {
		var entry core.ChatEntry
		if err := rows.Scan(&entry.Id, &entry.UserID, &entry.FileID,
			&entry.Question, &entry.Answer, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning chat entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat history: %w", err)
	}

	return entries, nil
}

// DeleteAll removes every chat entry and returns the count removed.
func (r *chatRepository) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.store.db.ExecContext(ctx, "DELETE FROM chat_history")
	if err != nil {
		return 0, fmt.Errorf("deleting chat history: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chat entries: %w", err)
	}
	return int(n), nil
}
