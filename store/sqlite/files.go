package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/store"
)

// fileRepository implements store.FileRepository.
type fileRepository struct {
	store *Store
}

var _ store.FileRepository = (*fileRepository)(nil)

// Add records a new file and returns it with its assigned ID.
func (r *fileRepository) Add(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error) {
	if record == nil || record.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", store.ErrInvalidRecord)
	}

	stored := *record
	if stored.UploadTime.IsZero() {
		stored.UploadTime = time.Now().UTC()
	}

	result, err := r.store.db.ExecContext(ctx, `
		INSERT INTO files (filename, filepath, upload_time, metadata, user_id)
		VALUES (?, ?, ?, ?, ?)
	`, stored.Filename, stored.Filepath, stored.UploadTime, stored.Metadata, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("inserting file: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted file id: %w", err)
	}
	stored.Id = id

	return &stored, nil
}

// Get returns a file by ID, or store.ErrNotFound.
func (r *fileRepository) Get(ctx context.Context, id int64) (*core.FileRecord, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, filename, filepath, upload_time, metadata, user_id
		FROM files WHERE id = ?
	`, id)

	var record core.FileRecord
	err := row.Scan(&record.Id, &record.Filename, &record.Filepath,
		&record.UploadTime, &record.Metadata, &record.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("scanning file: %w", err)
	}

	return &record, nil
}

// List returns files owned by the given user, newest first.
func (r *fileRepository) List(ctx context.Context, userID string) ([]*core.FileRecord, error) {
	query := `
		SELECT id, filename, filepath, upload_time, metadata, user_id
		FROM files ORDER BY upload_time DESC, id DESC
	`
	args := []any{}
	if userID != "" {
		query = `
			SELECT id, filename, filepath, upload_time, metadata, user_id
			FROM files WHERE user_id = ? ORDER BY upload_time DESC, id DESC
		`
		args = append(args, userID)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var records []*core.FileRecord
	for rows.Next() {
		var record core.FileRecord
		if err := rows.Scan(&record.Id, &record.Filename, &record.Filepath,
			&record.UploadTime, &record.Metadata, &record.UserID); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}

	return records, nil
}

// Delete removes a file record. Deleting a missing ID is not an error.
func (r *fileRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.store.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// DeleteAll removes every file record and returns the count removed.
func (r *fileRepository) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.store.db.ExecContext(ctx, "DELETE FROM files")
	if err != nil {
		return 0, fmt.Errorf("deleting files: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted files: %w", err)
	}
	return int(n), nil
}
