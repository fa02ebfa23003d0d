package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/eventsadmin/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new import entry
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ImportEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO import_activity (
			request_id, event_id, operator, status_code,
			outcome, notes, details, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.RequestID,
		entry.EventID,
		entry.Operator,
		entry.StatusCode,
		entry.Outcome,
		entry.Notes,
		entry.Details,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log import: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	entry.CreatedAt = createdAt

	return nil
}

// List returns import entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.ImportEntry, error) {
	query := `
		SELECT
			id, request_id, event_id, operator, status_code,
			outcome, notes, details, created_at
		FROM import_activity
	`

	args := []any{}
	conditions := []string{}

	if opts.EventID != "" {
		conditions = append(conditions, "event_id = ?")
		args = append(args, opts.EventID)
	}
	if opts.Operator != "" {
		conditions = append(conditions, "operator = ?")
		args = append(args, opts.Operator)
	}
	if opts.Outcome != nil {
		conditions = append(conditions, "outcome = ?")
		args = append(args, *opts.Outcome)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	defer rows.Close()

	var entries []activity.ImportEntry
	for rows.Next() {
		var entry activity.ImportEntry
		var notes sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.EventID,
			&entry.Operator,
			&entry.StatusCode,
			&entry.Outcome,
			&notes,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import entry: %w", err)
		}
		if notes.Valid {
			entry.Notes = &notes.String
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import rows: %w", err)
	}

	return entries, nil
}
