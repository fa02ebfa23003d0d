package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/eventsadmin/internal/domain/operator"
	"github.com/rpggio/eventsadmin/internal/repository"
)

// OperatorSessionRepository implements operator.SessionRepository for SQLite
type OperatorSessionRepository struct {
	db *DB
}

// NewOperatorSessionRepository creates a new OperatorSessionRepository
func NewOperatorSessionRepository(db *DB) *OperatorSessionRepository {
	return &OperatorSessionRepository{db: db}
}

// Create stores a new session
func (r *OperatorSessionRepository) Create(ctx context.Context, sess *operator.Session) error {
	query := `
		INSERT INTO operator_sessions (token_hash, email, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		sess.TokenHash,
		sess.Email,
		sess.CreatedAt.UTC(),
		sess.ExpiresAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create operator session: %w", err)
	}
	return nil
}

// GetByTokenHash retrieves a session by token hash
func (r *OperatorSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*operator.Session, error) {
	query := `
		SELECT token_hash, email, created_at, expires_at
		FROM operator_sessions
		WHERE token_hash = ?
	`

	var sess operator.Session
	var expiresAt int64
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&sess.TokenHash,
		&sess.Email,
		&sess.CreatedAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get operator session: %w", err)
	}
	sess.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &sess, nil
}

// Delete removes a session
func (r *OperatorSessionRepository) Delete(ctx context.Context, tokenHash string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM operator_sessions WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete operator session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is at or before now
func (r *OperatorSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM operator_sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
