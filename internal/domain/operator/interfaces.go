package operator

import (
	"context"
	"time"
)

// SessionRepository provides persistence for operator sessions.
type SessionRepository interface {
	Create(ctx context.Context, sess *Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
