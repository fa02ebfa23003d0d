package mocks

import (
	"context"
	"time"

	"github.com/rpggio/eventsadmin/internal/domain/activity"
	"github.com/rpggio/eventsadmin/internal/domain/operator"
	"github.com/stretchr/testify/mock"
)

// SessionRepository is a mock for operator.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, sess *operator.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*operator.Session, error) {
	args := m.Called(ctx, tokenHash)
	if sess, ok := args.Get(0).(*operator.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ImportEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.ImportEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ImportEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
