package activity_test

import (
	"context"
	"testing"

	"github.com/rpggio/eventsadmin/internal/domain/activity"
	"github.com/rpggio/eventsadmin/internal/repository/mocks"
	"github.com/stretchr/testify/require"
)

func TestActivityService_RecordAndList(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ActivityRepository{}
	entry := &activity.ImportEntry{
		RequestID:  "req1",
		EventID:    "42",
		Operator:   "ops@example.com",
		StatusCode: 200,
		Outcome:    activity.OutcomeImported,
	}

	repo.On("Log", ctx, entry).Return(nil)
	repo.On("List", ctx, activity.ListOptions{EventID: "42", Limit: 50}).Return([]activity.ImportEntry{*entry}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.RecordImport(ctx, entry))
	require.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.RecentImports(ctx, activity.ListOptions{EventID: "42"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestActivityService_RejectsIncompleteEntry(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	require.ErrorIs(t, svc.RecordImport(context.Background(), &activity.ImportEntry{}), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.RecordImport(context.Background(), nil), activity.ErrInvalidInput)
}

func TestOutcomeForStatus(t *testing.T) {
	require.Equal(t, activity.OutcomeImported, activity.OutcomeForStatus(201))
	require.Equal(t, activity.OutcomeRejected, activity.OutcomeForStatus(404))
}
