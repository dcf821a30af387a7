package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/repository"
)

func TestActivityServiceRecordMasksSensitiveMetadata(t *testing.T) {
	s := newSeed(t)
	svc := NewActivityService(repository.NewActivityLogRepository(s.db), testValidator(), testLogger())

	id := uint(5)
	entry, err := svc.Record(context.Background(), ActivityEntry{
		Actor:      Actor{ID: s.instructor.ID, Role: "Instructor", CorrelationID: "req-1"},
		Action:     "Result.Graded",
		EntityType: "Result",
		EntityID:   &id,
		Metadata: map[string]interface{}{
			"email":   "student@example.com",
			"answers": "A,B",
			"marks":   4,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "***", entry.Metadata["email"])
	require.Equal(t, "***", entry.Metadata["answers"])
	require.Equal(t, 4, entry.Metadata["marks"])
	require.Equal(t, "instructor", entry.ActorRole)
	require.Equal(t, ActionResultGraded, entry.Action)
	require.Equal(t, "result", entry.EntityType)
	require.Equal(t, "req-1", entry.CorrelationID)
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	s := newSeed(t)
	svc := NewActivityService(repository.NewActivityLogRepository(s.db), testValidator(), testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "result"})
	require.Error(t, err)
	_, err = svc.Record(context.Background(), ActivityEntry{Action: "result.graded"})
	require.Error(t, err)
}

func TestActivityServiceListFiltersAndPaginates(t *testing.T) {
	s := newSeed(t)
	svc := NewActivityService(repository.NewActivityLogRepository(s.db), testValidator(), testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, ActivityEntry{Actor: s.instructorActor(), Action: ActionAssessmentCreated, EntityType: "assessment"})
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, ActivityEntry{Actor: s.studentActor(0), Action: ActionResultSubmitted, EntityType: "result"})
	require.NoError(t, err)

	page, err := svc.List(ctx, dto.ActivityListRequest{Page: 1, PageSize: 2, Action: ActionAssessmentCreated})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, int64(3), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)

	byActor, err := svc.List(ctx, dto.ActivityListRequest{ActorID: s.students[0].ID})
	require.NoError(t, err)
	require.Len(t, byActor.Items, 1)
	require.Equal(t, 20, byActor.Pagination.PageSize)
	require.Equal(t, 1, byActor.Pagination.Page)

	_, err = svc.List(ctx, dto.ActivityListRequest{PageSize: 500})
	require.Error(t, err)
}

func TestRecordActivityToleratesNilRecorder(t *testing.T) {
	require.NotPanics(t, func() {
		recordActivity(context.Background(), nil, testLogger(), ActivityEntry{Action: "x", EntityType: "y"})
	})
}
