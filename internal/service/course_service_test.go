package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusync-go-api/internal/dto"
)

func TestCourseServiceCreateAndGet(t *testing.T) {
	s := newSeed(t)
	activity := &recordingActivity{}
	svc := NewCourseService(s.store, testValidator(), activity, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, s.instructorActor(), dto.CourseCreateRequest{
		Title:       "  Data Structures ",
		Description: "<script>alert(1)</script>Trees and graphs",
		Level:       "intermediate",
	})
	require.NoError(t, err)
	require.Equal(t, "Data Structures", created.Title)
	require.Equal(t, "Trees and graphs", created.Description)
	require.Equal(t, s.instructor.ID, created.InstructorID)
	require.Equal(t, "Grace Hopper", created.InstructorName)
	require.True(t, created.IsActive)
	require.Equal(t, []string{"course.created"}, activity.actions())

	courses, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)

	_, err = svc.Get(ctx, 999)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseServiceCreateValidates(t *testing.T) {
	s := newSeed(t)
	svc := NewCourseService(s.store, testValidator(), nil, testLogger())

	_, err := svc.Create(context.Background(), s.instructorActor(), dto.CourseCreateRequest{Title: "x"})
	require.Error(t, err)
}
