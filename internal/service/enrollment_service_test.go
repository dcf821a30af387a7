package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnrollmentServiceLifecycle(t *testing.T) {
	s := newSeed(t)
	svc := NewEnrollmentService(s.store, testLogger())
	ctx := context.Background()
	student := s.students[0].ID

	enrolled, err := svc.IsEnrolled(ctx, student, s.course.ID)
	require.NoError(t, err)
	require.False(t, enrolled)

	enrollment, err := svc.Enroll(ctx, student, s.course.ID)
	require.NoError(t, err)
	require.Equal(t, s.course.ID, enrollment.CourseID)

	_, err = svc.Enroll(ctx, student, s.course.ID)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.ErrorIs(t, err, ErrConflictingState)

	enrolled, err = svc.IsEnrolled(ctx, student, s.course.ID)
	require.NoError(t, err)
	require.True(t, enrolled)

	courses, err := svc.ListCourses(ctx, student)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "Computing 101", courses[0].Title)

	require.NoError(t, svc.Unenroll(ctx, student, s.course.ID))
	require.ErrorIs(t, svc.Unenroll(ctx, student, s.course.ID), ErrEnrollmentNotFound)

	courses, err = svc.ListCourses(ctx, student)
	require.NoError(t, err)
	require.Empty(t, courses)
}

func TestEnrollmentServiceUnknownCourse(t *testing.T) {
	s := newSeed(t)
	svc := NewEnrollmentService(s.store, testLogger())

	_, err := svc.Enroll(context.Background(), s.students[0].ID, 999)
	require.ErrorIs(t, err, ErrCourseNotFound)
}
