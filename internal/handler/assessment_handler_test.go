package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssessmentLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t, options{})

	status, body := env.do(t, http.MethodPost, "/api/v1/assessments", &env.instructor, quizPayload(env.course.ID))
	require.Equal(t, http.StatusCreated, status, body.Message)
	require.NotContains(t, string(body.Data), "correct_answer")

	var draft assessmentBody
	decodeData(t, body, &draft)
	require.Equal(t, "draft", draft.State)
	require.Len(t, draft.Questions, 2)

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assessments/%d", draft.ID), &env.students[0], nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assessments/%d", draft.ID), &env.instructor, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/assessments/%d/publish", draft.ID), &env.instructor, nil)
	require.Equal(t, http.StatusOK, status)
	var published assessmentBody
	decodeData(t, body, &published)
	require.True(t, published.IsPublished)
	require.Equal(t, "published", published.State)

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/courses/%d/assessments", env.course.ID), &env.students[0], nil)
	require.Equal(t, http.StatusOK, status)
	var listed []assessmentBody
	decodeData(t, body, &listed)
	require.Len(t, listed, 1)

	status, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/assessments/%d", draft.ID), &env.instructor, map[string]interface{}{"title": "Renamed quiz"})
	require.Equal(t, http.StatusOK, status, body.Message)

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/assessments/%d", draft.ID), &env.instructor, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assessments/%d", draft.ID), &env.instructor, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestAssessmentRoutesEnforceRolesAndOwnership(t *testing.T) {
	env := newTestEnv(t, options{})
	quiz := env.publishedQuiz(t)

	status, _ := env.do(t, http.MethodPost, "/api/v1/assessments", nil, quizPayload(env.course.ID))
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/assessments", &env.students[0], quizPayload(env.course.ID))
	require.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/assessments", &env.otherTutor, quizPayload(env.course.ID))
	require.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/assessments/%d/publish", quiz.ID), &env.otherTutor, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/assessments/%d", quiz.ID), &env.admin, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestAssessmentCreateReportsValidationAndMarks(t *testing.T) {
	env := newTestEnv(t, options{})

	invalid := quizPayload(env.course.ID)
	invalid["title"] = ""
	status, body := env.do(t, http.MethodPost, "/api/v1/assessments", &env.instructor, invalid)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation failed", body.Message)
	require.Contains(t, string(body.Details), "Title")

	overfull := quizPayload(env.course.ID)
	overfull["total_marks"] = 4
	status, _ = env.do(t, http.MethodPost, "/api/v1/assessments", &env.instructor, overfull)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/assessments", &env.instructor, quizPayload(999))
	require.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/assessments/abc", &env.instructor, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAssessmentUpdateRejectsEmptyQuestionList(t *testing.T) {
	env := newTestEnv(t, options{})
	quiz := env.publishedQuiz(t)

	status, body := env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/assessments/%d", quiz.ID), &env.instructor, map[string]interface{}{
		"questions": []map[string]interface{}{},
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation failed", body.Message)
	require.Contains(t, string(body.Details), "Questions")

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assessments/%d", quiz.ID), &env.instructor, nil)
	require.Equal(t, http.StatusOK, status)
	var stored assessmentBody
	decodeData(t, body, &stored)
	require.Len(t, stored.Questions, 2)
}
