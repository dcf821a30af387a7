package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusync-go-api/internal/models"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile("file://" + filepath.ToSlash(path))
	require.NoError(t, err)
	return schema
}

func rawResponse(t *testing.T, env testEnv, method, path string, user models.User, body interface{}) (int, interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	return resp.StatusCode, payload
}

func TestAssessmentResponseContract(t *testing.T) {
	env := newTestEnv(t, options{})
	schema := compileSchema(t, "assessment.schema.json")

	status, payload := rawResponse(t, env, http.MethodPost, "/api/v1/assessments", env.instructor, quizPayload(env.course.ID))
	require.Equal(t, http.StatusCreated, status)
	require.NoError(t, schema.Validate(payload))
}

func TestSubmissionResponseContract(t *testing.T) {
	env := newTestEnv(t, options{})
	schema := compileSchema(t, "result.schema.json")
	quiz := env.publishedQuiz(t)

	status, payload := rawResponse(t, env, http.MethodPost, fmt.Sprintf("/api/v1/results/assessments/%d/submit", quiz.ID), env.students[0], submission(quiz, "A", "B"))
	require.Equal(t, http.StatusCreated, status)
	require.NoError(t, schema.Validate(payload))
}
