package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/handler"
	"github.com/noah-isme/edusync-go-api/internal/models"
)

func seedUsersRequest(t *testing.T, token string, items ...dto.SeedUser) *http.Request {
	t.Helper()
	payload, err := json.Marshal(dto.SeedUsersRequest{Items: items})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/seed/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(handler.SeedTokenHeader, token)
	}
	return req
}

func TestSeedUsersProvisionsDirectory(t *testing.T) {
	env := newTestEnv(t, options{})

	status, body := env.send(t, seedUsersRequest(t, testSeedToken,
		dto.SeedUser{FirstName: "Barbara", LastName: "Liskov", Email: "barbara@example.com", Role: models.RoleInstructor},
	))
	require.Equal(t, http.StatusOK, status)
	require.True(t, body.Success)

	var res dto.SeedResponse
	decodeData(t, body, &res)
	require.Equal(t, int64(1), res.Affected)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "barbara@example.com").First(&user).Error)
	require.Equal(t, models.RoleInstructor, user.Role)

	status, _ = env.do(t, http.MethodGet, "/api/v1/courses", &user, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestSeedUsersRejectsBadToken(t *testing.T) {
	env := newTestEnv(t, options{})

	status, body := env.send(t, seedUsersRequest(t, "nope",
		dto.SeedUser{FirstName: "Eve", Email: "eve@example.com", Role: models.RoleAdmin},
	))
	require.Equal(t, http.StatusForbidden, status)
	require.False(t, body.Success)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", "eve@example.com").Count(&count).Error)
	require.Zero(t, count)
}

func TestSeedUsersValidation(t *testing.T) {
	env := newTestEnv(t, options{})

	status, body := env.send(t, seedUsersRequest(t, testSeedToken,
		dto.SeedUser{FirstName: "Eve", Email: "eve@example.com", Role: "root"},
	))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation failed", body.Message)
}
