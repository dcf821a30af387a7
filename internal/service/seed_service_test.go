package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/repository"
)

func seedRequest(items ...dto.SeedUser) dto.SeedUsersRequest {
	return dto.SeedUsersRequest{Items: items}
}

func TestSeedServiceTokenGuard(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSeedService(repository.NewUserRepository(db), testValidator(), true, "secret", testLogger())
	req := seedRequest(dto.SeedUser{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Role: "student"})

	_, err := svc.SeedUsers(context.Background(), "wrong", req)
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	res, err := svc.SeedUsers(context.Background(), " secret ", req)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Affected)
}

func TestSeedServiceDisabled(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSeedService(repository.NewUserRepository(db), testValidator(), false, "secret", testLogger())

	_, err := svc.SeedUsers(context.Background(), "secret", seedRequest())
	require.ErrorIs(t, err, ErrSeedDisabled)
}

func TestSeedServiceEmptyTokenNeverMatches(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSeedService(repository.NewUserRepository(db), testValidator(), true, "", testLogger())

	_, err := svc.SeedUsers(context.Background(), "", seedRequest())
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedServiceUpsertsByEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSeedService(repository.NewUserRepository(db), testValidator(), true, "secret", testLogger())
	ctx := context.Background()

	_, err := svc.SeedUsers(ctx, "secret", seedRequest(
		dto.SeedUser{FirstName: "Grace", LastName: "Hopper", Email: "Grace@Example.com", Role: "instructor"},
		dto.SeedUser{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Role: "student"},
		dto.SeedUser{FirstName: "Ada", LastName: "King", Email: "ADA@example.com", Role: "Student"},
	))
	require.NoError(t, err)

	_, err = svc.SeedUsers(ctx, "secret", seedRequest(
		dto.SeedUser{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Role: "admin"},
	))
	require.NoError(t, err)

	var users []models.User
	require.NoError(t, db.Order("email asc").Find(&users).Error)
	require.Len(t, users, 2)
	require.Equal(t, "ada@example.com", users[0].Email)
	require.Equal(t, "King", users[0].LastName)
	require.Equal(t, models.RoleStudent, users[0].Role)
	require.Equal(t, "grace@example.com", users[1].Email)
	require.Equal(t, models.RoleAdmin, users[1].Role)
}

func TestSeedServiceValidatesItems(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSeedService(repository.NewUserRepository(db), testValidator(), true, "secret", testLogger())

	_, err := svc.SeedUsers(context.Background(), "secret", seedRequest(
		dto.SeedUser{FirstName: "Eve", Email: "not-an-email", Role: "student"},
	))
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	_, err = svc.SeedUsers(context.Background(), "secret", seedRequest(
		dto.SeedUser{FirstName: "Mallory", Email: "mallory@example.com", Role: "superuser"},
	))
	require.ErrorAs(t, err, &validationErrs)
}
