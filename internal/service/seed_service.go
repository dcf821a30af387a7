package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService provisions the user directory for local and staging environments.
type SeedService interface {
	SeedUsers(ctx context.Context, token string, req dto.SeedUsersRequest) (dto.SeedResponse, error)
}

type seedService struct {
	users     repository.UserRepository
	validator *validator.Validate
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, validate *validator.Validate, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		users:     users,
		validator: validate,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedUsers(ctx context.Context, token string, req dto.SeedUsersRequest) (dto.SeedResponse, error) {
	if !s.enabled {
		return dto.SeedResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SeedResponse{}, ErrSeedUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.SeedResponse{}, err
	}

	affected, err := s.users.UpsertBatch(ctx, normalizeSeedUsers(req.Items))
	if err != nil {
		return dto.SeedResponse{}, err
	}
	s.logger.Info().Int64("affected", affected).Msg("users seeded")
	return dto.SeedResponse{Affected: affected}, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

// normalizeSeedUsers collapses duplicate emails, keeping the last entry.
func normalizeSeedUsers(items []dto.SeedUser) []models.User {
	index := make(map[string]int, len(items))
	users := make([]models.User, 0, len(items))
	for _, item := range items {
		user := models.User{
			FirstName: strings.TrimSpace(item.FirstName),
			LastName:  strings.TrimSpace(item.LastName),
			Email:     strings.ToLower(strings.TrimSpace(item.Email)),
			Role:      strings.ToLower(strings.TrimSpace(item.Role)),
		}
		if pos, ok := index[user.Email]; ok {
			users[pos] = user
			continue
		}
		index[user.Email] = len(users)
		users = append(users, user)
	}
	return users
}
