package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/observability"
)

// transcriptCache keeps each student's result listing in Redis. A nil client disables it.
type transcriptCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func newTranscriptCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) transcriptCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return transcriptCache{client: client, ttl: ttl, logger: logger}
}

func transcriptCacheKey(studentID uint) string {
	return fmt.Sprintf("transcript:student:%d", studentID)
}

func (c transcriptCache) load(ctx context.Context, studentID uint) ([]dto.ResultResponse, bool) {
	if c.client == nil {
		return nil, false
	}

	cached, err := c.client.Get(ctx, transcriptCacheKey(studentID)).Result()
	if err == nil {
		var response []dto.ResultResponse
		if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
			observability.TranscriptCache().WithLabelValues("hit").Inc()
			return response, true
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("failed to read transcript cache")
	}
	observability.TranscriptCache().WithLabelValues("miss").Inc()
	return nil, false
}

func (c transcriptCache) store(ctx context.Context, studentID uint, response []dto.ResultResponse) {
	if c.client == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, transcriptCacheKey(studentID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store transcript cache")
	}
}

func (c transcriptCache) invalidate(ctx context.Context, studentIDs ...uint) {
	if c.client == nil || len(studentIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		keys = append(keys, transcriptCacheKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Uints("student_ids", studentIDs).Msg("failed to invalidate transcript cache")
	}
}
