// Package rediscache wraps a repo.Store with a read-through Redis cache for
// provider weekly hours, the one lookup every slot generation repeats.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
	rdb "github.com/Alijeyrad/salonora_backend/pkg/redis"
)

type Store struct {
	repo.Store
	client goredis.UniversalClient
	ttl    time.Duration
}

func New(inner repo.Store, client goredis.UniversalClient, ttl time.Duration) *Store {
	return &Store{Store: inner, client: client, ttl: ttl}
}

func hoursKey(providerID uuid.UUID) string {
	return rdb.Key("hours", providerID.String())
}

// GetWeeklyHours serves from Redis when possible. Cache failures fall
// through to the underlying store.
func (s *Store) GetWeeklyHours(ctx context.Context, providerID uuid.UUID) (model.WeeklyHours, error) {
	key := hoursKey(providerID)

	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var hours model.WeeklyHours
		if jerr := json.Unmarshal(raw, &hours); jerr == nil {
			return hours, nil
		}
		slog.WarnContext(ctx, "discarding corrupt weekly hours cache entry", "key", key)
	case !errors.Is(err, goredis.Nil):
		slog.WarnContext(ctx, "weekly hours cache read failed", "key", key, "err", err)
	}

	hours, err := s.Store.GetWeeklyHours(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(hours); err == nil {
		if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "weekly hours cache write failed", "key", key, "err", err)
		}
	}
	return hours, nil
}

func (s *Store) SetWeeklyHours(ctx context.Context, providerID uuid.UUID, hours model.WeeklyHours) error {
	if err := s.Store.SetWeeklyHours(ctx, providerID, hours); err != nil {
		return err
	}
	if err := s.client.Del(ctx, hoursKey(providerID)).Err(); err != nil {
		slog.WarnContext(ctx, "weekly hours cache invalidation failed", "provider_id", providerID, "err", err)
	}
	return nil
}
