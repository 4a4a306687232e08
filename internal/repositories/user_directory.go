package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UserDirectory resolves user ids to public profiles. Profiles are cached in
// Redis as user:<id> JSON snapshots when a client is configured.
type UserDirectory struct {
	users UserRepository
	cache *redis.Client
	ttl   time.Duration
}

// NewUserDirectory builds a directory. cache may be nil.
func NewUserDirectory(users UserRepository, cache *redis.Client, ttl time.Duration) *UserDirectory {
	return &UserDirectory{users: users, cache: cache, ttl: ttl}
}

func profileKey(id uint) string { return fmt.Sprintf("user:%d", id) }

// Profile returns a single profile or ErrNotFound.
func (d *UserDirectory) Profile(ctx context.Context, id uint) (*models.UserCompact, error) {
	found, err := d.Profiles(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	p, ok := found[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Profiles returns the profiles that exist among ids. Missing users are
// absent from the map.
func (d *UserDirectory) Profiles(ctx context.Context, ids []uint) (map[uint]models.UserCompact, error) {
	out := make(map[uint]models.UserCompact, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	missing := ids
	if d.cache != nil {
		missing = d.fromCache(ctx, ids, out)
	}
	if len(missing) == 0 {
		return out, nil
	}

	users, err := d.users.GetUsersByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	var pipe redis.Pipeliner
	if d.cache != nil {
		pipe = d.cache.Pipeline()
	}
	for i := range users {
		p := users[i].ToCompact()
		out[p.ID] = p
		if pipe == nil {
			continue
		}
		if payload, err := json.Marshal(p); err == nil {
			pipe.Set(ctx, profileKey(p.ID), payload, d.ttl)
		}
	}
	if pipe != nil && pipe.Len() > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("profile cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// fromCache fills out with cached snapshots and returns the ids it could
// not serve. Cache errors degrade to a full miss.
func (d *UserDirectory) fromCache(ctx context.Context, ids []uint, out map[uint]models.UserCompact) []uint {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}

	vals, err := d.cache.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warn("profile cache read failed", zap.Error(err))
		return ids
	}

	missing := make([]uint, 0, len(ids))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var p models.UserCompact
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		out[ids[i]] = p
	}
	return missing
}

// Invalidate drops the cached snapshot after a profile change or deletion.
func (d *UserDirectory) Invalidate(ctx context.Context, id uint) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Del(ctx, profileKey(id)).Err(); err != nil {
		logger.Warn("profile cache invalidate failed", zap.Uint("user_id", id), zap.Error(err))
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
