package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"profile-editor/models"
)

// RecordStore is what CachedUserRepository wraps.
type RecordStore interface {
	FetchRecord(ctx context.Context, id string) (*models.UserRecord, error)
	UpdateRecord(ctx context.Context, id string, patch models.Patch) error
}

// CachedUserRepository reads records through Redis. Redis errors are logged
// and the call falls through to the underlying store.
type CachedUserRepository struct {
	next   RecordStore
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedUserRepository(next RecordStore, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func recordKey(id string) string {
	return "profile:record:" + id
}

func (r *CachedUserRepository) FetchRecord(ctx context.Context, id string) (*models.UserRecord, error) {
	raw, err := r.rdb.Get(ctx, recordKey(id)).Bytes()
	switch {
	case err == nil:
		var user models.UserRecord
		if jerr := json.Unmarshal(raw, &user); jerr == nil {
			return &user, nil
		}
		r.logger.Warn("dropping corrupt cached record", zap.String("user_id", id))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("record cache read failed", zap.String("user_id", id), zap.Error(err))
	}

	user, err := r.next.FetchRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(user); err == nil {
		if err := r.rdb.Set(ctx, recordKey(id), raw, r.ttl).Err(); err != nil {
			r.logger.Warn("record cache write failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return user, nil
}

// UpdateRecord writes through and evicts the cached copy.
func (r *CachedUserRepository) UpdateRecord(ctx context.Context, id string, patch models.Patch) error {
	if err := r.next.UpdateRecord(ctx, id, patch); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, recordKey(id)).Err(); err != nil {
		r.logger.Warn("record cache eviction failed", zap.String("user_id", id), zap.Error(err))
	}
	return nil
}
