package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/mehfilhq/mehfil/internal/domain"
)

const firstPageKey = "mehfil:thoughts:firstpage"

// feedSource is the storage the cache sits in front of.
type feedSource interface {
	Create(ctx context.Context, thought domain.Thought) error
	List(ctx context.Context, limit, offset int) ([]domain.Thought, error)
	ToggleReaction(ctx context.Context, thoughtID, userID string) (int64, error)
	ReactedThoughtIDs(ctx context.Context, userID string, thoughtIDs []string) ([]string, error)
}

// CachedThoughtRepository keeps the hot first feed page in memcached and
// drops it on every write. Cache trouble never fails a request; the source
// of truth is always reachable underneath.
type CachedThoughtRepository struct {
	source    feedSource
	mc        *memcache.Client
	pageLimit int
	ttl       time.Duration
}

func NewCachedThoughtRepository(source feedSource, mc *memcache.Client, pageLimit int, ttl time.Duration) *CachedThoughtRepository {
	return &CachedThoughtRepository{
		source:    source,
		mc:        mc,
		pageLimit: pageLimit,
		ttl:       ttl,
	}
}

func (r *CachedThoughtRepository) Create(ctx context.Context, thought domain.Thought) error {
	err := r.source.Create(ctx, thought)
	if err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedThoughtRepository) List(ctx context.Context, limit, offset int) ([]domain.Thought, error) {
	if limit != r.pageLimit || offset != 0 {
		return r.source.List(ctx, limit, offset)
	}

	item, err := r.mc.Get(firstPageKey)
	if err == nil {
		var thoughts []domain.Thought
		if err := json.Unmarshal(item.Value, &thoughts); err == nil {
			return thoughts, nil
		}
	}

	thoughts, err := r.source.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	value, err := json.Marshal(thoughts)
	if err == nil {
		err = r.mc.Set(&memcache.Item{
			Key:        firstPageKey,
			Value:      value,
			Expiration: int32(r.ttl.Seconds()),
		})
	}
	if err != nil {
		slog.WarnContext(
			ctx, "Failed to cache feed page",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}

	return thoughts, nil
}

func (r *CachedThoughtRepository) ToggleReaction(ctx context.Context, thoughtID, userID string) (int64, error) {
	count, err := r.source.ToggleReaction(ctx, thoughtID, userID)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx)
	return count, nil
}

func (r *CachedThoughtRepository) ReactedThoughtIDs(ctx context.Context, userID string, thoughtIDs []string) ([]string, error) {
	return r.source.ReactedThoughtIDs(ctx, userID, thoughtIDs)
}

func (r *CachedThoughtRepository) invalidate(ctx context.Context) {
	err := r.mc.Delete(firstPageKey)
	if err != nil && err != memcache.ErrCacheMiss {
		slog.WarnContext(
			ctx, "Failed to invalidate feed page cache",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}
