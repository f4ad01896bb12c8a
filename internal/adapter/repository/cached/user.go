package cached

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"highscore-user-service/internal/adapter/cache"
	domain "highscore-user-service/internal/domain/user"
	"highscore-user-service/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group

	// mu guards loading. loading[id] exists while a database read for id is
	// in flight and flips to true when a write invalidates id during that read.
	mu      sync.Mutex
	loading map[string]bool
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo:  dbRepo,
		cache:   c,
		log:     log,
		loading: make(map[string]bool),
	}
}

// Create delegates to the DB repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user by ID using the cache-aside pattern.
// Concurrent misses for the same ID share one database read.
func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if cachedUser, err := r.cache.Get(ctx, id); err != nil {
		r.log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	result, err, _ := r.group.Do(cache.CacheKey(id), func() (any, error) {
		r.mu.Lock()
		r.loading[id] = false
		r.mu.Unlock()

		u, err := r.dbRepo.GetByID(ctx, id)

		r.mu.Lock()
		defer r.mu.Unlock()
		stale := r.loading[id]
		delete(r.loading, id)

		if err != nil {
			return nil, err
		}

		// A write that landed during the read may already have invalidated
		// the key; caching this snapshot would outlive it until the TTL.
		if stale {
			r.log.Debug("skipping cache fill, user changed during read", zap.String("id", id))
			return u, nil
		}
		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.User), nil
}

// GetByEmail delegates to the DB repository.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// FindByName delegates to the DB repository; login always needs the stored hash.
func (r *CachedUserRepository) FindByName(ctx context.Context, name string) ([]domain.User, error) {
	return r.dbRepo.FindByName(ctx, name)
}

// UpdateHighscore writes through to the DB and invalidates the cached entry.
func (r *CachedUserRepository) UpdateHighscore(ctx context.Context, id string, score int64) (*domain.User, error) {
	u, err := r.dbRepo.UpdateHighscore(ctx, id, score)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id, "update")
	return u, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id string) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id, "delete")
	return nil
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id, op string) {
	r.mu.Lock()
	if _, ok := r.loading[id]; ok {
		r.loading[id] = true
	}
	r.mu.Unlock()

	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("op", op), zap.String("id", id), zap.Error(err))
	}
}

var _ user.Repository = (*CachedUserRepository)(nil)
