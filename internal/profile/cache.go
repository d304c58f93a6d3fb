package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jdhruv555/aura-assist/pkg/logging"
)

const defaultCacheTTL = time.Hour

// CachedStore decorates a Store with a Redis read-through cache. The
// cache is an explicit collaborator: reads may be served stale within the
// TTL, and Put invalidates the cached entry.
type CachedStore struct {
	inner  Store
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	logger *logging.Logger
}

// NewCachedStore wraps inner with a Redis cache.
func NewCachedStore(inner Store, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedStore {
	if inner == nil {
		panic("profile: inner store cannot be nil")
	}
	if redisClient == nil {
		panic("profile: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedStore{
		inner:  inner,
		redis:  redisClient,
		ttl:    ttl,
		tracer: otel.Tracer("aura.internal.profile.cache"),
		logger: logger,
	}
}

func (s *CachedStore) Get(ctx context.Context, customerID string) (CustomerProfile, error) {
	ctx, span := s.tracer.Start(ctx, "profile.cache_get")
	defer span.End()

	key := cacheKey(customerID)
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == nil {
		var p CustomerProfile
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		// Corrupt entry; fall through to the durable store.
		s.logger.Warn("discarding corrupt cached profile", "customer_id", customerID)
	} else if err != redis.Nil {
		span.RecordError(err)
		s.logger.Warn("profile cache read failed", "error", err)
	}

	p, err := s.inner.Get(ctx, customerID)
	if err != nil {
		return CustomerProfile{}, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Warn("profile cache write failed", "error", err)
		}
	}
	return p, nil
}

func (s *CachedStore) Put(ctx context.Context, p CustomerProfile) error {
	ctx, span := s.tracer.Start(ctx, "profile.cache_put")
	defer span.End()

	if err := s.inner.Put(ctx, p); err != nil {
		return err
	}
	if err := s.redis.Del(ctx, cacheKey(p.CustomerID)).Err(); err != nil {
		span.RecordError(err)
		s.logger.Warn("profile cache invalidation failed", "error", err, "customer_id", p.CustomerID)
	}
	return nil
}

func cacheKey(customerID string) string {
	return fmt.Sprintf("customer:%s", customerID)
}
