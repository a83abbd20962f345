// Package cache provides the in-memory credential cache used in front of the
// environment credential loader.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/config"
	"github.com/sean-rowe/weather-report/internal/core/ports"
	"github.com/sean-rowe/weather-report/internal/observability"
)

const credentialsKey = "credentials"

// CredentialCache decorates a CredentialLoader with a go-cache entry.
// Only successful loads are stored; a failed load is retried on the next call.
type CredentialCache struct {
	next      ports.CredentialLoader
	cache     *gocache.Cache
	ttl       time.Duration
	telemetry *observability.Telemetry
	logger    *zap.Logger
}

// NewCredentialCache wraps next with a cache entry that lives for ttl.
//
// Parameters:
//   - next: Loader consulted on a miss
//   - ttl: Lifetime of a cached credential set
//   - telemetry: Hit/miss counters, may be nil
//   - logger: Zap logger for cache operations
//
// Returns:
//   - *CredentialCache: Caching loader
func NewCredentialCache(next ports.CredentialLoader, ttl time.Duration, telemetry *observability.Telemetry, logger *zap.Logger) *CredentialCache {
	return &CredentialCache{
		next:      next,
		cache:     gocache.New(ttl, 2*ttl),
		ttl:       ttl,
		telemetry: telemetry,
		logger:    logger,
	}
}

// Load returns the cached credentials or loads and caches them.
//
// Parameters:
//   - ctx: Context for tracing
//
// Returns:
//   - config.Credentials: Provider keys
//   - error: The wrapped loader's error, never cached
func (c *CredentialCache) Load(ctx context.Context) (config.Credentials, error) {
	tracer := otel.Tracer("cache")
	ctx, span := tracer.Start(ctx, "CredentialCache.Load")

	defer span.End()

	if value, found := c.cache.Get(credentialsKey); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		c.telemetry.RecordCredentialHit(ctx)
		c.logger.Debug("credential cache hit")

		return value.(config.Credentials), nil
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	c.telemetry.RecordCredentialMiss(ctx)

	creds, err := c.next.Load(ctx)

	if err != nil {
		span.RecordError(err)

		return config.Credentials{}, err
	}

	c.cache.Set(credentialsKey, creds, c.ttl)
	c.logger.Debug("credential cache set", zap.Duration("ttl", c.ttl))

	return creds, nil
}

// Flush drops the cached entry.
func (c *CredentialCache) Flush() {
	c.cache.Flush()
	c.logger.Info("credential cache cleared")
}
