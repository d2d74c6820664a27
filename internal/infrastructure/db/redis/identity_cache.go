package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/staffhub/user-management/internal/api/metrics"
	"github.com/staffhub/user-management/internal/core/ports"
)

const (
	defaultIdentityTTL = 5 * time.Minute

	// invalidatedMarker holds the key after an invalidation for invalidationHold,
	// so a verification that read the account before the mutation cannot
	// write its stale identity back. It outlasts one account store read.
	invalidatedMarker = "invalidated"
	invalidationHold  = 15 * time.Second
)

// IdentityCache stores the role and status of recently verified accounts.
// Key format: identity:<account_id>
//
// Redis failures are logged and treated as cache misses so token verification
// falls back to the account store. Entries are only written when the key is
// free, and Invalidate parks a marker on the key instead of deleting it.
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewIdentityCache creates an IdentityCache wrapping the given Redis client.
// If ttl <= 0, defaultIdentityTTL is used.
func NewIdentityCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &IdentityCache{client: client, ttl: ttl, log: log}
}

func (c *IdentityCache) Get(ctx context.Context, accountID string) (*ports.CachedIdentity, bool) {
	raw, err := c.client.Get(ctx, c.key(accountID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("user_id", accountID).Msg("identity cache read failed")
		}
		metrics.IdentityCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	if string(raw) == invalidatedMarker {
		metrics.IdentityCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var id ports.CachedIdentity
	if err := json.Unmarshal(raw, &id); err != nil {
		c.log.Warn().Err(err).Str("user_id", accountID).Msg("identity cache entry corrupt")
		metrics.IdentityCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.IdentityCacheTotal.WithLabelValues("hit").Inc()
	return &id, true
}

func (c *IdentityCache) Set(ctx context.Context, accountID string, id ports.CachedIdentity) {
	raw, err := json.Marshal(id)
	if err != nil {
		return
	}
	stored, err := c.client.SetNX(ctx, c.key(accountID), raw, c.ttl).Result()
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", accountID).Msg("identity cache write failed")
		return
	}
	if !stored {
		c.log.Debug().Str("user_id", accountID).Msg("identity cache write skipped, key recently invalidated")
	}
}

// Invalidate drops the cached identity. Lifecycle mutations call it so role and
// status changes apply to outstanding tokens immediately.
func (c *IdentityCache) Invalidate(ctx context.Context, accountID string) {
	if err := c.client.Set(ctx, c.key(accountID), invalidatedMarker, invalidationHold).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", accountID).Msg("identity cache invalidation failed")
	}
}

func (c *IdentityCache) key(accountID string) string {
	return fmt.Sprintf("identity:%s", accountID)
}
