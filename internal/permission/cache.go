package permission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TierCache caches resolved (user, feature, organization) tiers in Redis for
// a short TTL. Cache failures degrade to a chain walk; they never surface to
// the caller.
type TierCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewTierCache constructs a TierCache.
func NewTierCache(client *redis.Client, ttl time.Duration) *TierCache {
	return &TierCache{client: client, ttl: ttl}
}

type cachedTier struct {
	TierID int64  `json:"tierId"`
	Tier   string `json:"tier"`
	Scope  string `json:"scope"`
}

func tierCacheKey(in resolveInput) string {
	org := int64(0)
	if in.organizationID != nil {
		org = *in.organizationID
	} else if in.user.OrganizationID != nil {
		org = *in.user.OrganizationID
	}
	return fmt.Sprintf("access:tier:%s:%d:%d", in.user.ID, in.featureID, org)
}

// GetOrFill returns the cached resolution for key, or runs fill and stores a
// positive result. Concurrent misses for the same key share one fill.
func (c *TierCache) GetOrFill(ctx context.Context, key string, fill func() (*resolution, error)) (*resolution, error) {
	if res, ok := c.get(ctx, key); ok {
		return res, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if res, ok := c.get(ctx, key); ok {
			return res, nil
		}
		res, err := fill()
		if err != nil {
			return nil, err
		}
		if res != nil {
			c.set(ctx, key, res)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	res, _ := v.(*resolution)
	return res, nil
}

func (c *TierCache) get(ctx context.Context, key string) (*resolution, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var entry cachedTier
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return &resolution{tierID: entry.TierID, tier: entry.Tier, scope: entry.Scope}, true
}

func (c *TierCache) set(ctx context.Context, key string, res *resolution) {
	data, err := json.Marshal(cachedTier{TierID: res.tierID, Tier: res.tier, Scope: res.scope})
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}
