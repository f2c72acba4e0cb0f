package verification

import (
	"context"
	"strconv"

	"veridoc/internal/platform/config"
	platformredis "veridoc/internal/platform/redis"
)

// certIDCache maps certificate ids to document ids through Redis so repeat
// verifications skip the fallback scan. A nil client disables caching.
type certIDCache struct {
	client *platformredis.Client
}

func newCertIDCache(client *platformredis.Client) *certIDCache {
	return &certIDCache{client: client}
}

func cacheKey(certID string) string {
	return "veridoc:certid:" + certID
}

func (c *certIDCache) Get(ctx context.Context, certID string) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, cacheKey(certID)).Result()
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (c *certIDCache) Set(ctx context.Context, certID string, docID int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, cacheKey(certID), strconv.FormatInt(docID, 10), config.VerifyCacheTTL)
}
