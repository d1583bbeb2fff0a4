package sadiq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wathiq/b2b-platform/internal/config"
)

// StatusCache is a short-lived read-through cache in front of envelope
// status polling. Several viewers may auto-refresh the same agreement
// every 30 seconds; the cache keeps that from hammering the provider.
// When Redis is not configured every lookup is a miss.
type StatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatusCache(cfg *config.Config) *StatusCache {
	c := &StatusCache{ttl: time.Duration(cfg.SadiqStatusCacheS) * time.Second}
	if cfg.RedisAddr != "" {
		c.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}
	return c
}

func (c *StatusCache) key(referenceNumber string) string {
	return "sadiq:envelope:" + referenceNumber
}

func (c *StatusCache) Get(referenceNumber string) (*EnvelopeStatus, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(context.Background(), c.key(referenceNumber)).Bytes()
	if err != nil {
		return nil, false
	}
	var status EnvelopeStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, false
	}
	return &status, true
}

func (c *StatusCache) Put(referenceNumber string, status *EnvelopeStatus) {
	if c.rdb == nil || status == nil {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	// Best effort: a failed cache write just means the next poll hits
	// the provider again.
	c.rdb.Set(context.Background(), c.key(referenceNumber), raw, c.ttl)
}

// Invalidate drops the cached status, used after a terminal transition
// so later reads reflect the stored state immediately.
func (c *StatusCache) Invalidate(referenceNumber string) {
	if c.rdb == nil {
		return
	}
	c.rdb.Del(context.Background(), c.key(referenceNumber))
}
