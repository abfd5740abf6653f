package cache

import (
	"context"
	"log"
	"time"
)

const recoKeyPrefix = "perchfinder:water-reco:"

// KV is the small key-value surface the recommendation cache needs, so tests
// can swap in a map-backed fake.
type KV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// CachedRecommendation is a stored AI answer together with the stats
// signature it was generated from. A cache hit only counts when the
// signature still matches the freshly computed one.
type CachedRecommendation struct {
	Signature      string    `json:"signature"`
	Recommendation string    `json:"recommendation"`
	SavedAt        time.Time `json:"saved_at"`
}

// RecoCache stores one AI recommendation per water, keyed by water id.
type RecoCache struct {
	kv  KV
	ttl time.Duration
}

// NewRecoCache creates a recommendation cache. A nil kv disables caching;
// every read misses and writes are dropped.
func NewRecoCache(kv KV, ttl time.Duration) *RecoCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RecoCache{kv: kv, ttl: ttl}
}

// Read returns the cached recommendation for a water, or nil on a miss.
// Corrupt entries read as misses.
func (c *RecoCache) Read(ctx context.Context, waterID string) *CachedRecommendation {
	if c.kv == nil {
		return nil
	}
	var cached CachedRecommendation
	if err := c.kv.Get(ctx, recoKeyPrefix+waterID, &cached); err != nil {
		return nil
	}
	if cached.Recommendation == "" || cached.Signature == "" {
		return nil
	}
	return &cached
}

// Write stores a fresh recommendation for a water.
func (c *RecoCache) Write(ctx context.Context, waterID, signature, recommendation string) {
	if c.kv == nil {
		return
	}
	entry := CachedRecommendation{
		Signature:      signature,
		Recommendation: recommendation,
		SavedAt:        time.Now(),
	}
	if err := c.kv.Set(ctx, recoKeyPrefix+waterID, entry, c.ttl); err != nil {
		log.Printf("⚠️  Failed to cache recommendation for water %s: %v", waterID, err)
	}
}

// Invalidate drops the cached recommendation for a water.
func (c *RecoCache) Invalidate(ctx context.Context, waterID string) {
	if c.kv == nil {
		return
	}
	if err := c.kv.Delete(ctx, recoKeyPrefix+waterID); err != nil {
		log.Printf("⚠️  Failed to invalidate recommendation cache for water %s: %v", waterID, err)
	}
}
