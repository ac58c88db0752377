// utils/ratelimit.go
package utils

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const rateLimitShards = 16

// RateLimiter is a sharded token-bucket limiter keyed by client IP. Buckets
// idle past the TTL are evicted on each shard's next write, and a shard never
// holds more than maxKeys buckets, so the map stays bounded however many
// distinct clients show up.
type RateLimiter struct {
	rate    float64 // tokens per second
	burst   float64
	ttl     time.Duration
	maxKeys int
	shards  [rateLimitShards]*rateLimitShard
}

type rateLimitShard struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

type tokenBucket struct {
	tokens float64
	last   time.Time
}

func NewRateLimiter(perMinute, burst int, ttl time.Duration) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 20
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	l := &RateLimiter{
		rate:    float64(perMinute) / 60.0,
		burst:   float64(burst),
		ttl:     ttl,
		maxKeys: 4096,
	}
	for i := range l.shards {
		l.shards[i] = &rateLimitShard{buckets: make(map[string]*tokenBucket)}
	}
	return l
}

// Allow reports whether a request for the key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	return l.allowAt(key, time.Now())
}

func (l *RateLimiter) allowAt(key string, now time.Time) bool {
	shard := l.shards[shardIndex(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.evict(now, l.ttl, l.maxKeys/rateLimitShards)

	b, ok := shard.buckets[key]
	if !ok {
		shard.buckets[key] = &tokenBucket{tokens: l.burst - 1, last: now}
		return true
	}
	elapsed := now.Sub(b.last).Seconds()
	b.tokens = minFloat(l.burst, b.tokens+elapsed*l.rate)
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens -= 1
	return true
}

// evict drops buckets idle past the TTL; if the shard is still over its cap
// it drops the stalest buckets until it fits.
func (s *rateLimitShard) evict(now time.Time, ttl time.Duration, limit int) {
	for key, b := range s.buckets {
		if now.Sub(b.last) > ttl {
			delete(s.buckets, key)
		}
	}
	for limit > 0 && len(s.buckets) >= limit {
		var oldestKey string
		var oldest time.Time
		for key, b := range s.buckets {
			if oldestKey == "" || b.last.Before(oldest) {
				oldestKey = key
				oldest = b.last
			}
		}
		delete(s.buckets, oldestKey)
	}
}

// RateLimitMiddleware rejects requests over the per-IP budget with 429.
func RateLimitMiddleware(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(429, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

func shardIndex(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % rateLimitShards)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
