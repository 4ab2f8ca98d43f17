package middlewares

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// WindowStore counts hits per key inside a fixed window and reports how
// long until the window resets.
type WindowStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, reset time.Duration, err error)
}

type RateLimiter struct {
	store  WindowStore
	window time.Duration
	limit  int
}

func NewRateLimiter(store WindowStore, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// Middleware returns a gin.HandlerFunc that enforces the limit for a derived key

func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, reset, err := rl.store.Incr(c.Request.Context(), key, rl.window)

		if err != nil {
			// a broken limiter backend must not take the API down
			c.Next()
			return
		}

		if count > rl.limit {
			retryAfter := int(reset.Seconds())

			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests from this IP, please try again later",
			})

			return
		}

		c.Next()
	}
}

// MemoryWindowStore is the in-process fallback used when Redis is not
// configured. Fine for a single instance, not shared across replicas.
type MemoryWindowStore struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{
		clients: make(map[string]*clientBucket),
	}
}

func (s *MemoryWindowStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.clients[key]

	if !ok || now.After(b.windowEnd) {
		s.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(window),
		}

		return 1, window, nil
	}

	b.count++

	return b.count, time.Until(b.windowEnd), nil
}

// RedisWindowStore shares one fixed window across instances via INCR with
// an expiry set on the first hit of each window.
type RedisWindowStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisWindowStore(rdb *redis.Client, prefix string) *RedisWindowStore {
	return &RedisWindowStore{rdb: rdb, prefix: prefix}
}

func (s *RedisWindowStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	k := s.prefix + ":" + key

	count, err := s.rdb.Incr(ctx, k).Result()

	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		err = s.rdb.Expire(ctx, k, window).Err()

		if err != nil {
			return 0, 0, err
		}

		return int(count), window, nil
	}

	ttl, err := s.rdb.TTL(ctx, k).Result()

	if err != nil {
		return 0, 0, err
	}

	return int(count), ttl, nil
}

// helper functions

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// For authenticated endpoints: rate limit by userID if available

func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)

	if ok && id != "" {
		return "user:" + id
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	// Normalize away a port if the address carries one

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
