package observability

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthChecker reports liveness of the service's collaborators
type HealthChecker struct {
	db    *sql.DB
	redis *redis.Client
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *sql.DB, redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{
		db:    db,
		redis: redisClient,
	}
}

// RedisAlive reports whether the redis collaborator answers a ping
func (h *HealthChecker) RedisAlive(ctx context.Context) bool {
	if h.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.redis.Ping(ctx).Err() == nil
}

// DBAlive reports whether the document store answers a ping
func (h *HealthChecker) DBAlive(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.PingContext(ctx) == nil
}
