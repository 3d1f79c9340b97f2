package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/studyloop/reviewsync/internal/platform/logger"
	"github.com/studyloop/reviewsync/internal/utils"
)

// EventLocker serializes same-event invocations. The reconcile pipeline is
// delete-then-recreate; without the lock two overlapping invocations for one
// event id can interleave their deletes and creates (accepted best-effort
// mode when Redis is not configured).
type EventLocker interface {
	WithLock(ctx context.Context, userID, eventID string, fn func() error) error
	Close() error
}

type eventLocker struct {
	log     *logger.Logger
	rdb     *goredis.Client
	ttl     time.Duration
	maxWait time.Duration
}

var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0
`)

func NewEventLocker(log *logger.Logger) (EventLocker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	serviceLog := log.With("service", "RedisEventLocker")

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := utils.GetEnvAsInt("EVENT_LOCK_TTL_SECONDS", 120, log)
	waitSeconds := utils.GetEnvAsInt("EVENT_LOCK_MAX_WAIT_SECONDS", 30, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &eventLocker{
		log:     serviceLog,
		rdb:     rdb,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		maxWait: time.Duration(waitSeconds) * time.Second,
	}, nil
}

func (l *eventLocker) WithLock(ctx context.Context, userID, eventID string, fn func() error) error {
	key := fmt.Sprintf("reviewsync:event_lock:%s:%s", userID, eventID)
	val := uuid.NewString()

	if acquired := l.acquire(ctx, key, val); acquired {
		defer l.release(key, val)
	} else {
		// Redis trouble or a holder that outlived maxWait: proceed
		// unlocked rather than dropping the notification.
		l.log.Warn("Proceeding without event lock", "event_id", eventID)
	}
	return fn()
}

func (l *eventLocker) acquire(ctx context.Context, key, val string) bool {
	deadline := time.Now().Add(l.maxWait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, val, l.ttl).Result()
		if err != nil {
			l.log.Warn("Event lock acquire failed", "error", err)
			return false
		}
		if ok {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (l *eventLocker) release(key, val string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.rdb, []string{key}, val).Err(); err != nil && err != goredis.Nil {
		l.log.Warn("Event lock release failed", "error", err)
	}
}

func (l *eventLocker) Close() error {
	return l.rdb.Close()
}
