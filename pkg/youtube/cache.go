package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/papercomputeco/tubestar/pkg/logger"
)

const channelKeyPrefix = "tubestar:channel:"

// DefaultCacheTTL is how long cached channel metadata stays fresh.
const DefaultCacheTTL = 24 * time.Hour

// CachedSource serves channel metadata from Redis before asking the
// platform. Videos and transcripts always go to the wrapped Source because
// their statistics must be current. A nil Redis client disables caching.
type CachedSource struct {
	Source

	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ Source = (*CachedSource)(nil)

// NewCachedSource wraps src with a Redis cache for channel metadata.
func NewCachedSource(src Source, rdb *redis.Client, ttl time.Duration, l *slog.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if l == nil {
		l = logger.Nop()
	}
	return &CachedSource{Source: src, rdb: rdb, ttl: ttl, logger: l}
}

// NewRedisClient connects to the Redis server at redisURL
// (e.g. "redis://localhost:6379/0") and verifies it answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rdb, nil
}

// Channel returns cached channel metadata when present, otherwise fetches
// and caches it. Cache failures are logged and never fail the lookup.
func (c *CachedSource) Channel(ctx context.Context, channelID string) (*ChannelMetadata, error) {
	if c.rdb == nil {
		return c.Source.Channel(ctx, channelID)
	}

	key := channelKeyPrefix + channelID
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ch ChannelMetadata
		if jerr := json.Unmarshal(raw, &ch); jerr == nil {
			c.logger.Debug("channel cache hit", "channel_id", channelID)
			return &ch, nil
		}
		c.logger.Warn("discarding corrupt cached channel", "channel_id", channelID)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("channel cache read failed", "channel_id", channelID, "error", err)
	}

	ch, err := c.Source.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if data, jerr := json.Marshal(ch); jerr == nil {
		if serr := c.rdb.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.logger.Warn("channel cache write failed", "channel_id", channelID, "error", serr)
		}
	}
	return ch, nil
}
