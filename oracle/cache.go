package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"lg/coach-energy-api/logger"
)

const cacheKeyPrefix = "oracle:v1:"

// cachedOracle serves repeated identical prompts from Redis. Answers are
// written through Store once the caller has validated them; Redis failures
// fall through to the inner oracle.
type cachedOracle struct {
	inner Oracle
	rdb   goredis.UniversalClient
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedOracle wraps inner with a Redis response cache. A nil client
// returns inner unchanged.
func NewCachedOracle(inner Oracle, rdb goredis.UniversalClient, ttl time.Duration, log *logger.Logger) Oracle {
	if rdb == nil {
		return inner
	}
	if log == nil {
		log = logger.Nop()
	}
	return &cachedOracle{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With("component", "oracle_cache"),
	}
}

func (c *cachedOracle) Estimate(ctx context.Context, req Request) (*Response, error) {
	key := cacheKey(req)

	text, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return &Response{Text: text, Cached: true}, nil
	case errors.Is(err, goredis.Nil):
	default:
		c.log.Warn("oracle cache read failed", "task", req.Task, "error", err)
	}

	return c.inner.Estimate(ctx, req)
}

func (c *cachedOracle) Store(ctx context.Context, req Request, resp *Response) {
	if err := c.rdb.Set(ctx, cacheKey(req), resp.Text, c.ttl).Err(); err != nil {
		c.log.Warn("oracle cache write failed", "task", req.Task, "error", err)
	}
}

func (c *cachedOracle) Evict(ctx context.Context, req Request) {
	if err := c.rdb.Del(ctx, cacheKey(req)).Err(); err != nil {
		c.log.Warn("oracle cache evict failed", "task", req.Task, "error", err)
		return
	}
	c.log.Warn("evicted cached oracle answer that failed validation", "task", req.Task)
}

func cacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Task))
	h.Write([]byte{0})
	h.Write([]byte(req.SystemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(req.UserPrompt))
	return cacheKeyPrefix + string(req.Task) + ":" + hex.EncodeToString(h.Sum(nil))
}
