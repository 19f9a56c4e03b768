// README: Short-TTL redis cache for quote batches, keyed by route.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuoteCache keeps recent quote batches so a compare immediately followed by
// a book sees the same candidate set. Redis failures are soft: a miss is
// returned and the gateway fetches live.
type QuoteCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// cachedQuote carries the arrival stamp that Quote deliberately keeps out of
// its public JSON shape.
type cachedQuote struct {
	Quote
	ArrivalSeq int `json:"arrival_seq"`
}

func NewQuoteCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *QuoteCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteCache{rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(req Request) string {
	return fmt.Sprintf("quotes:%s->%s", req.Origin, req.Destination)
}

func (c *QuoteCache) Get(ctx context.Context, req Request) ([]Quote, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(req)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("quote cache read failed", "error", err)
		}
		return nil, false
	}
	var cached []cachedQuote
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	quotes := make([]Quote, len(cached))
	for i, cq := range cached {
		quotes[i] = cq.Quote
		quotes[i].ArrivalSeq = cq.ArrivalSeq
	}
	return quotes, true
}

func (c *QuoteCache) Set(ctx context.Context, req Request, quotes []Quote) {
	cached := make([]cachedQuote, len(quotes))
	for i, q := range quotes {
		cached[i] = cachedQuote{Quote: q, ArrivalSeq: q.ArrivalSeq}
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(req), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("quote cache write failed", "error", err)
	}
}
