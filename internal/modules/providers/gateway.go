// README: Gateway fans out quote requests to all providers and joins partial results.
package providers

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"smartride/internal/observability"
	"smartride/internal/types"
)

// ErrNoAvailability means zero usable quotes came back: every provider
// failed, timed out, or was filtered out.
var ErrNoAvailability = errors.New("no ride availability")

const defaultCurrency = "USD"

func fromDollars(v float64) types.Money {
	return types.FromDollars(v, defaultCurrency)
}

type Gateway struct {
	providers []Provider
	timeout   time.Duration
	cache     *QuoteCache
	logger    *slog.Logger
}

// NewGateway builds a gateway over the configured providers. cache may be
// nil, in which case every request goes live.
func NewGateway(providers []Provider, timeout time.Duration, cache *QuoteCache, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{providers: providers, timeout: timeout, cache: cache, logger: logger}
}

// GetQuotes issues one independent request per provider and joins the
// results. A provider failure or timeout drops that provider's quotes only;
// sibling requests keep their own deadlines and are never cancelled because
// of it. Zero surviving quotes is the only error condition.
func (g *Gateway) GetQuotes(ctx context.Context, req Request) ([]Quote, error) {
	if cached, ok := g.cacheGet(ctx, req); ok {
		return cached, nil
	}

	type result struct {
		provider string
		quotes   []Quote
		err      error
	}
	results := make(chan result, len(g.providers))

	for _, p := range g.providers {
		go func(p Provider) {
			fetchCtx, cancel := context.WithTimeout(ctx, g.timeout)
			defer cancel()

			start := time.Now()
			quotes, err := p.FetchQuotes(fetchCtx, req)
			observability.QuoteFetchDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
			results <- result{provider: p.Name(), quotes: quotes, err: err}
		}(p)
	}

	var all []Quote
	seq := 0
	for range g.providers {
		r := <-results
		if r.err != nil {
			observability.QuoteFetchFailures.WithLabelValues(r.provider).Inc()
			g.logger.Warn("provider quote fetch failed", "provider", r.provider, "error", r.err)
			continue
		}
		// Arrival order is recorded per provider batch as results land; it is
		// the deterministic tie-break source for the engine.
		for _, q := range r.quotes {
			q.ArrivalSeq = seq
			seq++
			all = append(all, q)
		}
	}

	if req.AvoidShared {
		all = filterShared(all)
	}
	if len(all) == 0 {
		return nil, ErrNoAvailability
	}

	g.cacheSet(ctx, req, all)
	return all, nil
}

func filterShared(quotes []Quote) []Quote {
	kept := quotes[:0]
	for _, q := range quotes {
		if !q.Shared() {
			kept = append(kept, q)
		}
	}
	return kept
}

func (g *Gateway) cacheGet(ctx context.Context, req Request) ([]Quote, bool) {
	if g.cache == nil {
		return nil, false
	}
	quotes, ok := g.cache.Get(ctx, req)
	if !ok {
		return nil, false
	}
	if req.AvoidShared {
		quotes = filterShared(quotes)
		if len(quotes) == 0 {
			return nil, false
		}
	}
	// Cached batches keep their original arrival stamps; re-sort to make the
	// invariant explicit for the engine.
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].ArrivalSeq < quotes[j].ArrivalSeq })
	return quotes, true
}

func (g *Gateway) cacheSet(ctx context.Context, req Request, quotes []Quote) {
	if g.cache == nil || req.AvoidShared {
		return
	}
	g.cache.Set(ctx, req, quotes)
}
