// README: Context enricher; fetches weather with soft-fail and redis caching.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"smartride/internal/observability"
	"smartride/internal/types"
)

// rainThreshold is the rain chance above which conditions count as adverse
// for scoring.
const rainThreshold = 30

type Service struct {
	client  Client
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// NewService builds the enricher. rdb may be nil to disable caching.
func NewService(client Client, rdb *redis.Client, ttl, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, rdb: rdb, ttl: ttl, timeout: timeout, logger: logger}
}

// GetContext returns the weather context for a destination and time. It never
// fails: any error or timeout degrades to a neutral context flagged as such,
// so the decision proceeds without weather input rather than blocking.
func (s *Service) GetContext(ctx context.Context, dest types.Location, t time.Time) Context {
	if cached, ok := s.cacheGet(ctx, dest.Label, t); ok {
		return cached
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	obs, err := s.client.Fetch(fetchCtx, dest, t)
	if err != nil {
		observability.WeatherDegradedTotal.Inc()
		s.logger.Warn("weather lookup degraded to neutral", "destination", dest.Label, "error", err)
		return Neutral()
	}

	wctx := contextFromObservation(obs)
	s.cacheSet(ctx, dest.Label, t, wctx)
	return wctx
}

// contextFromObservation maps a raw reading onto the scoring context. The
// adjustment scales with rain chance once it crosses the adverse threshold.
func contextFromObservation(obs Observation) Context {
	cond := mapCondition(obs.Condition)
	adj := 0.0
	if obs.RainChance > rainThreshold {
		adj = float64(obs.RainChance) / 100
		if cond == ConditionClear {
			cond = ConditionRain
		}
	}
	return Context{Condition: cond, ScoreAdjustment: adj}
}

func mapCondition(raw string) Condition {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "thunder"), strings.Contains(lower, "storm"):
		return ConditionStorm
	case strings.Contains(lower, "snow"):
		return ConditionSnow
	case strings.Contains(lower, "rain"), strings.Contains(lower, "drizzle"):
		return ConditionRain
	case strings.Contains(lower, "clear"), strings.Contains(lower, "cloud"), strings.Contains(lower, "sun"):
		return ConditionClear
	default:
		return ConditionOther
	}
}

// cacheKey buckets by destination and hour; weather does not shift faster
// than that for ride decisions.
func cacheKey(destination string, t time.Time) string {
	return fmt.Sprintf("weather:%s:%s", destination, t.Format("2006010215"))
}

func (s *Service) cacheGet(ctx context.Context, destination string, t time.Time) (Context, bool) {
	if s.rdb == nil {
		return Context{}, false
	}
	raw, err := s.rdb.Get(ctx, cacheKey(destination, t)).Bytes()
	if err != nil {
		return Context{}, false
	}
	var wctx Context
	if err := json.Unmarshal(raw, &wctx); err != nil {
		return Context{}, false
	}
	return wctx, true
}

func (s *Service) cacheSet(ctx context.Context, destination string, t time.Time, wctx Context) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(wctx)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey(destination, t), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("weather cache write failed", "error", err)
	}
}
