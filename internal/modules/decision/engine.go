// README: Decision engine; deterministic scoring, ranking, and rationale.
package decision

import (
	"fmt"
	"math"
	"sort"

	"smartride/internal/modules/intent"
	"smartride/internal/modules/providers"
	"smartride/internal/modules/weather"
)

// scoreEpsilon bounds float noise when deciding whether two scores tie.
const scoreEpsilon = 1e-9

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Decide scores every quote against the intent's constraint and the weather
// context and returns the full ordered ranking. The math here is owned by
// the engine and fully reproducible; the reasoning service never sees it.
func (e *Engine) Decide(bi *intent.BookingIntent, quotes []providers.Quote, wctx weather.Context) (*Outcome, error) {
	if len(quotes) == 0 {
		return nil, providers.ErrNoAvailability
	}

	weights := e.weightsFor(bi.Constraint)

	// Normalize effective price (surge folded in) and ETA against the
	// candidate set's min-max range: scoring compares relative standing,
	// not absolute units.
	minP, maxP := math.MaxFloat64, -math.MaxFloat64
	minE, maxE := math.MaxFloat64, -math.MaxFloat64
	for _, q := range quotes {
		p := q.EffectivePrice().Dollars()
		eta := float64(q.ETAMinutes)
		minP, maxP = math.Min(minP, p), math.Max(maxP, p)
		minE, maxE = math.Min(minE, eta), math.Max(maxE, eta)
	}

	penalty := 0.0
	if wctx.Adverse() {
		penalty = e.cfg.AdversePenalty
	}

	ranking := make([]ScoredOffer, len(quotes))
	for i, q := range quotes {
		np := normalize(q.EffectivePrice().Dollars(), minP, maxP)
		ne := normalize(float64(q.ETAMinutes), minE, maxE)
		// The weather term scales with normalized ETA: adverse conditions
		// penalize slow pickups, so a ranking can tip toward a faster option.
		score := np*weights.Price + ne*weights.ETA + wctx.ScoreAdjustment*penalty*ne
		ranking[i] = ScoredOffer{
			Quote: q,
			Score: score,
			Rationale: []string{
				fmt.Sprintf("%s %s: %s effective, %d min ETA, score %.3f",
					q.Provider, q.ServiceTier, q.EffectivePrice(), q.ETAMinutes, score),
			},
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return rankLess(ranking[i], ranking[j])
	})

	ranking[0].Rationale = winnerRationale(ranking, bi.Constraint, weights, wctx)

	return &Outcome{Winner: ranking[0], Ranking: ranking}, nil
}

func (e *Engine) weightsFor(c intent.Constraint) Weights {
	switch c {
	case intent.ConstraintCheapest:
		return Weights{Price: 1, ETA: 0}
	case intent.ConstraintFastest:
		return Weights{Price: 0, ETA: 1}
	default:
		return e.cfg.DefaultWeights
	}
}

// rankLess orders offers best-first: lowest score, then the fixed tie-break
// chain price -> surge -> fetch arrival order.
func rankLess(a, b ScoredOffer) bool {
	if math.Abs(a.Score-b.Score) > scoreEpsilon {
		return a.Score < b.Score
	}
	if a.Quote.EffectivePrice().Amount != b.Quote.EffectivePrice().Amount {
		return a.Quote.EffectivePrice().Amount < b.Quote.EffectivePrice().Amount
	}
	if a.Quote.Surge != b.Quote.Surge {
		return a.Quote.Surge < b.Quote.Surge
	}
	return a.Quote.ArrivalSeq < b.Quote.ArrivalSeq
}

// winnerRationale builds the user-facing explanation for the top choice.
func winnerRationale(ranking []ScoredOffer, c intent.Constraint, w Weights, wctx weather.Context) []string {
	winner := ranking[0]
	lines := []string{}

	switch c {
	case intent.ConstraintCheapest:
		lines = append(lines, fmt.Sprintf("lowest price among %d options at %s",
			len(ranking), winner.Quote.EffectivePrice()))
	case intent.ConstraintFastest:
		lines = append(lines, fmt.Sprintf("fastest pickup among %d options at %d min",
			len(ranking), winner.Quote.ETAMinutes))
	default:
		lines = append(lines, fmt.Sprintf("best weighted value among %d options (price %.0f%%, eta %.0f%%)",
			len(ranking), w.Price*100, w.ETA*100))
	}

	lines = append(lines, fmt.Sprintf("%s %s: %s, %d min ETA, %.1fx surge",
		winner.Quote.Provider, winner.Quote.ServiceTier,
		winner.Quote.EffectivePrice(), winner.Quote.ETAMinutes, winner.Quote.Surge))

	switch {
	case wctx.Degraded:
		lines = append(lines, "weather lookup unavailable; assumed clear conditions")
	case wctx.Adverse():
		lines = append(lines, fmt.Sprintf("weather-adjusted for %s (adjustment %.2f)",
			wctx.Condition, wctx.ScoreAdjustment))
	}

	return lines
}

func normalize(v, min, max float64) float64 {
	if max-min < scoreEpsilon {
		return 0
	}
	return (v - min) / (max - min)
}
