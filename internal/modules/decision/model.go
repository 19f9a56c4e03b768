// README: ScoredOffer model and scoring configuration.
package decision

import (
	"smartride/internal/config"
	"smartride/internal/modules/providers"
)

// Weights is the (price, eta) weight vector applied to normalized values.
type Weights struct {
	Price float64
	ETA   float64
}

// ScoredOffer is a Quote annotated with its weighted score and the rationale
// explaining it. Lower scores rank better. Derived per cycle, never persisted;
// the winner's Quote becomes the frozen basis of a Ride.
type ScoredOffer struct {
	Quote     providers.Quote `json:"quote"`
	Score     float64         `json:"score"`
	Rationale []string        `json:"rationale"`
}

// Outcome is the full ordered ranking for one decision cycle. Winner is
// always Ranking[0].
type Outcome struct {
	Winner  ScoredOffer   `json:"winner"`
	Ranking []ScoredOffer `json:"ranking"`
}

// Config carries the tunable scoring defaults. The balanced weights and the
// adverse-weather penalty are deliberate defaults, not fixed law.
type Config struct {
	DefaultWeights Weights
	AdversePenalty float64
}

func ConfigFrom(c config.DecisionConfig) Config {
	return Config{
		DefaultWeights: Weights{Price: c.PriceWeight, ETA: c.ETAWeight},
		AdversePenalty: c.AdversePenalty,
	}
}

func DefaultConfig() Config {
	return Config{
		DefaultWeights: Weights{Price: 0.6, ETA: 0.4},
		AdversePenalty: 0.25,
	}
}
