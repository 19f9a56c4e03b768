// README: Quote model and the shared provider capability.
package providers

import (
	"context"
	"strings"
	"time"

	"smartride/internal/types"
)

// Quote is one provider's offer for one service tier. Quotes are ephemeral:
// they live for a single decision cycle and are never persisted as-is.
type Quote struct {
	Provider    string      `json:"provider"`
	ServiceTier string      `json:"service_tier"`
	Price       types.Money `json:"price"`
	ETAMinutes  int         `json:"eta_minutes"`
	Surge       float64     `json:"surge_multiplier"`
	FetchedAt   time.Time   `json:"fetched_at"`

	// ArrivalSeq is the fetch-completion order stamped by the gateway at
	// arrival. It is the final tie-breaker, making rankings order-stable.
	ArrivalSeq int `json:"-"`
}

// EffectivePrice folds the surge multiplier into the fare. Surge is a price
// phenomenon, so scoring only ever sees the effective price.
func (q Quote) EffectivePrice() types.Money {
	if q.Surge <= 1.0 {
		return q.Price
	}
	return q.Price.Scale(q.Surge)
}

// Shared reports whether the tier is a pooled/shared product.
func (q Quote) Shared() bool {
	tier := strings.ToLower(q.ServiceTier)
	return strings.Contains(tier, "pool") || strings.Contains(tier, "shared")
}

// Request describes one trip to quote.
type Request struct {
	Origin      string
	Destination string
	When        time.Time
	AvoidShared bool
}

// Provider is the single capability a ride-hailing integration implements.
// New providers are added by implementing this, not by subclassing anything.
type Provider interface {
	Name() string
	FetchQuotes(ctx context.Context, req Request) ([]Quote, error)
}
