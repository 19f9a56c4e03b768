// README: HTTP adapter normalizing a provider's REST quote API into Quotes.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider adapts one provider's quote endpoint
// (GET <base>/rides?from=&to=) into the common Quote shape.
type HTTPProvider struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(name, baseURL string) *HTTPProvider {
	return &HTTPProvider{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (p *HTTPProvider) Name() string { return p.name }

// quoteResponse mirrors the provider wire format. Prices arrive as floating
// dollars with the surge multiplier already folded in.
type quoteResponse struct {
	Service string `json:"service"`
	Rides   []struct {
		Type  string  `json:"type"`
		Price float64 `json:"price"`
		ETA   int     `json:"eta"`
		Surge float64 `json:"surge_multiplier"`
	} `json:"rides"`
}

func (p *HTTPProvider) FetchQuotes(ctx context.Context, req Request) ([]Quote, error) {
	u, err := url.Parse(p.baseURL + "/rides")
	if err != nil {
		return nil, fmt.Errorf("%s: bad base url: %w", p.name, err)
	}
	q := u.Query()
	q.Set("from", req.Origin)
	q.Set("to", req.Destination)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", p.name, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", p.name, err)
	}

	now := time.Now()
	quotes := make([]Quote, 0, len(body.Rides))
	for _, r := range body.Rides {
		surge := r.Surge
		if surge < 1.0 {
			surge = 1.0
		}
		price := r.Price
		// The wire price includes surge; Quote.Price carries the base fare so
		// EffectivePrice does not double-count the multiplier.
		if surge > 1.0 {
			price = price / surge
		}
		quotes = append(quotes, Quote{
			Provider:    p.name,
			ServiceTier: r.Type,
			Price:       fromDollars(price),
			ETAMinutes:  r.ETA,
			Surge:       surge,
			FetchedAt:   now,
		})
	}
	return quotes, nil
}
