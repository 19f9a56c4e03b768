// README: HTTP client for the external weather service.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"smartride/internal/types"
)

// Observation is the raw weather reading for a location and time.
type Observation struct {
	Condition  string `json:"condition"`
	RainChance int    `json:"rain_chance"`
	TempF      int    `json:"temp"`
}

// Client fetches an observation for a destination around a given time.
type Client interface {
	Fetch(ctx context.Context, loc types.Location, t time.Time) (Observation, error)
}

type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{baseURL: baseURL, client: &http.Client{}}
}

func (c *HTTPClient) Fetch(ctx context.Context, loc types.Location, t time.Time) (Observation, error) {
	u, err := url.Parse(c.baseURL + "/api/weather")
	if err != nil {
		return Observation{}, err
	}
	q := u.Query()
	q.Set("location", loc.Label)
	// Geocoded coordinates beat a free-text label for forecast accuracy; the
	// label still rides along for services that only key on names.
	if loc.Resolved {
		q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
		q.Set("lng", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	}
	q.Set("at", t.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Observation{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Observation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("weather service status %d", resp.StatusCode)
	}
	var obs Observation
	if err := json.NewDecoder(resp.Body).Decode(&obs); err != nil {
		return Observation{}, err
	}
	return obs, nil
}
