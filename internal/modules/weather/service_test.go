// README: Context enricher tests (soft-fail, condition mapping).
package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartride/internal/types"
)

type fakeClient struct {
	obs Observation
	err error
}

func (f *fakeClient) Fetch(ctx context.Context, loc types.Location, t time.Time) (Observation, error) {
	return f.obs, f.err
}

func testTime() time.Time {
	return time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
}

func office() types.Location {
	return types.Location{Label: "Office"}
}

func TestGetContextNeverFailsOnClientError(t *testing.T) {
	svc := NewService(&fakeClient{err: errors.New("weather api down")}, nil, time.Minute, time.Second, nil)
	wctx := svc.GetContext(context.Background(), office(), testTime())
	if !wctx.Degraded {
		t.Error("expected degraded flag on client failure")
	}
	if wctx.Condition != ConditionClear || wctx.ScoreAdjustment != 0 {
		t.Errorf("expected neutral context, got %+v", wctx)
	}
}

func TestGetContextHeavyRain(t *testing.T) {
	svc := NewService(&fakeClient{obs: Observation{Condition: "Heavy Rain", RainChance: 85, TempF: 65}}, nil, time.Minute, time.Second, nil)
	wctx := svc.GetContext(context.Background(), office(), testTime())
	if wctx.Degraded {
		t.Error("unexpected degraded flag")
	}
	if wctx.Condition != ConditionRain {
		t.Errorf("condition = %s, want rain", wctx.Condition)
	}
	if wctx.ScoreAdjustment != 0.85 {
		t.Errorf("adjustment = %v, want 0.85", wctx.ScoreAdjustment)
	}
	if !wctx.Adverse() {
		t.Error("rain should be adverse")
	}
}

func TestGetContextLowRainChanceStaysNeutral(t *testing.T) {
	svc := NewService(&fakeClient{obs: Observation{Condition: "Partly Cloudy", RainChance: 15, TempF: 75}}, nil, time.Minute, time.Second, nil)
	wctx := svc.GetContext(context.Background(), office(), testTime())
	if wctx.Condition != ConditionClear || wctx.ScoreAdjustment != 0 {
		t.Errorf("expected clear/0, got %+v", wctx)
	}
	if wctx.Adverse() {
		t.Error("clear must not be adverse")
	}
}

func TestMapCondition(t *testing.T) {
	cases := []struct {
		raw  string
		want Condition
	}{
		{"Clear", ConditionClear},
		{"Partly Cloudy", ConditionClear},
		{"Light Rain", ConditionRain},
		{"Heavy Rain", ConditionRain},
		{"Thunderstorm", ConditionStorm},
		{"Snow Showers", ConditionSnow},
		{"Haboob", ConditionOther},
	}
	for _, tc := range cases {
		if got := mapCondition(tc.raw); got != tc.want {
			t.Errorf("mapCondition(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestHTTPClientSendsCoordinates(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"condition":"Clear","rain_chance":5,"temp":72}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	loc := types.Location{Label: "Office", Lat: 37.7925, Lng: -122.3971, Resolved: true}
	if _, err := c.Fetch(context.Background(), loc, testTime()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := gotQuery["location"]; len(got) != 1 || got[0] != "Office" {
		t.Errorf("location param = %v", got)
	}
	if got := gotQuery["lat"]; len(got) != 1 || got[0] != "37.7925" {
		t.Errorf("lat param = %v, want 37.7925", got)
	}
	if got := gotQuery["lng"]; len(got) != 1 || got[0] != "-122.3971" {
		t.Errorf("lng param = %v, want -122.3971", got)
	}
}

func TestHTTPClientOmitsCoordinatesWhenUnresolved(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"condition":"Clear","rain_chance":5,"temp":72}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.Fetch(context.Background(), office(), testTime()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, ok := gotQuery["lat"]; ok {
		t.Error("lat param sent for unresolved location")
	}
	if _, ok := gotQuery["lng"]; ok {
		t.Error("lng param sent for unresolved location")
	}
}

func TestNeutralIsDegradedClear(t *testing.T) {
	n := Neutral()
	if !n.Degraded || n.Condition != ConditionClear || n.ScoreAdjustment != 0 {
		t.Errorf("neutral context wrong: %+v", n)
	}
}
