// README: Decision engine tests (scoring, constraints, tie-breaks, rationale).
package decision

import (
	"errors"
	"strings"
	"testing"
	"time"

	"smartride/internal/modules/intent"
	"smartride/internal/modules/providers"
	"smartride/internal/modules/weather"
	"smartride/internal/types"
)

func quote(provider, tier string, priceDollars float64, etaMin int, surge float64, seq int) providers.Quote {
	return providers.Quote{
		Provider:    provider,
		ServiceTier: tier,
		Price:       types.FromDollars(priceDollars, "USD"),
		ETAMinutes:  etaMin,
		Surge:       surge,
		FetchedAt:   time.Unix(int64(1700000000+seq), 0),
		ArrivalSeq:  seq,
	}
}

func bookingIntent(c intent.Constraint) *intent.BookingIntent {
	return &intent.BookingIntent{
		Action:      intent.ActionBook,
		Destination: &types.Location{Label: "downtown"},
		Constraint:  c,
	}
}

// scenarioQuotes is the canonical comparison set: UberX $10/15min/1.0x,
// UberPool $6/20min/1.0x, Lyft $8/12min/1.2x.
func scenarioQuotes() []providers.Quote {
	return []providers.Quote{
		quote("uber", "UberX", 10, 15, 1.0, 0),
		quote("uber", "UberPool", 6, 20, 1.0, 1),
		quote("lyft", "Lyft", 8, 12, 1.2, 2),
	}
}

func clear() weather.Context {
	return weather.Context{Condition: weather.ConditionClear}
}

func TestDecideCheapestPicksLowestEffectivePrice(t *testing.T) {
	e := NewEngine(DefaultConfig())
	out, err := e.Decide(bookingIntent(intent.ConstraintCheapest), scenarioQuotes(), clear())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if got := out.Winner.Quote.ServiceTier; got != "UberPool" {
		t.Errorf("cheapest winner = %s, want UberPool", got)
	}
}

func TestDecideFastestIgnoresSurge(t *testing.T) {
	e := NewEngine(DefaultConfig())
	out, err := e.Decide(bookingIntent(intent.ConstraintFastest), scenarioQuotes(), clear())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	// Lyft carries 1.2x surge but only ETA weighs under fastest.
	if got := out.Winner.Quote.ServiceTier; got != "Lyft" {
		t.Errorf("fastest winner = %s, want Lyft", got)
	}
}

func TestDecideRankingFirstHasLowestScore(t *testing.T) {
	e := NewEngine(DefaultConfig())
	for _, c := range []intent.Constraint{
		intent.ConstraintCheapest,
		intent.ConstraintFastest,
		intent.ConstraintBestValue,
		intent.ConstraintNone,
	} {
		out, err := e.Decide(bookingIntent(c), scenarioQuotes(), clear())
		if err != nil {
			t.Fatalf("decide(%s): %v", c, err)
		}
		for i := 1; i < len(out.Ranking); i++ {
			if out.Ranking[i].Score < out.Ranking[0].Score {
				t.Errorf("constraint %s: ranking[%d] score %.4f beats winner %.4f",
					c, i, out.Ranking[i].Score, out.Ranking[0].Score)
			}
		}
		if out.Winner.Quote != out.Ranking[0].Quote {
			t.Errorf("constraint %s: winner is not ranking[0]", c)
		}
	}
}

func TestDecideEmptyQuotesFails(t *testing.T) {
	e := NewEngine(DefaultConfig())
	_, err := e.Decide(bookingIntent(intent.ConstraintNone), nil, clear())
	if !errors.Is(err, providers.ErrNoAvailability) {
		t.Fatalf("err = %v, want ErrNoAvailability", err)
	}
}

func TestDecideTieBreakSurgeThenArrival(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// All effective prices and ETAs equal: normalized scores all tie.
	// uber quotes $10 at 1.0x; lyft quotes $8 base at 1.25x = $10 effective.
	quotes := []providers.Quote{
		quote("lyft", "Lyft", 8, 10, 1.25, 0),
		quote("uber", "UberX", 10, 10, 1.0, 1),
		quote("uber", "UberXL", 10, 10, 1.0, 2),
	}

	out, err := e.Decide(bookingIntent(intent.ConstraintNone), quotes, clear())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	// Lower surge wins the tie despite arriving first being lyft's claim;
	// among the two 1.0x quotes, earlier arrival wins.
	want := []string{"UberX", "UberXL", "Lyft"}
	for i, tier := range want {
		if got := out.Ranking[i].Quote.ServiceTier; got != tier {
			t.Errorf("ranking[%d] = %s, want %s", i, got, tier)
		}
	}
}

func TestDecideDeterministicAcrossRuns(t *testing.T) {
	e := NewEngine(DefaultConfig())
	first, err := e.Decide(bookingIntent(intent.ConstraintBestValue), scenarioQuotes(), clear())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Decide(bookingIntent(intent.ConstraintBestValue), scenarioQuotes(), clear())
		if err != nil {
			t.Fatalf("decide: %v", err)
		}
		for j := range first.Ranking {
			if first.Ranking[j].Quote != again.Ranking[j].Quote {
				t.Fatalf("run %d: ranking diverged at %d", i, j)
			}
		}
	}
}

// TestDecideAdverseWeatherFavorsFasterPickup pins the weather term's effect
// on ordering: the cheap slow option wins under clear skies, the fast one
// under a storm.
func TestDecideAdverseWeatherFavorsFasterPickup(t *testing.T) {
	e := NewEngine(DefaultConfig())
	quotes := []providers.Quote{
		quote("uber", "UberX", 8, 20, 1.0, 0),
		quote("lyft", "Lyft", 10, 10, 1.0, 1),
	}

	sunny, err := e.Decide(bookingIntent(intent.ConstraintNone), quotes, clear())
	if err != nil {
		t.Fatalf("decide clear: %v", err)
	}
	if got := sunny.Winner.Quote.ServiceTier; got != "UberX" {
		t.Errorf("clear winner = %s, want the cheaper UberX", got)
	}

	storm := weather.Context{Condition: weather.ConditionStorm, ScoreAdjustment: 0.95}
	stormy, err := e.Decide(bookingIntent(intent.ConstraintNone), quotes, storm)
	if err != nil {
		t.Fatalf("decide storm: %v", err)
	}
	if got := stormy.Winner.Quote.ServiceTier; got != "Lyft" {
		t.Errorf("storm winner = %s, want the faster Lyft", got)
	}
}

func TestDecideRationaleMentionsWeather(t *testing.T) {
	e := NewEngine(DefaultConfig())
	wctx := weather.Context{Condition: weather.ConditionRain, ScoreAdjustment: 0.85}
	out, err := e.Decide(bookingIntent(intent.ConstraintCheapest), scenarioQuotes(), wctx)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if !rationaleContains(out.Winner.Rationale, "weather-adjusted") {
		t.Errorf("rationale missing weather note: %v", out.Winner.Rationale)
	}
	if !rationaleContains(out.Winner.Rationale, "lowest price") {
		t.Errorf("rationale missing constraint note: %v", out.Winner.Rationale)
	}
}

func TestDecideRationaleFlagsDegradedWeather(t *testing.T) {
	e := NewEngine(DefaultConfig())
	out, err := e.Decide(bookingIntent(intent.ConstraintCheapest), scenarioQuotes(), weather.Neutral())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if !rationaleContains(out.Winner.Rationale, "weather lookup unavailable") {
		t.Errorf("rationale missing degraded note: %v", out.Winner.Rationale)
	}
}

func TestDecideSingleQuoteWins(t *testing.T) {
	e := NewEngine(DefaultConfig())
	quotes := []providers.Quote{quote("uber", "UberX", 12, 9, 1.0, 0)}
	out, err := e.Decide(bookingIntent(intent.ConstraintNone), quotes, clear())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if out.Winner.Quote.ServiceTier != "UberX" || len(out.Ranking) != 1 {
		t.Errorf("single-quote outcome wrong: %+v", out)
	}
}

func rationaleContains(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
