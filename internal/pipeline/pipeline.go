// README: Decision-cycle orchestrator; intent -> quotes+weather -> scoring -> store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"smartride/internal/modules/decision"
	"smartride/internal/modules/intent"
	"smartride/internal/modules/providers"
	"smartride/internal/modules/rides"
	"smartride/internal/modules/weather"
	"smartride/internal/observability"
	"smartride/internal/types"
)

// State tracks one decision cycle for observability.
type State string

const (
	StateNew     State = "new"
	StateQuoting State = "quoting"
	StateScored  State = "scored"
	StateBooked  State = "booked"
	StateFailed  State = "failed"
)

// cancelRefundRate is the informational refund share reported on cancel.
// Payments are out of scope; nothing is charged or refunded here.
const cancelRefundRate = 0.9

// Result is what one engine operation produced, assembled for the transport
// layer.
type Result struct {
	State              State                  `json:"state"`
	NeedsClarification bool                   `json:"needs_clarification,omitempty"`
	Question           string                 `json:"question,omitempty"`
	Ranking            []decision.ScoredOffer `json:"ranking,omitempty"`
	Rationale          []string               `json:"rationale,omitempty"`
	Ride               *rides.Ride            `json:"ride,omitempty"`
	Rides              []*rides.Ride          `json:"rides,omitempty"`
	Refund             *types.Money           `json:"refund,omitempty"`
	WeatherDegraded    bool                   `json:"weather_degraded,omitempty"`
}

// ErrActionMismatch means an utterance handed to a booking entry point
// resolved to a non-booking action.
var ErrActionMismatch = errors.New("utterance does not describe a booking")

// Quoter is the gateway capability the pipeline needs.
type Quoter interface {
	GetQuotes(ctx context.Context, req providers.Request) ([]providers.Quote, error)
}

// Enricher is the weather capability the pipeline needs.
type Enricher interface {
	GetContext(ctx context.Context, dest types.Location, t time.Time) weather.Context
}

// Resolver geocodes a place label; resolution failure returns the label
// unresolved.
type Resolver interface {
	Resolve(ctx context.Context, label string) types.Location
}

type Pipeline struct {
	intents *intent.Service
	geo     Resolver
	quotes  Quoter
	weather Enricher
	engine  *decision.Engine
	rides   *rides.Service
	logger  *slog.Logger
}

func New(intents *intent.Service, resolver Resolver, quotes Quoter, enricher Enricher, engine *decision.Engine, rideSvc *rides.Service, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		intents: intents,
		geo:     resolver,
		quotes:  quotes,
		weather: enricher,
		engine:  engine,
		rides:   rideSvc,
		logger:  logger,
	}
}

// Chat accepts a raw utterance, parses it, and routes to the matching
// operation. A clarification outcome is a normal result, not an error.
func (p *Pipeline) Chat(ctx context.Context, utterance string) (*Result, error) {
	parsed, err := p.intents.Parse(ctx, utterance)
	if err != nil {
		return nil, err
	}
	if parsed.NeedsClarification {
		return &Result{State: StateNew, NeedsClarification: true, Question: parsed.Question}, nil
	}

	bi := parsed.Intent
	switch bi.Action {
	case intent.ActionBook:
		return p.Book(ctx, bi)
	case intent.ActionCompare:
		return p.Compare(ctx, bi)
	case intent.ActionList:
		return p.ListRides(ctx, rides.Filter{})
	case intent.ActionCancel:
		return p.CancelRide(ctx, bi.TargetRideID)
	case intent.ActionUpdate:
		if bi.RequestedTime == nil {
			return &Result{
				State:              StateNew,
				NeedsClarification: true,
				Question:           "What time should the ride move to?",
			}, nil
		}
		return p.UpdateRide(ctx, bi.TargetRideID, *bi.RequestedTime)
	}
	return nil, intent.ErrIntentParse
}

// BookUtterance parses an utterance for the book endpoint, which only admits
// booking-shaped requests: book runs the full cycle, compare is allowed as
// its read-only form, and anything else is rejected rather than executed.
// Free routing across all actions belongs to Chat alone.
func (p *Pipeline) BookUtterance(ctx context.Context, utterance string) (*Result, error) {
	parsed, err := p.intents.Parse(ctx, utterance)
	if err != nil {
		return nil, err
	}
	if parsed.NeedsClarification {
		return &Result{State: StateNew, NeedsClarification: true, Question: parsed.Question}, nil
	}

	switch parsed.Intent.Action {
	case intent.ActionBook:
		return p.Book(ctx, parsed.Intent)
	case intent.ActionCompare:
		return p.Compare(ctx, parsed.Intent)
	}
	return nil, fmt.Errorf("%w: utterance resolved to %q", ErrActionMismatch, parsed.Intent.Action)
}

// Book runs a full decision cycle and persists the winner.
func (p *Pipeline) Book(ctx context.Context, bi *intent.BookingIntent) (*Result, error) {
	outcome, wctx, err := p.score(ctx, bi)
	if err != nil {
		observability.DecisionCyclesTotal.WithLabelValues(string(StateFailed)).Inc()
		return nil, err
	}

	ride, err := p.rides.Create(ctx, outcome.Winner, bi)
	if err != nil {
		observability.DecisionCyclesTotal.WithLabelValues(string(StateFailed)).Inc()
		return nil, err
	}

	observability.DecisionCyclesTotal.WithLabelValues(string(StateBooked)).Inc()
	p.logger.Info("ride booked",
		"ride_id", ride.ID,
		"provider", ride.Provider,
		"tier", ride.ServiceTier,
		"price", ride.Price.String(),
	)
	return &Result{
		State:           StateBooked,
		Ranking:         outcome.Ranking,
		Rationale:       outcome.Winner.Rationale,
		Ride:            ride,
		WeatherDegraded: wctx.Degraded,
	}, nil
}

// Compare runs the decision cycle without persisting anything.
func (p *Pipeline) Compare(ctx context.Context, bi *intent.BookingIntent) (*Result, error) {
	outcome, wctx, err := p.score(ctx, bi)
	if err != nil {
		observability.DecisionCyclesTotal.WithLabelValues(string(StateFailed)).Inc()
		return nil, err
	}
	observability.DecisionCyclesTotal.WithLabelValues(string(StateScored)).Inc()
	return &Result{
		State:           StateScored,
		Ranking:         outcome.Ranking,
		Rationale:       outcome.Winner.Rationale,
		WeatherDegraded: wctx.Degraded,
	}, nil
}

// score gathers quotes and weather concurrently and runs the engine. The
// join below is the pipeline's only synchronization point: both fetches
// carry their own deadlines and neither cancels the other.
func (p *Pipeline) score(ctx context.Context, bi *intent.BookingIntent) (*decision.Outcome, weather.Context, error) {
	origin := "Current Location"
	if bi.Origin != nil {
		origin = bi.Origin.Label
	}

	when := time.Now()
	if bi.RequestedTime != nil {
		when = *bi.RequestedTime
	}

	// Geocoding is best-effort: a resolved destination gives the weather
	// lookup coordinates instead of a free-text label, an unresolved one
	// passes through as an opaque name. The intent itself stays untouched.
	dest := *bi.Destination
	if p.geo != nil && !dest.Resolved {
		if resolved := p.geo.Resolve(ctx, dest.Label); resolved.Resolved {
			dest = resolved
			p.logger.Debug("destination resolved", "label", dest.Label, "lat", dest.Lat, "lng", dest.Lng)
		}
	}

	quotesCh := make(chan []providers.Quote, 1)
	quotesErrCh := make(chan error, 1)
	weatherCh := make(chan weather.Context, 1)

	go func() {
		quotes, err := p.quotes.GetQuotes(ctx, providers.Request{
			Origin:      origin,
			Destination: dest.Label,
			When:        when,
			AvoidShared: bi.AvoidShared,
		})
		quotesCh <- quotes
		quotesErrCh <- err
	}()
	go func() {
		weatherCh <- p.weather.GetContext(ctx, dest, when)
	}()

	quotes := <-quotesCh
	err := <-quotesErrCh
	wctx := <-weatherCh

	if err != nil {
		return nil, wctx, err
	}

	outcome, err := p.engine.Decide(bi, quotes, wctx)
	if err != nil {
		return nil, wctx, err
	}
	return outcome, wctx, nil
}

func (p *Pipeline) ListRides(ctx context.Context, f rides.Filter) (*Result, error) {
	list, err := p.rides.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Result{State: StateScored, Rides: list}, nil
}

func (p *Pipeline) Status(ctx context.Context, id string) (*Result, error) {
	r, err := p.rides.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Result{State: StateScored, Ride: r}, nil
}

func (p *Pipeline) UpdateRide(ctx context.Context, id string, newTime time.Time) (*Result, error) {
	r, err := p.rides.UpdateTime(ctx, id, newTime)
	if err != nil {
		return nil, err
	}
	return &Result{State: StateBooked, Ride: r}, nil
}

func (p *Pipeline) CancelRide(ctx context.Context, id string) (*Result, error) {
	r, err := p.rides.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	refund := r.Price.Scale(cancelRefundRate)
	return &Result{State: StateBooked, Ride: r, Refund: &refund}, nil
}

// BookOffer persists an already-selected offer, used when a caller compared
// first and books the winner it was shown. The ride snapshots the offer's
// price and ETA exactly.
func (p *Pipeline) BookOffer(ctx context.Context, offer decision.ScoredOffer, bi *intent.BookingIntent) (*Result, error) {
	ride, err := p.rides.Create(ctx, offer, bi)
	if err != nil {
		return nil, err
	}
	observability.DecisionCyclesTotal.WithLabelValues(string(StateBooked)).Inc()
	return &Result{State: StateBooked, Ride: ride, Rationale: offer.Rationale}, nil
}
