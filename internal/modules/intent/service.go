// README: Intent parser service; reasoning call plus deterministic validation.
package intent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartride/internal/ai"
)

var (
	ErrIntentParse         = errors.New("utterance could not be mapped to an intent")
	ErrInvalidTime         = errors.New("requested time is in the past or malformed")
	ErrUpstreamUnavailable = errors.New("reasoning service unreachable")
)

type Service struct {
	llm   ai.LLMProvider
	clock func() time.Time
}

func NewService(llm ai.LLMProvider) *Service {
	return &Service{llm: llm, clock: time.Now}
}

// WithClock overrides the time source; tests pin it to a fixed instant.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Parse turns a free-text utterance into a validated BookingIntent, or a
// NeedsClarification result when the utterance is too ambiguous to act on.
// The reasoning service fills a constrained schema; everything it returns is
// re-validated here so a misbehaving model can never produce a bad intent.
func (s *Service) Parse(ctx context.Context, utterance string) (*Result, error) {
	if utterance == "" {
		return nil, fmt.Errorf("%w: empty utterance", ErrIntentParse)
	}

	now := s.clock()
	fields, err := s.llm.ParseBookingIntent(ctx, utterance, map[string]string{
		"current_time": now.Format(time.RFC3339),
	})
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			// The keyword parser exists for exactly this case; if it can
			// resolve the utterance we stay available.
			if fb := parseFallback(utterance, now); fb != nil {
				fields = fb
			} else {
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			}
		} else {
			return nil, fmt.Errorf("%w: %v", ErrIntentParse, err)
		}
	}

	return s.validate(fields, now)
}

// validate maps raw model fields onto a BookingIntent, enforcing the intent
// schema invariants.
func (s *Service) validate(f *ai.IntentFields, now time.Time) (*Result, error) {
	if f.NeedsClarification {
		q := f.Question
		if q == "" {
			q = "Could you rephrase that? I need a destination or a ride reference."
		}
		return &Result{NeedsClarification: true, Question: q}, nil
	}

	action := Action(f.Action)
	if !validAction(action) {
		return nil, fmt.Errorf("%w: unknown action %q", ErrIntentParse, f.Action)
	}

	bi := &BookingIntent{
		Action:      action,
		Constraint:  normalizeConstraint(f.Constraint),
		AvoidShared: f.AvoidShared,
	}
	if f.Origin != nil && *f.Origin != "" {
		bi.Origin = locationFromLabel(*f.Origin)
	}
	if f.Destination != nil && *f.Destination != "" {
		bi.Destination = locationFromLabel(*f.Destination)
	}
	if f.RideID != nil {
		bi.TargetRideID = *f.RideID
	}

	if f.ISOTime != nil && *f.ISOTime != "" {
		t, err := time.Parse(time.RFC3339, *f.ISOTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTime, *f.ISOTime)
		}
		// A past time is rejected outright, never reinterpreted as the next
		// occurrence. One minute of slack covers parse-to-validate latency.
		if t.Before(now.Add(-time.Minute)) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTime, t.Format(time.RFC3339))
		}
		bi.RequestedTime = &t
	}

	switch action {
	case ActionBook, ActionCompare:
		if bi.Destination == nil {
			return &Result{
				NeedsClarification: true,
				Question:           "Where would you like to go?",
			}, nil
		}
	case ActionCancel, ActionUpdate:
		if bi.TargetRideID == "" {
			return &Result{
				NeedsClarification: true,
				Question:           "Which ride do you mean? Please give the ride id.",
			}, nil
		}
	}

	return &Result{Intent: bi}, nil
}
