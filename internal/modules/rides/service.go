// README: Ride service implements booking CRUD over the store.
package rides

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartride/internal/modules/decision"
	"smartride/internal/modules/intent"
)

var (
	ErrNotFound         = errors.New("ride not found")
	ErrInvalidState     = errors.New("ride is cancelled and cannot be modified")
	ErrAlreadyCancelled = errors.New("ride is already cancelled")
	ErrInvalidTime      = errors.New("new time is in the past")
)

type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// WithClock overrides the time source; tests pin it to a fixed instant.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Create persists the winning offer as a pending ride. Price and ETA are
// copied from the offer's quote and frozen; the quote itself is discarded.
func (s *Service) Create(ctx context.Context, offer decision.ScoredOffer, bi *intent.BookingIntent) (*Ride, error) {
	now := s.clock()

	scheduled := now
	if bi.RequestedTime != nil {
		scheduled = *bi.RequestedTime
	}

	origin := ""
	if bi.Origin != nil {
		origin = bi.Origin.Label
	}
	destination := ""
	if bi.Destination != nil {
		destination = bi.Destination.Label
	}

	r := &Ride{
		ID:            uuid.NewString(),
		Provider:      offer.Quote.Provider,
		ServiceTier:   offer.Quote.ServiceTier,
		Price:         offer.Quote.EffectivePrice(),
		ETAMinutes:    offer.Quote.ETAMinutes,
		Origin:        origin,
		Destination:   destination,
		ScheduledTime: scheduled,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Ride, error) {
	return s.store.List(ctx, f)
}

// UpdateTime reschedules a ride. Cancelled rides reject the mutation.
func (s *Service) UpdateTime(ctx context.Context, id string, newTime time.Time) (*Ride, error) {
	if newTime.Before(s.clock()) {
		return nil, ErrInvalidTime
	}
	return s.store.Mutate(ctx, id, func(r *Ride) error {
		if r.Status == StatusCancelled {
			return ErrInvalidState
		}
		r.ScheduledTime = newTime
		r.UpdatedAt = s.clock()
		return nil
	})
}

// Confirm moves a pending ride to confirmed.
func (s *Service) Confirm(ctx context.Context, id string) (*Ride, error) {
	return s.store.Mutate(ctx, id, func(r *Ride) error {
		if !CanTransition(r.Status, StatusConfirmed) {
			return ErrInvalidState
		}
		r.Status = StatusConfirmed
		r.UpdatedAt = s.clock()
		return nil
	})
}

// Cancel marks the ride cancelled. Cancelling twice surfaces
// ErrAlreadyCancelled so callers can tell a first cancel from a no-op; the
// record is unchanged by the repeat call.
func (s *Service) Cancel(ctx context.Context, id string) (*Ride, error) {
	return s.store.Mutate(ctx, id, func(r *Ride) error {
		if r.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}
		r.Status = StatusCancelled
		r.UpdatedAt = s.clock()
		return nil
	})
}
