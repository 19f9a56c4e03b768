// README: Ride service tests (CRUD invariants + same-record serialization).
package rides

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smartride/internal/modules/decision"
	"smartride/internal/modules/intent"
	"smartride/internal/modules/providers"
	"smartride/internal/types"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func testService() *Service {
	return NewService(NewMemoryStore()).WithClock(func() time.Time { return testNow })
}

func testOffer(priceDollars float64, eta int) decision.ScoredOffer {
	return decision.ScoredOffer{
		Quote: providers.Quote{
			Provider:    "uber",
			ServiceTier: "UberX",
			Price:       types.FromDollars(priceDollars, "USD"),
			ETAMinutes:  eta,
			Surge:       1.0,
			FetchedAt:   testNow,
		},
		Score:     0.1,
		Rationale: []string{"lowest price among 3 options"},
	}
}

func testIntent(scheduled time.Time) *intent.BookingIntent {
	return &intent.BookingIntent{
		Action:        intent.ActionBook,
		Origin:        &types.Location{Label: "Home"},
		Destination:   &types.Location{Label: "Office"},
		RequestedTime: &scheduled,
		Constraint:    intent.ConstraintCheapest,
	}
}

func mustCreate(t *testing.T, svc *Service, priceDollars float64, scheduled time.Time) *Ride {
	t.Helper()
	r, err := svc.Create(context.Background(), testOffer(priceDollars, 12), testIntent(scheduled))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return r
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		// cancelled is terminal
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		// no backwards moves
		{StatusConfirmed, StatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCreateFreezesQuoteSnapshot(t *testing.T) {
	svc := testService()
	offer := testOffer(6.00, 20)
	r, err := svc.Create(context.Background(), offer, testIntent(testNow.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Price != offer.Quote.EffectivePrice() {
		t.Errorf("price = %v, want frozen %v", r.Price, offer.Quote.EffectivePrice())
	}
	if r.ETAMinutes != offer.Quote.ETAMinutes {
		t.Errorf("eta = %d, want frozen %d", r.ETAMinutes, offer.Quote.ETAMinutes)
	}
	if r.Status != StatusPending {
		t.Errorf("status = %s, want pending", r.Status)
	}
	if r.ID == "" {
		t.Error("missing generated id")
	}
}

func TestGetUnknownRide(t *testing.T) {
	svc := testService()
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCancelUnknownRide(t *testing.T) {
	svc := testService()
	if _, err := svc.Cancel(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCancelTwice(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	r := mustCreate(t, svc, 10, testNow.Add(time.Hour))

	first, err := svc.Cancel(ctx, r.ID)
	if err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if first.Status != StatusCancelled {
		t.Fatalf("status after cancel = %s", first.Status)
	}

	if _, err := svc.Cancel(ctx, r.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("second cancel err = %v, want ErrAlreadyCancelled", err)
	}

	// The repeat call must not have touched the record.
	got, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCancelled || !got.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("ride changed by repeated cancel: %+v", got)
	}
}

func TestUpdateTimeOnCancelledRide(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	r := mustCreate(t, svc, 10, testNow.Add(time.Hour))

	if _, err := svc.Cancel(ctx, r.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := svc.UpdateTime(ctx, r.ID, testNow.Add(3*time.Hour))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestUpdateTimeRejectsPast(t *testing.T) {
	svc := testService()
	r := mustCreate(t, svc, 10, testNow.Add(time.Hour))
	_, err := svc.UpdateTime(context.Background(), r.ID, testNow.Add(-time.Hour))
	if !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("err = %v, want ErrInvalidTime", err)
	}
}

func TestUpdateTimeReschedules(t *testing.T) {
	svc := testService()
	r := mustCreate(t, svc, 10, testNow.Add(time.Hour))
	newTime := testNow.Add(5 * time.Hour)
	updated, err := svc.UpdateTime(context.Background(), r.ID, newTime)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.ScheduledTime.Equal(newTime) {
		t.Errorf("scheduled = %v, want %v", updated.ScheduledTime, newTime)
	}
}

func TestConfirmThenCancel(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	r := mustCreate(t, svc, 10, testNow.Add(time.Hour))

	confirmed, err := svc.Confirm(ctx, r.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", confirmed.Status)
	}
	if _, err := svc.Confirm(ctx, r.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second confirm err = %v, want ErrInvalidState", err)
	}
	if _, err := svc.Cancel(ctx, r.ID); err != nil {
		t.Fatalf("cancel confirmed ride: %v", err)
	}
}

func TestListOrderedByScheduledTime(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	// Created deliberately out of schedule order.
	late := mustCreate(t, svc, 10, testNow.Add(9*time.Hour))
	early := mustCreate(t, svc, 10, testNow.Add(time.Hour))
	mid := mustCreate(t, svc, 10, testNow.Add(4*time.Hour))

	list, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantOrder := []string{early.ID, mid.ID, late.ID}
	if len(list) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(list), len(wantOrder))
	}
	for i, id := range wantOrder {
		if list[i].ID != id {
			t.Errorf("list[%d] = %s, want %s", i, list[i].ID, id)
		}
	}
}

func TestListFilterByStatus(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	keep := mustCreate(t, svc, 10, testNow.Add(time.Hour))
	gone := mustCreate(t, svc, 10, testNow.Add(2*time.Hour))
	if _, err := svc.Cancel(ctx, gone.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	st := StatusPending
	list, err := svc.List(ctx, Filter{Status: &st})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Errorf("filtered list wrong: %+v", list)
	}
}

// TestCancelRace exercises the same-record single-writer discipline: many
// concurrent cancels, exactly one wins.
func TestCancelRace(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	r := mustCreate(t, svc, 10, testNow.Add(time.Hour))

	const n = 8
	errs := make(chan error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Cancel(ctx, r.ID)
			errs <- err
		}()
	}

	close(start)
	wg.Wait()
	close(errs)

	var okCount, alreadyCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, ErrAlreadyCancelled):
			alreadyCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || alreadyCount != n-1 {
		t.Errorf("ok=%d already=%d, want 1/%d", okCount, alreadyCount, n-1)
	}
}
