// README: Ride aggregate and status definitions.
package rides

import (
	"time"

	"smartride/internal/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Ride is a persisted booking. Its price and ETA are a frozen snapshot of
// the quote that won at booking time; they are never live-updated. Rides are
// never physically deleted; cancelled is a terminal status preserving
// history.
type Ride struct {
	ID            string      `json:"id"`
	Provider      string      `json:"provider"`
	ServiceTier   string      `json:"service_tier"`
	Price         types.Money `json:"price"`
	ETAMinutes    int         `json:"eta_minutes"`
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	ScheduledTime time.Time   `json:"scheduled_time"`
	Status        Status      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// AllowedTransitions represents the ride status flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Filter narrows List results. Zero value means no filtering.
type Filter struct {
	Status *Status
	After  *time.Time
	Before *time.Time
}

func (f Filter) matches(r *Ride) bool {
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.After != nil && r.ScheduledTime.Before(*f.After) {
		return false
	}
	if f.Before != nil && r.ScheduledTime.After(*f.Before) {
		return false
	}
	return true
}
