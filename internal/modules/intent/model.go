// README: BookingIntent model; the immutable structured form of one utterance.
package intent

import (
	"time"

	"smartride/internal/types"
)

type Action string

const (
	ActionBook    Action = "book"
	ActionList    Action = "list"
	ActionCancel  Action = "cancel"
	ActionUpdate  Action = "update"
	ActionCompare Action = "compare"
)

type Constraint string

const (
	ConstraintCheapest  Constraint = "cheapest"
	ConstraintFastest   Constraint = "fastest"
	ConstraintBestValue Constraint = "best_value"
	ConstraintNone      Constraint = "none"
)

// BookingIntent is the structured form of one user utterance. It is built
// once by the parser and consumed once by the pipeline; nothing mutates it.
type BookingIntent struct {
	Action        Action
	Origin        *types.Location
	Destination   *types.Location
	RequestedTime *time.Time
	Constraint    Constraint
	AvoidShared   bool
	TargetRideID  string
}

// Result is the parser outcome: either a fully-resolved intent or a request
// to re-prompt the user. Clarification is a distinct outcome, not an error.
type Result struct {
	Intent             *BookingIntent
	NeedsClarification bool
	Question           string
}

func validAction(a Action) bool {
	switch a {
	case ActionBook, ActionList, ActionCancel, ActionUpdate, ActionCompare:
		return true
	}
	return false
}

func normalizeConstraint(raw string) Constraint {
	switch Constraint(raw) {
	case ConstraintCheapest, ConstraintFastest, ConstraintBestValue:
		return Constraint(raw)
	}
	return ConstraintNone
}
