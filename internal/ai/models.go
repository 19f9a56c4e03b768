package ai

// IntentFields captures the structured output from the AI model. The model
// only fills this constrained schema; all decision logic stays in the engine.
type IntentFields struct {
	// Action is one of "book", "list", "cancel", "update", "compare".
	Action string `json:"action"`

	// Origin is the starting location label, when stated.
	Origin *string `json:"origin,omitempty"`

	// Destination is the target location label. Nullable because not every
	// action has a destination (e.g. "list").
	Destination *string `json:"destination,omitempty"`

	// ISOTime is the absolute RFC3339 timestamp calculated from the user's
	// relative input and the current time supplied in the context map.
	ISOTime *string `json:"iso_time,omitempty"`

	// Constraint is one of "cheapest", "fastest", "best_value", "none".
	Constraint string `json:"constraint"`

	// RideID references an existing ride for cancel/update actions.
	RideID *string `json:"ride_id,omitempty"`

	// AvoidShared is set when the user rules out pool/shared tiers.
	AvoidShared bool `json:"avoid_shared"`

	// NeedsClarification is set when the utterance is too ambiguous to map.
	// Question carries the follow-up to show the user.
	NeedsClarification bool   `json:"needs_clarification"`
	Question           string `json:"question,omitempty"`
}
