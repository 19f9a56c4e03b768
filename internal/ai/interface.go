package ai

import (
	"context"
	"errors"
)

// ErrUnavailable marks transport-level failures reaching the model, as
// opposed to a model reply that cannot be mapped to the intent schema.
var ErrUnavailable = errors.New("reasoning service unavailable")

// ErrBadResponse marks a reachable model whose output does not fit the
// constrained intent schema.
var ErrBadResponse = errors.New("reasoning service returned unusable output")

// LLMProvider defines the contract for interacting with AI models.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.) in the future.
type LLMProvider interface {
	// ParseBookingIntent analyzes the user's natural language input and extracts
	// the constrained booking-intent fields. contextMap carries dynamic
	// information like "current_time" used to resolve relative references.
	ParseBookingIntent(ctx context.Context, utterance string, contextMap map[string]string) (*IntentFields, error)
}
