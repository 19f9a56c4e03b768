package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements LLMProvider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"

	// Low temperature keeps the constrained schema stable across runs.
	model.SetTemperature(0.1)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// ParseBookingIntent analyzes user input to extract ride-booking intent.
func (p *GeminiProvider) ParseBookingIntent(ctx context.Context, utterance string, contextMap map[string]string) (*IntentFields, error) {
	fullPrompt := fmt.Sprintf("%s\n\nUser Message: %s", buildSystemPrompt(contextMap), utterance)

	resp, err := p.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no response candidates", ErrBadResponse)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	// Clean up potential markdown formatting (JSON mode should handle this, safety first).
	cleanJSON := cleanJSONString(responseText.String())

	var result IntentFields
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("%w: %v. Raw: %s", ErrBadResponse, err, cleanJSON)
	}

	return &result, nil
}

// buildSystemPrompt constructs the instructions for the AI.
func buildSystemPrompt(ctxMap map[string]string) string {
	currentTime := ctxMap["current_time"]
	if currentTime == "" {
		currentTime = "UNKNOWN_TIME"
	}

	return fmt.Sprintf(`Role: You are the intent extractor for "SmartRide", a ride-booking assistant.
Context:
- Current System Time: %s

Your ONLY job is to fill the JSON schema below from the user's message. You
never pick a ride, never compare prices, and never invent locations. Numeric
decisions belong to the booking engine, not to you.

RULES:

1. ACTION DETECTION:
   - "book", "schedule", "reserve", "get me a ride" -> "book".
   - "cancel", "delete", "remove" -> "cancel".
   - "change", "reschedule", "update", "move" -> "update".
   - "show", "list", "what rides", "my rides" -> "list".
   - "compare", "options", "prices", "how much" -> "compare".

2. LOCATIONS:
   - "from X" / "leaving X" -> "origin". "to Y" / "towards Y" -> "destination".
   - Copy location names verbatim; do NOT resolve or normalize them.
   - If the action is "book" or "compare" and no destination can be read from
     the message, set "needs_clarification": true and put a short follow-up
     question in "question". NEVER guess a destination.

3. TIME RESOLUTION:
   - Resolve relative expressions ("tomorrow at 9am", "in an hour") against
     Current System Time and emit RFC3339 in "iso_time".
   - Do NOT shift times you believe are in the past; emit them literally.
     The engine validates and rejects past times itself.
   - Leave "iso_time" null when no time is mentioned.

4. CONSTRAINT:
   - "cheapest", "cheap", "save money" -> "cheapest".
   - "fastest", "quick", "asap", "in a hurry" -> "fastest".
   - "best", "best value", "good deal" -> "best_value".
   - Otherwise -> "none".

5. PREFERENCES:
   - "no shared", "no pool", "private", "alone" -> "avoid_shared": true.

6. RIDE REFERENCE:
   - For cancel/update, extract the ride identifier if the user names one
     (e.g. "cancel ride 42f1..."). If they say "my ride" with no id, set
     "needs_clarification": true and ask which ride.

7. Output JSON Schema:
{
  "action": "book" | "list" | "cancel" | "update" | "compare",
  "origin": "string or null",
  "destination": "string or null",
  "iso_time": "RFC3339 timestamp or null",
  "constraint": "cheapest" | "fastest" | "best_value" | "none",
  "ride_id": "string or null",
  "avoid_shared": boolean,
  "needs_clarification": boolean,
  "question": "string (only when needs_clarification)"
}
`, currentTime)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
